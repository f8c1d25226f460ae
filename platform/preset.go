package platform

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/nvr-ai/edge-bench/metrics"
	"github.com/nvr-ai/edge-bench/probes"
)

// Preset bundles the phase labels, probe set, and documented fallback
// constants for one benchmark configuration.
type Preset struct {
	Name         string
	Phase        string
	Platform     string
	Architecture string
	// UseCUDA requests GPU-accelerated inference for this preset.
	UseCUDA bool

	// Probes builds the preset's probe set. Roots are overridable for
	// tests; empty strings select /sys and /proc.
	Probes func(sysfsRoot, procRoot string) []probes.Probe

	// EstimateWatts derives the documented fallback power figure when no
	// power probe produced readings during the run. Nil means power is
	// reported as not measured instead of estimated.
	EstimateWatts func(cpuLoadAvg float64) float64

	// Transfer is the default per-frame host/device transfer overhead
	// recorded when the engine cannot measure it. Nil leaves the metric
	// unmeasured.
	Transfer *metrics.Transfer
}

// estimatedPCIeMS is the documented per-frame H2D+D2H cost assumed for a
// 640x480 RGB frame on a discrete GPU when no measurement is available.
const estimatedPCIeMS = 2.0

var presets = map[string]Preset{
	"desktop-cpu": {
		Name:     "desktop-cpu",
		Phase:    "Phase 1: CPU Baseline",
		Platform: "Desktop PC (Discrete GPU)",
		Probes: func(_, procRoot string) []probes.Probe {
			return []probes.Probe{
				probes.CPULoad{Root: procRoot},
				probes.Memory{Root: procRoot},
			}
		},
		// Rough desktop CPU package draw scaled by observed load.
		EstimateWatts: func(cpuLoadAvg float64) float64 { return cpuLoadAvg * 0.15 },
	},
	"desktop-gpu": {
		Name:         "desktop-gpu",
		Phase:        "Phase 3: GPU Accelerated (PCIe)",
		Platform:     "Desktop PC (Discrete GPU)",
		Architecture: "Discrete GPU - PCIe Data Transfer",
		UseCUDA:      true,
		Probes: func(_, procRoot string) []probes.Probe {
			return []probes.Probe{
				probes.CPULoad{Root: procRoot},
				probes.Memory{Root: procRoot},
				probes.NvidiaSMIPower(),
				probes.NvidiaSMIMemory(),
				probes.NvidiaSMIUtilization(),
			}
		},
		Transfer: &metrics.Transfer{
			AverageMS: estimatedPCIeMS,
			Source:    metrics.SourceEstimated,
			Note:      "H2D and D2H transfers required for each frame (discrete GPU)",
		},
	},
	"jetson-cpu": {
		Name:     "jetson-cpu",
		Phase:    "Phase 1: CPU Baseline",
		Platform: "Jetson Nano (ARM)",
		Probes: func(sysfsRoot, procRoot string) []probes.Probe {
			return []probes.Probe{
				probes.Thermal{Root: sysfsRoot},
				probes.CPULoad{Root: procRoot},
				probes.Memory{Root: procRoot},
			}
		},
		// Documented idle-ish draw of the module during CPU inference.
		EstimateWatts: func(float64) float64 { return 1.5 },
	},
	"jetson-gpu": {
		Name:         "jetson-gpu",
		Phase:        "Phase 3: GPU Accelerated (UMA)",
		Platform:     "Jetson Nano (Integrated GPU)",
		Architecture: "UMA - Zero-Copy Memory",
		UseCUDA:      true,
		Probes: func(sysfsRoot, procRoot string) []probes.Probe {
			return []probes.Probe{
				probes.Thermal{Root: sysfsRoot},
				probes.GPULoad{Root: sysfsRoot},
				probes.CPULoad{Root: procRoot},
				probes.Tegrastats{},
			}
		},
		// 5W/10W mode midpoint, used when tegrastats is unavailable.
		EstimateWatts: func(float64) float64 { return 6.0 },
		Transfer: &metrics.Transfer{
			AverageMS: 0,
			Source:    metrics.SourceMeasured,
			Note:      "UMA eliminates host/device copies (CPU and GPU share memory)",
		},
	},
}

// GetPreset returns the named preset.
func GetPreset(name string) (Preset, error) {
	preset, ok := presets[name]
	if !ok {
		return Preset{}, errors.Errorf("unknown preset %q (have %v)", name, PresetNames())
	}
	return preset, nil
}

// PresetNames lists the available preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
