package probes

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
)

// nvidiaSMI queries one field from the first discrete NVIDIA GPU via the
// nvidia-smi tool. The query runs under the sampler's per-probe context so
// a wedged driver cannot stall sampling.
type nvidiaSMI struct {
	name    string
	query   string
	scale   float64
	command string
}

// NvidiaSMIPower reads the current board power draw in watts.
func NvidiaSMIPower() Probe {
	return nvidiaSMI{name: "power_w", query: "power.draw", scale: 1}
}

// NvidiaSMIMemory reads the current GPU memory usage in gigabytes.
// nvidia-smi reports MiB.
func NvidiaSMIMemory() Probe {
	return nvidiaSMI{name: "gpu_memory_gb", query: "memory.used", scale: 1.0 / 1024.0}
}

// NvidiaSMIUtilization reads the current GPU utilization percentage.
func NvidiaSMIUtilization() Probe {
	return nvidiaSMI{name: "gpu_load", query: "utilization.gpu", scale: 1}
}

// Name implements Probe.
func (n nvidiaSMI) Name() string { return n.name }

// Sample implements Probe.
func (n nvidiaSMI) Sample(ctx context.Context) (float64, error) {
	command := n.command
	if command == "" {
		command = "nvidia-smi"
	}

	out, err := exec.CommandContext(ctx,
		command,
		"--query-gpu="+n.query,
		"--format=csv,noheader,nounits",
		"--id=0",
	).Output()
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, ErrUnavailable
	}

	value, err := ParseNvidiaSMIValue(string(out))
	if err != nil {
		return 0, ErrUnavailable
	}
	return value * n.scale, nil
}

// ParseNvidiaSMIValue parses the first line of a csv,noheader,nounits
// nvidia-smi query. "[N/A]" and "[Not Supported]" count as unavailable.
func ParseNvidiaSMIValue(out string) (float64, error) {
	line := out
	if nl := strings.IndexByte(line, '\n'); nl >= 0 {
		line = line[:nl]
	}
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "[") {
		return 0, ErrUnavailable
	}
	return strconv.ParseFloat(line, 64)
}
