package probes

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

const defaultThermalZone = "thermal_zone0"

// Thermal reads the SoC temperature from a sysfs thermal zone. The kernel
// reports milli-degrees Celsius; readings are returned in °C.
type Thermal struct {
	// Root is the sysfs mount point, "/sys" by default. Overridable for
	// tests.
	Root string
	// Zone is the thermal zone directory name, "thermal_zone0" by default.
	Zone string
}

// Name implements Probe.
func (t Thermal) Name() string { return "thermal" }

// Sample implements Probe.
func (t Thermal) Sample(_ context.Context) (float64, error) {
	root := t.Root
	if root == "" {
		root = "/sys"
	}
	zone := t.Zone
	if zone == "" {
		zone = defaultThermalZone
	}

	raw, err := readTrimmed(filepath.Join(root, "devices", "virtual", "thermal", zone, "temp"))
	if err != nil {
		return 0, ErrUnavailable
	}

	milliC, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "parse %q", raw)
	}
	return float64(milliC) / 1000.0, nil
}
