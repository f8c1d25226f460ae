package probes

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// GPULoad reads the integrated GPU utilization from the Tegra sysfs load
// node. The kernel exposes the value on a 0-1000 scale; readings are
// returned as a 0-100 percentage.
type GPULoad struct {
	// Root is the sysfs mount point, "/sys" by default.
	Root string
}

// Name implements Probe.
func (g GPULoad) Name() string { return "gpu_load" }

// Sample implements Probe.
func (g GPULoad) Sample(_ context.Context) (float64, error) {
	root := g.Root
	if root == "" {
		root = "/sys"
	}

	raw, err := readTrimmed(filepath.Join(root, "devices", "gpu.0", "load"))
	if err != nil {
		return 0, ErrUnavailable
	}

	load, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrUnavailable, "parse %q", raw)
	}
	return float64(load) / 10.0, nil
}
