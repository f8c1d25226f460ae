package probes

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Memory reports system memory usage as a percentage, derived from
// MemTotal and MemAvailable in /proc/meminfo.
type Memory struct {
	// Root is the procfs mount point, "/proc" by default.
	Root string
}

// Name implements Probe.
func (m Memory) Name() string { return "memory" }

// Sample implements Probe.
func (m Memory) Sample(_ context.Context) (float64, error) {
	root := m.Root
	if root == "" {
		root = "/proc"
	}

	raw, err := readTrimmed(filepath.Join(root, "meminfo"))
	if err != nil {
		return 0, ErrUnavailable
	}

	percent, err := ParseMeminfoUsedPercent(raw)
	if err != nil {
		return 0, ErrUnavailable
	}
	return percent, nil
}

// ParseMeminfoUsedPercent computes used-memory percent from /proc/meminfo
// content.
func ParseMeminfoUsedPercent(content string) (float64, error) {
	var total, available uint64
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		value, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total = value
		case "MemAvailable:":
			available = value
		}
	}

	if total == 0 {
		return 0, errors.New("no MemTotal in meminfo")
	}
	return (1.0 - float64(available)/float64(total)) * 100.0, nil
}
