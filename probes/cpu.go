package probes

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// CPULoad reports aggregate CPU utilization as a percentage, computed from
// the busy/total jiffy delta between two /proc/stat reads spaced a short
// interval apart.
type CPULoad struct {
	// Root is the procfs mount point, "/proc" by default.
	Root string
	// Window is the spacing between the two reads, 100ms by default.
	Window time.Duration
}

// Name implements Probe.
func (c CPULoad) Name() string { return "cpu_load" }

// Sample implements Probe.
func (c CPULoad) Sample(ctx context.Context) (float64, error) {
	root := c.Root
	if root == "" {
		root = "/proc"
	}
	window := c.Window
	if window <= 0 {
		window = 100 * time.Millisecond
	}
	statPath := filepath.Join(root, "stat")

	busy1, total1, err := readCPUStat(statPath)
	if err != nil {
		return 0, ErrUnavailable
	}

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(window):
	}

	busy2, total2, err := readCPUStat(statPath)
	if err != nil {
		return 0, ErrUnavailable
	}

	return CPUPercent(busy1, total1, busy2, total2)
}

// CPUPercent converts two busy/total jiffy snapshots into a utilization
// percentage.
func CPUPercent(busy1, total1, busy2, total2 uint64) (float64, error) {
	// A busy counter running backwards would underflow the delta.
	if total2 <= total1 || busy2 < busy1 {
		return 0, ErrUnavailable
	}
	busy := float64(busy2 - busy1)
	total := float64(total2 - total1)
	return busy / total * 100.0, nil
}

func readCPUStat(path string) (busy, total uint64, err error) {
	raw, err := readTrimmed(path)
	if err != nil {
		return 0, 0, err
	}
	return ParseCPUStatLine(raw)
}

// ParseCPUStatLine parses the aggregate "cpu" line of /proc/stat into busy
// and total jiffy counts. Idle and iowait count as idle time.
func ParseCPUStatLine(content string) (busy, total uint64, err error) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}

		var idle uint64
		for i, field := range fields[1:] {
			v, parseErr := strconv.ParseUint(field, 10, 64)
			if parseErr != nil {
				return 0, 0, errors.Wrapf(parseErr, "parse /proc/stat field %q", field)
			}
			total += v
			// Field 4 is idle, field 5 is iowait.
			if i == 3 || i == 4 {
				idle += v
			}
		}
		return total - idle, total, nil
	}
	return 0, 0, errors.New("no aggregate cpu line in /proc/stat")
}
