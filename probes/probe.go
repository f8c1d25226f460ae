// Package probes - Pluggable readers for instantaneous hardware and OS
// signals (temperature, power, utilization, memory).
//
// Every probe implements the same capability: produce one float64 reading
// within the deadline carried by the context, or report that the signal is
// unavailable right now. Probes are side-effect free and may be called from
// a single sampling goroutine only.
package probes

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnavailable reports that a probe could not produce a reading this
// tick. It is absence, not zero: the sampler skips the tick for that probe
// and the metric's series stays untouched.
var ErrUnavailable = errors.New("probe: reading unavailable")

// Probe samples one external signal at a point in time.
type Probe interface {
	// Name identifies the metric series the probe feeds.
	Name() string
	// Sample returns the current reading. It must honor ctx so a hung
	// data source cannot stall the caller past its deadline.
	Sample(ctx context.Context) (float64, error)
}

// Func adapts a plain function into a Probe.
type Func struct {
	ProbeName string
	Fn        func(ctx context.Context) (float64, error)
}

// Name implements Probe.
func (f Func) Name() string { return f.ProbeName }

// Sample implements Probe.
func (f Func) Sample(ctx context.Context) (float64, error) { return f.Fn(ctx) }

// readTrimmed reads a small sensor file and returns its content with
// surrounding whitespace removed.
func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", errors.Errorf("empty sensor file %s", path)
	}
	return value, nil
}
