// Package detect - Object-detection inference engines for the benchmark
// harness.
package detect

import (
	"image"
	"time"
)

// Detection represents a detected object in frame coordinates.
type Detection struct {
	Box       image.Rectangle
	Score     float32
	ClassID   int
	ClassName string
}

// Engine runs object detection on single frames. The harness measures the
// wall-clock duration of each Detect call as the per-frame latency, so
// implementations must not return before device work completes.
type Engine interface {
	Detect(img image.Image) ([]Detection, error)
	Close() error
}

// Null is an engine that detects nothing and optionally burns a fixed
// synthetic latency per frame. It lets the harness run end to end without
// a model file.
type Null struct {
	Delay time.Duration
}

// Detect implements Engine.
func (n Null) Detect(_ image.Image) ([]Detection, error) {
	if n.Delay > 0 {
		time.Sleep(n.Delay)
	}
	return nil, nil
}

// Close implements Engine.
func (n Null) Close() error { return nil }
