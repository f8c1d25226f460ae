// Package source - Frame acquisition for benchmark runs: video files,
// capture devices, and synthetic streams.
package source

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ErrEndOfStream reports that a bounded source has no more frames. Looping
// sources never return it.
var ErrEndOfStream = errors.New("source: end of stream")

// ErrUnavailable reports that no frame source could be opened, including
// the camera fallback.
var ErrUnavailable = errors.New("source: unavailable")

// Source produces frames for the foreground processing loop.
type Source interface {
	// Next returns the next frame, or ErrEndOfStream when exhausted.
	Next() (image.Image, error)
	Close() error
}

// Synthetic generates fixed-size frames in memory. Used for dry runs and
// tests; the gradient shifts per frame so consecutive frames differ.
type Synthetic struct {
	Width  int
	Height int
	// Limit bounds the number of frames; <= 0 means unlimited.
	Limit int

	produced int
}

// NewSynthetic returns a 640x480 synthetic source with the given frame
// limit.
func NewSynthetic(limit int) *Synthetic {
	return &Synthetic{Width: 640, Height: 480, Limit: limit}
}

// Next implements Source.
func (s *Synthetic) Next() (image.Image, error) {
	if s.Limit > 0 && s.produced >= s.Limit {
		return nil, ErrEndOfStream
	}
	s.produced++

	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	shift := uint8(s.produced % 256)
	for y := 0; y < s.Height; y++ {
		for x := 0; x < s.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x) + shift,
				G: uint8(y),
				B: shift,
				A: 255,
			})
		}
	}
	return img, nil
}

// Close implements Source.
func (s *Synthetic) Close() error { return nil }
