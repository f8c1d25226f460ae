// Package metrics - Series, summary statistics, and the persisted run record.
package metrics

import (
	"sync"
	"time"
)

// Reading is a single timestamped sample of one metric.
type Reading struct {
	Value float64   `json:"value"`
	At    time.Time `json:"at"`
}

// Series is an append-only log of readings for one metric.
//
// Exactly one writer appends (the sampler for probe-backed series, the frame
// loop for latency/FPS); any number of readers may snapshot concurrently. A
// reader always observes a consistent prefix of the log, never a torn entry.
type Series struct {
	name string

	mu   sync.RWMutex
	data []Reading
}

// NewSeries creates an empty series with the given metric name.
func NewSeries(name string) *Series {
	return &Series{name: name}
}

// Name returns the metric name the series was created with.
func (s *Series) Name() string {
	return s.name
}

// Append records a value stamped with the current wall-clock time.
func (s *Series) Append(value float64) {
	s.AppendAt(value, time.Now())
}

// AppendAt records a value with an explicit timestamp.
func (s *Series) AppendAt(value float64, at time.Time) {
	s.mu.Lock()
	s.data = append(s.data, Reading{Value: value, At: at})
	s.mu.Unlock()
}

// Len returns the number of readings collected so far.
func (s *Series) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Values returns a copy of every recorded value in append order.
func (s *Series) Values() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make([]float64, len(s.data))
	for i, r := range s.data {
		values[i] = r.Value
	}
	return values
}

// Readings returns a copy of every reading in append order.
func (s *Series) Readings() []Reading {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reading, len(s.data))
	copy(out, s.data)
	return out
}

// Last returns a copy of the most recent n values, or fewer if the series is
// shorter.
func (s *Series) Last(n int) []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.data) {
		n = len(s.data)
	}
	values := make([]float64, 0, n)
	for _, r := range s.data[len(s.data)-n:] {
		values = append(values, r.Value)
	}
	return values
}

// LastReading returns the most recent reading, if any.
func (s *Series) LastReading() (Reading, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.data) == 0 {
		return Reading{}, false
	}
	return s.data[len(s.data)-1], true
}

// MeanLast returns the arithmetic mean of the most recent n values. It
// returns 0 for an empty series and exists only for progress display; use
// Summarize for reported statistics.
func (s *Series) MeanLast(n int) float64 {
	values := s.Last(n)
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
