package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeriesAppendPreservesOrder(t *testing.T) {
	s := NewSeries("latency_ms")
	for i := 0; i < 10; i++ {
		s.Append(float64(i))
	}

	require.Equal(t, 10, s.Len())
	values := s.Values()
	for i, v := range values {
		assert.Equal(t, float64(i), v)
	}
}

func TestSeriesConcurrentReadsDuringWrites(t *testing.T) {
	s := NewSeries("fps")

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Readers snapshot continuously while the single writer appends, the
	// same shape as the report reading sampler series mid-run.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_ = s.Values()
					_ = s.MeanLast(30)
					_, _ = s.LastReading()
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		s.Append(float64(i))
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, 1000, s.Len())
}

func TestSeriesAppendAtKeepsTimestamp(t *testing.T) {
	s := NewSeries("thermal")
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.AppendAt(42.5, at)

	readings := s.Readings()
	require.Len(t, readings, 1)
	assert.Equal(t, 42.5, readings[0].Value)
	assert.True(t, readings[0].At.Equal(at))
}

func TestSeriesMeanLast(t *testing.T) {
	s := NewSeries("latency_ms")
	assert.Equal(t, 0.0, s.MeanLast(10), "empty series means zero for display")

	for _, v := range []float64{10, 20, 30, 40} {
		s.Append(v)
	}
	assert.InDelta(t, 35.0, s.MeanLast(2), 1e-9)
	assert.InDelta(t, 25.0, s.MeanLast(100), 1e-9, "window larger than series uses everything")
}

func TestSeriesLast(t *testing.T) {
	s := NewSeries("fps")
	for i := 1; i <= 5; i++ {
		s.Append(float64(i))
	}

	assert.Equal(t, []float64{4, 5}, s.Last(2))
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, s.Last(10))

	last, ok := s.LastReading()
	require.True(t, ok)
	assert.Equal(t, 5.0, last.Value)
}
