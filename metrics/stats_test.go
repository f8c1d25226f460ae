package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, Summarize(nil))
	assert.Nil(t, Summarize([]float64{}))
}

func TestSummarizeKnownValues(t *testing.T) {
	stats := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NotNil(t, stats)

	assert.InDelta(t, 5.0, stats.Average, 1e-9)
	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 9.0, stats.Max)
	// Population standard deviation, not the sample estimator.
	assert.InDelta(t, 2.0, stats.StdDev, 1e-9)
	assert.Equal(t, 8, stats.Samples)
}

func TestSummarizeSingleValue(t *testing.T) {
	stats := Summarize([]float64{42})
	require.NotNil(t, stats)

	assert.Equal(t, 42.0, stats.Average)
	assert.Equal(t, 42.0, stats.Min)
	assert.Equal(t, 42.0, stats.Max)
	assert.Equal(t, 0.0, stats.StdDev)
	assert.Equal(t, 1, stats.Samples)
}

func TestSummarizeConstantSeries(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 100.0
	}

	stats := Summarize(values)
	require.NotNil(t, stats)
	assert.Equal(t, 100.0, stats.Average)
	assert.Equal(t, 100.0, stats.Min)
	assert.Equal(t, 100.0, stats.Max)
	assert.Equal(t, 0.0, stats.StdDev)
}

func TestSummarizeSeries(t *testing.T) {
	assert.Nil(t, SummarizeSeries(nil))

	s := NewSeries("fps")
	assert.Nil(t, SummarizeSeries(s), "series with no readings summarizes to nil")

	s.Append(10)
	s.Append(20)
	stats := SummarizeSeries(s)
	require.NotNil(t, stats)
	assert.InDelta(t, 15.0, stats.Average, 1e-9)
}
