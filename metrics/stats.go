package metrics

import "math"

// Stats summarizes one metric series. A nil *Stats is the explicit
// "no data collected" marker and serializes as JSON null; it is never
// replaced by a zeroed value.
type Stats struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	StdDev  float64 `json:"std_dev"`
	Samples int     `json:"samples"`
}

// Summarize reduces raw values to summary statistics. Returns nil for an
// empty input. The reduction is a plain left-to-right float64 accumulation
// so results are identical on every platform; std-dev is the population
// standard deviation.
func Summarize(values []float64) *Stats {
	if len(values) == 0 {
		return nil
	}

	min, max := values[0], values[0]
	var sum float64
	for _, v := range values {
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean := sum / float64(len(values))

	var sqSum float64
	for _, v := range values {
		d := v - mean
		sqSum += d * d
	}

	return &Stats{
		Average: mean,
		Min:     min,
		Max:     max,
		StdDev:  math.Sqrt(sqSum / float64(len(values))),
		Samples: len(values),
	}
}

// SummarizeSeries reduces a series to summary statistics, nil when the
// series never received a reading.
func SummarizeSeries(s *Series) *Stats {
	if s == nil {
		return nil
	}
	return Summarize(s.Values())
}
