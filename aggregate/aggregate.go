// Package aggregate reduces collected series into the persisted run
// record.
package aggregate

import (
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/edge-bench/metrics"
)

// ErrNoDataCollected is returned when a run produced no frames, so there
// is nothing to summarize and no artifact should be written.
var ErrNoDataCollected = errors.New("no data collected")

// Series names the sampler and driver publish under. Reduce maps these
// onto the corresponding run record fields.
const (
	SeriesFPS       = "fps"
	SeriesLatencyMS = "latency_ms"
	SeriesThermal   = "thermal"
	SeriesCPULoad   = "cpu_load"
	SeriesMemory    = "memory"
	SeriesGPULoad   = "gpu_load"
	SeriesGPUMemGB  = "gpu_memory_gb"
	SeriesPowerW    = "power_w"
)

// Input carries everything a finished run hands to Reduce.
type Input struct {
	Phase        string
	Platform     string
	Architecture string

	TotalFrames int
	Duration    time.Duration

	// FPS and LatencyMS are the foreground series appended once per
	// processed frame.
	FPS       *metrics.Series
	LatencyMS *metrics.Series

	// Sampled holds the background series keyed by probe name.
	Sampled map[string]*metrics.Series

	// EstimateWatts supplies a fallback power figure (given the average
	// CPU load) when no power probe produced readings. Nil disables the
	// estimate.
	EstimateWatts func(cpuLoadAvg float64) float64

	// TransferDefault is recorded when the engine did not measure
	// host/device transfer overhead itself. Nil leaves it unmeasured.
	TransferDefault *metrics.Transfer
	// TransferMS overrides TransferDefault with a measured per-frame
	// figure when non-nil.
	TransferMS *float64

	SystemInfo map[string]string
}

// Reduce summarizes a run's series into an immutable record. Metrics
// with no readings stay nil and persist as null, never as zero.
func Reduce(in Input) (*metrics.RunRecord, error) {
	if in.TotalFrames == 0 || in.FPS == nil || in.FPS.Len() == 0 {
		return nil, ErrNoDataCollected
	}

	record := &metrics.RunRecord{
		Timestamp:       time.Now().UTC(),
		Phase:           in.Phase,
		Platform:        in.Platform,
		Architecture:    in.Architecture,
		TotalFrames:     in.TotalFrames,
		DurationSeconds: in.Duration.Seconds(),
		FPS:             metrics.SummarizeSeries(in.FPS),
		LatencyMS:       metrics.SummarizeSeries(in.LatencyMS),
		Thermal:         summarize(in.Sampled, SeriesThermal),
		CPULoadPercent:  summarize(in.Sampled, SeriesCPULoad),
		MemoryPercent:   summarize(in.Sampled, SeriesMemory),
		GPULoadPercent:  summarize(in.Sampled, SeriesGPULoad),
		GPUMemoryGB:     summarize(in.Sampled, SeriesGPUMemGB),
		SystemInfo:      in.SystemInfo,
	}

	record.Power = reducePower(in, record)
	record.PCIeTransferOverheadMS = reduceTransfer(in, record)
	return record, nil
}

func summarize(sampled map[string]*metrics.Series, name string) *metrics.Stats {
	if sampled == nil {
		return nil
	}
	return metrics.SummarizeSeries(sampled[name])
}

// reducePower prefers measured power readings; otherwise it applies the
// platform's documented estimate. Power-per-FPS uses the run's average
// throughput.
func reducePower(in Input, record *metrics.RunRecord) *metrics.Power {
	power := &metrics.Power{Source: metrics.SourceMeasured}

	if measured := summarize(in.Sampled, SeriesPowerW); measured != nil {
		power.AverageW = measured.Average
	} else if in.EstimateWatts != nil {
		cpuAvg := 0.0
		if record.CPULoadPercent != nil {
			cpuAvg = record.CPULoadPercent.Average
		}
		power.AverageW = in.EstimateWatts(cpuAvg)
		power.Source = metrics.SourceEstimated
	} else {
		return nil
	}

	if record.FPS != nil && record.FPS.Average > 0 {
		power.PerFPS = power.AverageW / record.FPS.Average
	}
	return power
}

// reduceTransfer records per-frame host/device transfer overhead: a
// measured figure when the engine provided one, the platform default
// otherwise. The percentage relates the overhead to average frame
// latency.
func reduceTransfer(in Input, record *metrics.RunRecord) *metrics.Transfer {
	var transfer *metrics.Transfer
	switch {
	case in.TransferMS != nil:
		transfer = &metrics.Transfer{
			AverageMS: *in.TransferMS,
			Source:    metrics.SourceMeasured,
		}
		if in.TransferDefault != nil {
			transfer.Note = in.TransferDefault.Note
		}
	case in.TransferDefault != nil:
		copied := *in.TransferDefault
		transfer = &copied
	default:
		return nil
	}

	if record.LatencyMS != nil && record.LatencyMS.Average > 0 {
		transfer.PercentOfTotal = transfer.AverageMS / record.LatencyMS.Average * 100
	}
	return transfer
}
