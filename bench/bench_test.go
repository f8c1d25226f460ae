package bench

import (
	"bytes"
	"context"
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/edge-bench/detect"
	"github.com/nvr-ai/edge-bench/metrics"
	"github.com/nvr-ai/edge-bench/platform"
	"github.com/nvr-ai/edge-bench/probes"
	"github.com/nvr-ai/edge-bench/source"
)

func testPreset(extra ...probes.Probe) platform.Preset {
	return platform.Preset{
		Name:     "test",
		Phase:    "Phase 1: CPU Baseline",
		Platform: "Test Rig",
		Probes: func(_, _ string) []probes.Probe {
			ps := []probes.Probe{
				probes.Func{ProbeName: "thermal", Fn: func(context.Context) (float64, error) { return 40, nil }},
			}
			return append(ps, extra...)
		},
	}
}

func TestRunEndToEnd(t *testing.T) {
	record, err := Run(context.Background(), Options{
		Preset:         testPreset(),
		Source:         source.NewSynthetic(60),
		Engine:         detect.Null{Delay: time.Millisecond},
		SampleInterval: 10 * time.Millisecond,
		ProgressEvery:  -1,
	})
	require.NoError(t, err)

	assert.Equal(t, 60, record.TotalFrames)
	assert.Greater(t, record.DurationSeconds, 0.0)
	assert.Equal(t, "Phase 1: CPU Baseline", record.Phase)
	assert.Equal(t, "Test Rig", record.Platform)

	// One FPS and one latency reading per processed frame.
	require.NotNil(t, record.FPS)
	assert.Equal(t, 60, record.FPS.Samples)
	require.NotNil(t, record.LatencyMS)
	assert.Equal(t, 60, record.LatencyMS.Samples)
	assert.GreaterOrEqual(t, record.LatencyMS.Min, 1.0, "null engine delay shows up as latency")

	require.NotNil(t, record.Thermal)
	assert.Equal(t, 40.0, record.Thermal.Average)

	require.NotEmpty(t, record.SystemInfo)
	assert.Contains(t, record.SystemInfo, "os")
}

func TestRunDurationBound(t *testing.T) {
	start := time.Now()
	record, err := Run(context.Background(), Options{
		Preset:         testPreset(),
		Source:         source.NewSynthetic(0), // unlimited
		Engine:         detect.Null{Delay: 2 * time.Millisecond},
		Duration:       150 * time.Millisecond,
		SampleInterval: 10 * time.Millisecond,
		ProgressEvery:  -1,
	})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 3*time.Second)
	assert.Greater(t, record.TotalFrames, 0)
}

func TestRunNoFrames(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Preset:        testPreset(),
		Source:        source.NewSynthetic(0),
		Engine:        detect.Null{},
		Duration:      time.Nanosecond,
		ProgressEvery: -1,
	})
	// A run that never processed a frame produces no artifact.
	assert.Error(t, err)
}

func TestRunValidatesOptions(t *testing.T) {
	_, err := Run(context.Background(), Options{Engine: detect.Null{}, Preset: testPreset()})
	assert.Error(t, err, "source required")

	_, err = Run(context.Background(), Options{Source: source.NewSynthetic(1), Preset: testPreset()})
	assert.Error(t, err, "engine required")

	_, err = Run(context.Background(), Options{Source: source.NewSynthetic(1), Engine: detect.Null{}})
	assert.Error(t, err, "preset probes required")
}

func TestRunProgressOutput(t *testing.T) {
	var out bytes.Buffer
	_, err := Run(context.Background(), Options{
		Preset:        testPreset(),
		Source:        source.NewSynthetic(25),
		Engine:        detect.Null{},
		ProgressEvery: 10,
		Out:           &out,
	})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Frame 10:")
	assert.Contains(t, out.String(), "Frame 20:")
	assert.NotContains(t, out.String(), "Frame 25:")
}

// measuringEngine detects nothing but reports a fixed transfer cost.
type measuringEngine struct {
	detect.Null
	transferMS float64
}

func (m measuringEngine) MeasureTransferMS() (float64, error) { return m.transferMS, nil }

func TestRunRecordsMeasuredTransfer(t *testing.T) {
	record, err := Run(context.Background(), Options{
		Preset:        testPreset(),
		Source:        source.NewSynthetic(10),
		Engine:        measuringEngine{transferMS: 1.5},
		ProgressEvery: -1,
	})
	require.NoError(t, err)

	transfer := record.PCIeTransferOverheadMS
	require.NotNil(t, transfer)
	assert.Equal(t, metrics.SourceMeasured, transfer.Source)
	assert.Equal(t, 1.5, transfer.AverageMS)
}

func TestRunPowerEstimateFromPreset(t *testing.T) {
	preset := testPreset()
	preset.EstimateWatts = func(float64) float64 { return 6.0 }

	record, err := Run(context.Background(), Options{
		Preset:        preset,
		Source:        source.NewSynthetic(10),
		Engine:        detect.Null{},
		ProgressEvery: -1,
	})
	require.NoError(t, err)

	require.NotNil(t, record.Power)
	assert.Equal(t, metrics.SourceEstimated, record.Power.Source)
	assert.Equal(t, 6.0, record.Power.AverageW)
}

func TestRunConstantLatencyStats(t *testing.T) {
	const frames = 30
	const delayMS = 15.0

	record, err := Run(context.Background(), Options{
		Preset:        testPreset(),
		Source:        source.NewSynthetic(frames),
		Engine:        detect.Null{Delay: 15 * time.Millisecond},
		ProgressEvery: -1,
	})
	require.NoError(t, err)

	latency := record.LatencyMS
	require.NotNil(t, latency)
	assert.Equal(t, frames, latency.Samples)
	// Sleep lower-bounds every detection, so the whole distribution sits
	// at or above the delay and the average lands inside [min, max].
	assert.GreaterOrEqual(t, latency.Min, delayMS)
	assert.GreaterOrEqual(t, latency.Average, latency.Min)
	assert.LessOrEqual(t, latency.Average, latency.Max)

	fps := record.FPS
	require.NotNil(t, fps)
	assert.Equal(t, frames, fps.Samples)
	// Every cumulative reading i/elapsed_i is capped by the per-frame
	// floor: elapsed_i >= i*delay.
	assert.LessOrEqual(t, fps.Max, 1000.0/delayMS)
	assert.Greater(t, fps.Min, 0.0)
}

// frontLoadedEngine burns a long first detection and returns instantly
// afterwards. Cumulative throughput must stay depressed by that first
// frame; a per-frame instantaneous rate would explode after it.
type frontLoadedEngine struct {
	first time.Duration
	calls int
}

func (e *frontLoadedEngine) Detect(image.Image) ([]detect.Detection, error) {
	e.calls++
	if e.calls == 1 {
		time.Sleep(e.first)
	}
	return nil, nil
}

func (e *frontLoadedEngine) Close() error { return nil }

func TestRunFPSIsCumulativeAverage(t *testing.T) {
	const frames = 10
	first := 100 * time.Millisecond

	record, err := Run(context.Background(), Options{
		Preset:        testPreset(),
		Source:        source.NewSynthetic(frames),
		Engine:        &frontLoadedEngine{first: first},
		ProgressEvery: -1,
	})
	require.NoError(t, err)

	fps := record.FPS
	require.NotNil(t, fps)
	require.Equal(t, frames, fps.Samples)

	// elapsed_i includes the slow first frame for every i, so each
	// reading i/elapsed_i is bounded by frames/first. Instantaneous
	// 1/frame_time readings for frames 2..N would be orders of
	// magnitude above this ceiling.
	ceiling := float64(frames) / first.Seconds()
	assert.LessOrEqual(t, fps.Max, ceiling)
	// The first reading is 1/elapsed_1 with elapsed_1 >= first.
	assert.LessOrEqual(t, fps.Min, 1.0/first.Seconds())
}

// brokenEngine fails every detection, like a detector whose session died
// mid-run.
type brokenEngine struct{}

func (brokenEngine) Detect(image.Image) ([]detect.Detection, error) { return nil, assert.AnError }
func (brokenEngine) Close() error                                   { return nil }

func TestRunDetectorFailureAborts(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Preset:        testPreset(),
		Source:        source.NewSynthetic(10),
		Engine:        brokenEngine{},
		ProgressEvery: -1,
	})
	assert.Error(t, err)
}
