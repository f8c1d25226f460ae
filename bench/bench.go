// Package bench runs a benchmark: the foreground inference loop plus the
// background sampler, reduced into a run record at the end.
package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nvr-ai/edge-bench/aggregate"
	"github.com/nvr-ai/edge-bench/detect"
	"github.com/nvr-ai/edge-bench/metrics"
	"github.com/nvr-ai/edge-bench/platform"
	"github.com/nvr-ai/edge-bench/sampler"
	"github.com/nvr-ai/edge-bench/source"
)

// TransferMeasurer is implemented by engines that can time their own
// host/device transfer cost. When the engine does not implement it the
// preset's documented default is recorded instead.
type TransferMeasurer interface {
	MeasureTransferMS() (float64, error)
}

// DefaultStopGrace bounds how long Run waits for the sampler's final
// tick after the inference loop ends.
const DefaultStopGrace = 2 * time.Second

// DefaultProgressEvery is the frame interval between progress lines.
const DefaultProgressEvery = 30

// Options configures a benchmark run.
type Options struct {
	Preset platform.Preset
	Source source.Source
	Engine detect.Engine

	// Duration bounds the run; zero runs until the source ends.
	Duration time.Duration

	// SampleInterval and ProbeTimeout configure the background sampler;
	// zero values select the sampler defaults.
	SampleInterval time.Duration
	ProbeTimeout   time.Duration
	// StopGrace bounds the wait for the sampler to drain on shutdown.
	StopGrace time.Duration

	// ProgressEvery prints a progress line each N frames; negative
	// disables progress output.
	ProgressEvery int

	// SysfsRoot and ProcRoot override probe filesystem roots in tests.
	SysfsRoot string
	ProcRoot  string

	Logger *slog.Logger
	// Out receives progress lines, os.Stdout by default.
	Out io.Writer

	// Metrics, when set, receives the sampler's collector so live probe
	// readings can be scraped during the run.
	Metrics prometheus.Registerer
}

// Run executes the benchmark and reduces its series into a run record.
// It returns aggregate.ErrNoDataCollected when no frames were processed.
func Run(ctx context.Context, opts Options) (*metrics.RunRecord, error) {
	if opts.Source == nil {
		return nil, errors.New("bench: no frame source")
	}
	if opts.Engine == nil {
		return nil, errors.New("bench: no detection engine")
	}
	if opts.Preset.Probes == nil {
		return nil, errors.Errorf("bench: preset %q has no probe set", opts.Preset.Name)
	}
	if opts.StopGrace <= 0 {
		opts.StopGrace = DefaultStopGrace
	}
	if opts.ProgressEvery == 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	runCtx := ctx
	if opts.Duration > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, opts.Duration)
		defer cancel()
	}

	smp := sampler.New(sampler.Config{
		Interval:     opts.SampleInterval,
		ProbeTimeout: opts.ProbeTimeout,
		Logger:       opts.Logger,
	}, opts.Preset.Probes(opts.SysfsRoot, opts.ProcRoot)...)
	if opts.Metrics != nil {
		if err := opts.Metrics.Register(smp.Collector()); err != nil {
			opts.Logger.Warn("could not register sampler metrics", "error", err)
		}
	}
	smp.Start(runCtx)

	fps := metrics.NewSeries(aggregate.SeriesFPS)
	latency := metrics.NewSeries(aggregate.SeriesLatencyMS)

	start := time.Now()
	frames, loopErr := inferenceLoop(runCtx, opts, fps, latency)
	duration := time.Since(start)

	smp.Stop()
	if !smp.Wait(opts.StopGrace) {
		opts.Logger.Warn("sampler did not drain before grace expired",
			"grace", opts.StopGrace)
	}

	if loopErr != nil {
		return nil, loopErr
	}

	input := aggregate.Input{
		Phase:           opts.Preset.Phase,
		Platform:        opts.Preset.Platform,
		Architecture:    opts.Preset.Architecture,
		TotalFrames:     frames,
		Duration:        duration,
		FPS:             fps,
		LatencyMS:       latency,
		Sampled:         smp.AllSeries(),
		EstimateWatts:   opts.Preset.EstimateWatts,
		TransferDefault: opts.Preset.Transfer,
		SystemInfo:      platform.Detect(opts.SysfsRoot, opts.ProcRoot).Map(),
	}

	if measurer, ok := opts.Engine.(TransferMeasurer); ok {
		if ms, err := measurer.MeasureTransferMS(); err == nil {
			input.TransferMS = &ms
		} else {
			opts.Logger.Debug("transfer measurement unavailable", "error", err)
		}
	}

	return aggregate.Reduce(input)
}

// inferenceLoop pulls frames until the context or source ends, timing
// each detection and appending per-frame FPS and latency readings.
func inferenceLoop(ctx context.Context, opts Options, fps, latency *metrics.Series) (int, error) {
	frames := 0
	start := time.Now()

	for {
		select {
		case <-ctx.Done():
			return frames, nil
		default:
		}

		frame, err := opts.Source.Next()
		if err != nil {
			if errors.Is(err, source.ErrEndOfStream) {
				return frames, nil
			}
			return frames, errors.Wrap(err, "read frame")
		}

		inferStart := time.Now()
		if _, err := opts.Engine.Detect(frame); err != nil {
			return frames, errors.Wrap(err, "run detection")
		}
		latency.Append(float64(time.Since(inferStart)) / float64(time.Millisecond))

		frames++
		elapsed := time.Since(start).Seconds()
		if elapsed > 0 {
			fps.Append(float64(frames) / elapsed)
		}

		if opts.ProgressEvery > 0 && frames%opts.ProgressEvery == 0 {
			fmt.Fprintf(opts.Out, "Frame %d: %.1f FPS, %.1f ms inference\n",
				frames,
				fps.MeanLast(opts.ProgressEvery),
				latency.MeanLast(opts.ProgressEvery))
		}
	}
}
