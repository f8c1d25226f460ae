// Package sampler - Fixed-cadence background collection of probe readings
// into per-metric series.
package sampler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nvr-ai/edge-bench/metrics"
	"github.com/nvr-ai/edge-bench/probes"
)

const (
	// DefaultInterval matches the 0.5s monitor cadence used on every
	// platform so sample counts stay comparable across runs.
	DefaultInterval = 500 * time.Millisecond
	// DefaultProbeTimeout bounds a single probe invocation. A hung
	// external tool is killed at this deadline instead of stalling the
	// tick.
	DefaultProbeTimeout = 2 * time.Second
)

// Config carries sampler tunables. Zero values select the defaults above.
type Config struct {
	Interval     time.Duration
	ProbeTimeout time.Duration
	Logger       *slog.Logger
}

// Sampler polls a set of probes at a fixed cadence on a background
// goroutine, appending each successful reading to that probe's series.
//
// One probe failing, timing out, or being permanently absent never
// affects its siblings or terminates the loop: the tick is simply skipped
// for that probe. The sampler owns all writes to its series; readers may
// snapshot them concurrently at any time.
type Sampler struct {
	interval     time.Duration
	probeTimeout time.Duration
	logger       *slog.Logger
	probes       []probes.Probe
	series       map[string]*metrics.Series

	cancel  context.CancelFunc
	done    chan struct{}
	started bool
}

// New builds a sampler for the given probes. Each probe gets an empty
// series named after it, available immediately via Series.
func New(cfg Config, ps ...probes.Probe) *Sampler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	series := make(map[string]*metrics.Series, len(ps))
	for _, p := range ps {
		series[p.Name()] = metrics.NewSeries(p.Name())
	}

	return &Sampler{
		interval:     cfg.Interval,
		probeTimeout: cfg.ProbeTimeout,
		logger:       cfg.Logger.With("component", "sampler"),
		probes:       ps,
		series:       series,
		done:         make(chan struct{}),
	}
}

// Series returns the series for the named probe, nil if unknown.
func (s *Sampler) Series(name string) *metrics.Series {
	return s.series[name]
}

// AllSeries returns every probe series keyed by probe name. The map is
// shared, the series are safe for concurrent reads.
func (s *Sampler) AllSeries() map[string]*metrics.Series {
	return s.series
}

// Start launches the sampling goroutine. The loop runs until ctx is done;
// the driver passes a deadline context so the sampler observes the run
// duration independently of the foreground loop.
func (s *Sampler) Start(ctx context.Context) {
	if s.started {
		return
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)
}

// Stop asks the sampling loop to exit. Safe to call more than once and
// before Start.
func (s *Sampler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Wait blocks until the sampling loop has exited, or until the grace
// period elapses. It returns false on timeout; the caller proceeds
// regardless and only trailing samples are lost.
func (s *Sampler) Wait(grace time.Duration) bool {
	if !s.started {
		return true
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-s.done:
		return true
	case <-timer.C:
		return false
	}
}

func (s *Sampler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// First tick immediately so short runs still collect data.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick polls every probe exactly once, sequentially, each under its own
// timeout.
func (s *Sampler) tick(ctx context.Context) {
	at := time.Now()
	for _, p := range s.probes {
		if ctx.Err() != nil {
			return
		}

		probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
		value, err := p.Sample(probeCtx)
		cancel()

		if err != nil {
			s.logger.Debug("probe skipped", "probe", p.Name(), "err", err)
			continue
		}
		s.series[p.Name()].AppendAt(value, at)
	}
}
