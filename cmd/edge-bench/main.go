package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nvr-ai/edge-bench/aggregate"
	"github.com/nvr-ai/edge-bench/bench"
	"github.com/nvr-ai/edge-bench/config"
	"github.com/nvr-ai/edge-bench/detect"
	"github.com/nvr-ai/edge-bench/platform"
	"github.com/nvr-ai/edge-bench/source"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to a JSON or YAML run configuration file")
		presetName  = flag.String("preset", "", fmt.Sprintf("Platform preset, one of %v", platform.PresetNames()))
		videoPath   = flag.String("video", "", "Path to the benchmark video file")
		camera      = flag.Int("camera", 0, "Camera device used when the video file cannot be opened")
		decoder     = flag.String("decoder", "", "Video backend: opencv (default) or ffmpeg")
		synthetic   = flag.Int("synthetic", 0, "Use N generated frames instead of a capture source")
		modelPath   = flag.String("model", "", "Path to the ONNX model file (omit for a timing-only null engine)")
		inputSize   = flag.Int("size", 0, "Model input edge in pixels (default 640)")
		confidence  = flag.Float64("confidence", 0, "Detection confidence threshold (default 0.5)")
		libraryPath = flag.String("lib", "", "Path to the onnxruntime shared library")
		useCUDA     = flag.Bool("use-cuda", false, "Force the CUDA execution provider on or off, overriding the preset")
		duration    = flag.Duration("duration", 0, "Run duration, e.g. 60s; 0 runs until the source ends")
		interval    = flag.Duration("interval", 0, "Background sampling interval (default 500ms)")
		outputPath  = flag.String("output", "", "Path for the JSON run artifact (omit to skip writing)")
		metricsAddr = flag.String("metrics-addr", "", "Expose live probe readings on this address, e.g. :9090")
		verbose     = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	cfg := &config.Config{}
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	applyFlags(cfg, *presetName, *videoPath, *decoder, *camera, *synthetic, *modelPath,
		*inputSize, *confidence, *libraryPath, *duration, *interval, *outputPath, *metricsAddr)

	if cfg.Preset == "" {
		log.Fatalf("A platform preset is required (-preset), one of %v", platform.PresetNames())
	}
	preset, err := platform.GetPreset(cfg.Preset)
	if err != nil {
		log.Fatalf("Failed to resolve preset: %v", err)
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "use-cuda" {
			preset.UseCUDA = *useCUDA
		}
	})

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	src, err := openSource(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open frame source: %v", err)
	}
	defer src.Close()

	engine, accelerated, err := openEngine(cfg, preset)
	if err != nil {
		log.Fatalf("Failed to initialize detector: %v", err)
	}
	defer engine.Close()

	var registry *prometheus.Registry
	if cfg.MetricsAddr != "" {
		registry = prometheus.NewRegistry()
		go serveMetrics(cfg.MetricsAddr, registry, logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("\n🚀 Edge Inference Benchmark\n")
	fmt.Printf("=====================================\n")
	fmt.Printf("   Preset:   %s\n", preset.Name)
	fmt.Printf("   Phase:    %s\n", preset.Phase)
	if cfg.Model.Path != "" {
		fmt.Printf("   Model:    %s\n", cfg.Model.Path)
	} else {
		fmt.Printf("   Model:    none (null engine, loop timing only)\n")
	}
	fmt.Printf("   GPU:      %t\n", accelerated)
	if cfg.Duration() > 0 {
		fmt.Printf("   Duration: %v\n", cfg.Duration())
	}
	fmt.Printf("=====================================\n\n")

	opts := bench.Options{
		Preset:         preset,
		Source:         src,
		Engine:         engine,
		Duration:       cfg.Duration(),
		SampleInterval: cfg.SampleInterval(),
		Logger:         logger,
	}
	if registry != nil {
		opts.Metrics = registry
	}

	record, err := bench.Run(ctx, opts)
	if err != nil {
		log.Fatalf("Benchmark failed: %v", err)
	}

	aggregate.PrintSummary(os.Stdout, record)

	if cfg.Output.Path != "" {
		if err := record.Save(cfg.Output.Path); err != nil {
			log.Fatalf("Failed to write run artifact: %v", err)
		}
		fmt.Printf("💾 Results saved to %s\n", cfg.Output.Path)
	}
}

// applyFlags lets command-line values override whatever the config file
// set. Only explicitly provided flags win.
func applyFlags(cfg *config.Config, preset, video, decoder string, camera, synthetic int,
	model string, size int, confidence float64, lib string,
	duration, interval time.Duration, output, metricsAddr string) {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["preset"] {
		cfg.Preset = preset
	}
	if set["video"] {
		cfg.Input.Video = video
	}
	if set["decoder"] {
		cfg.Input.Decoder = decoder
	}
	if set["camera"] {
		cfg.Input.Camera = camera
	}
	if set["synthetic"] {
		cfg.Input.SyntheticFrames = synthetic
	}
	if set["model"] {
		cfg.Model.Path = model
	}
	if set["size"] {
		cfg.Model.InputSize = size
	}
	if set["confidence"] {
		cfg.Model.ConfidenceThreshold = float32(confidence)
	}
	if set["lib"] {
		cfg.Model.LibraryPath = lib
	}
	if set["duration"] {
		cfg.DurationSeconds = duration.Seconds()
	}
	if set["interval"] {
		cfg.SampleIntervalMS = int(interval.Milliseconds())
	}
	if set["output"] {
		cfg.Output.Path = output
	}
	if set["metrics-addr"] {
		cfg.MetricsAddr = metricsAddr
	}
}

func openSource(cfg *config.Config, logger *slog.Logger) (source.Source, error) {
	switch {
	case cfg.Input.SyntheticFrames > 0:
		fmt.Printf("Using %d generated frames\n", cfg.Input.SyntheticFrames)
		return source.NewSynthetic(cfg.Input.SyntheticFrames), nil
	case cfg.Input.Video != "":
		fmt.Printf("Processing video: %s\n", cfg.Input.Video)
		if cfg.Input.Decoder == "ffmpeg" {
			return source.OpenFile(cfg.Input.Video)
		}
		return source.Open(cfg.Input.Video, cfg.Input.Camera, logger)
	default:
		fmt.Printf("Capturing from camera device: %d\n", cfg.Input.Camera)
		return source.OpenCamera(cfg.Input.Camera)
	}
}

func openEngine(cfg *config.Config, preset platform.Preset) (detect.Engine, bool, error) {
	if cfg.Model.Path == "" {
		return detect.Null{}, false, nil
	}
	detector, err := detect.NewDetector(detect.Config{
		ModelPath:           cfg.Model.Path,
		InputSize:           cfg.Model.InputSize,
		ConfidenceThreshold: cfg.Model.ConfidenceThreshold,
		LibraryPath:         cfg.Model.LibraryPath,
		UseCUDA:             preset.UseCUDA,
	})
	if err != nil {
		return nil, false, err
	}
	return detector, detector.Accelerated(), nil
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	logger.Info("serving live metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn("metrics server stopped", "error", err)
	}
}
