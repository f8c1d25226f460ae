package detect

import (
	"image"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Config configures the ONNX Runtime detector.
type Config struct {
	// ModelPath points at a YOLOv8-layout ONNX model.
	ModelPath string
	// InputSize is the square model input edge, 640 by default.
	InputSize int
	// ConfidenceThreshold drops detections below this score, 0.5 by
	// default (matching the benchmark's predict confidence).
	ConfidenceThreshold float32
	// NMSThreshold is the IoU above which same-class boxes are
	// suppressed, 0.45 by default.
	NMSThreshold float32
	// LibraryPath optionally points at the onnxruntime shared library.
	LibraryPath string
	// UseCUDA requests the CUDA execution provider. When it cannot be
	// appended the session falls back to CPU.
	UseCUDA bool

	// InputName and OutputName override the model tensor names,
	// "images" and "output0" by default.
	InputName  string
	OutputName string
}

// Detector runs YOLOv8 inference through ONNX Runtime.
type Detector struct {
	cfg     Config
	session *ort.DynamicAdvancedSession
	anchors int
	mu      sync.Mutex
}

// Environment initialization happens once per process; a failure is
// latched so every later constructor reports it instead of running
// against an uninitialized runtime.
var (
	ortInitOnce sync.Once
	ortInitErr  error
)

// NewDetector loads the model and builds an inference session.
func NewDetector(cfg Config) (*Detector, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 640
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.5
	}
	if cfg.NMSThreshold <= 0 {
		cfg.NMSThreshold = defaultNMSThreshold
	}
	if cfg.InputName == "" {
		cfg.InputName = "images"
	}
	if cfg.OutputName == "" {
		cfg.OutputName = "output0"
	}

	ortInitOnce.Do(func() {
		if cfg.LibraryPath != "" {
			ort.SetSharedLibraryPath(cfg.LibraryPath)
		}
		if !ort.IsInitialized() {
			ortInitErr = ort.InitializeEnvironment()
		}
	})
	if ortInitErr != nil {
		return nil, errors.Wrap(ortInitErr, "initialize onnxruntime")
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "create session options")
	}
	defer opts.Destroy()

	if cfg.UseCUDA {
		cudaOpts, cudaErr := ort.NewCUDAProviderOptions()
		if cudaErr == nil {
			if cudaErr = opts.AppendExecutionProviderCUDA(cudaOpts); cudaErr != nil {
				cudaErr = errors.Wrap(cudaErr, "append CUDA provider")
			}
			cudaOpts.Destroy()
		}
		if cudaErr != nil {
			// Fall back to CPU when CUDA is absent.
			cfg.UseCUDA = false
		}
	}

	session, err := ort.NewDynamicAdvancedSession(
		cfg.ModelPath,
		[]string{cfg.InputName},
		[]string{cfg.OutputName},
		opts,
	)
	if err != nil {
		return nil, errors.Wrapf(err, "load model %s", cfg.ModelPath)
	}

	return &Detector{
		cfg:     cfg,
		session: session,
		anchors: anchorCount(cfg.InputSize),
	}, nil
}

// anchorCount returns the YOLOv8 anchor total for a square input edge:
// one cell per 8, 16, and 32 pixel stride.
func anchorCount(size int) int {
	return (size/8)*(size/8) + (size/16)*(size/16) + (size/32)*(size/32)
}

// Accelerated reports whether the CUDA provider is active.
func (d *Detector) Accelerated() bool { return d.cfg.UseCUDA }

// Detect implements Engine. The Run call blocks until device work
// completes, so timing the call measures full inference latency.
func (d *Detector) Detect(img image.Image) ([]Detection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	size := d.cfg.InputSize
	input, err := ort.NewTensor(
		ort.NewShape(1, 3, int64(size), int64(size)),
		preprocess(img, size),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create input tensor")
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](
		ort.NewShape(1, int64(4+len(cocoClasses)), int64(d.anchors)),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create output tensor")
	}
	defer output.Destroy()

	if err := d.session.Run([]ort.Value{input}, []ort.Value{output}); err != nil {
		return nil, errors.Wrap(err, "run inference")
	}

	sx, sy := frameScale(img.Bounds(), size)
	return decodeOutput(
		output.GetData(),
		d.anchors,
		len(cocoClasses),
		d.cfg.ConfidenceThreshold,
		d.cfg.NMSThreshold,
		sx, sy,
		img.Bounds(),
	), nil
}

// Close implements Engine.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.session != nil {
		err := d.session.Destroy()
		d.session = nil
		return err
	}
	return nil
}
