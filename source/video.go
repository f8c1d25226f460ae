package source

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Capture defaults mirror the benchmark's fixed acquisition settings so
// both platforms process identical input.
const (
	captureWidth  = 640
	captureHeight = 480
	captureFPS    = 30
)

// Video reads frames through OpenCV from a video file or capture device.
// File-backed sources rewind to frame zero at end of stream so a short
// clip can feed an arbitrarily long run.
type Video struct {
	cap  *gocv.VideoCapture
	mat  gocv.Mat
	loop bool
	desc string
}

// OpenVideo opens a video file that loops on EOF.
func OpenVideo(path string) (*Video, error) {
	cap, err := gocv.OpenVideoCapture(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open video %s", path)
	}
	return newVideo(cap, true, path), nil
}

// OpenCamera opens a capture device by ID.
func OpenCamera(device int) (*Video, error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, errors.Wrapf(err, "open capture device %d", device)
	}
	return newVideo(cap, false, fmt.Sprintf("camera %d", device)), nil
}

// Open opens the video file at path, falling back to the capture device
// once if the file cannot be opened. When both fail it returns
// ErrUnavailable; the run must not proceed. A nil logger falls back to
// slog.Default.
func Open(path string, fallbackDevice int, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path != "" {
		video, err := OpenVideo(path)
		if err == nil {
			return video, nil
		}
		logger.Warn("video open failed, falling back to camera",
			"path", path, "device", fallbackDevice, "error", err)
	}

	camera, err := OpenCamera(fallbackDevice)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "video %q and camera %d both failed", path, fallbackDevice)
	}
	return camera, nil
}

func newVideo(cap *gocv.VideoCapture, loop bool, desc string) *Video {
	cap.Set(gocv.VideoCaptureFrameWidth, captureWidth)
	cap.Set(gocv.VideoCaptureFrameHeight, captureHeight)
	cap.Set(gocv.VideoCaptureFPS, captureFPS)

	return &Video{
		cap:  cap,
		mat:  gocv.NewMat(),
		loop: loop,
		desc: desc,
	}
}

// Next implements Source.
func (v *Video) Next() (image.Image, error) {
	for attempt := 0; attempt < 2; attempt++ {
		if ok := v.cap.Read(&v.mat); !ok {
			if v.loop {
				v.cap.Set(gocv.VideoCapturePosFrames, 0)
				continue
			}
			return nil, ErrEndOfStream
		}
		if v.mat.Empty() {
			continue
		}
		img, err := v.mat.ToImage()
		if err != nil {
			return nil, errors.Wrap(err, "convert frame")
		}
		return img, nil
	}
	return nil, ErrEndOfStream
}

// Close implements Source.
func (v *Video) Close() error {
	v.mat.Close()
	return v.cap.Close()
}

// String describes the underlying input for operator output.
func (v *Video) String() string { return v.desc }
