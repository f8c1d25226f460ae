package source

import (
	"image"

	vidio "github.com/AlexEidt/Vidio"
	"github.com/pkg/errors"
)

// File reads frames from a video file without OpenCV, via ffmpeg-backed
// Vidio. Useful on hosts where gocv is not installed. Like Video it
// rewinds on EOF by reopening the file.
type File struct {
	path  string
	video *vidio.Video
}

// OpenFile opens a looping pure-Go video file source.
func OpenFile(path string) (*File, error) {
	video, err := vidio.NewVideo(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open video %s", path)
	}
	return &File{path: path, video: video}, nil
}

// Next implements Source.
func (f *File) Next() (image.Image, error) {
	if !f.video.Read() {
		// Rewind by reopening; Vidio has no seek.
		f.video.Close()
		video, err := vidio.NewVideo(f.path)
		if err != nil {
			return nil, errors.Wrapf(err, "reopen video %s", f.path)
		}
		f.video = video
		if !f.video.Read() {
			return nil, ErrEndOfStream
		}
	}

	width, height := f.video.Width(), f.video.Height()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, f.video.FrameBuffer())
	return img, nil
}

// Close implements Source.
func (f *File) Close() error {
	f.video.Close()
	return nil
}
