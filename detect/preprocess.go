package detect

import (
	"image"

	"github.com/nfnt/resize"
)

// preprocess scales a frame to the model's square input and lays it out as
// normalized NCHW float32, the YOLOv8 input format.
func preprocess(img image.Image, size int) []float32 {
	resized := resize.Resize(uint(size), uint(size), img, resize.Bilinear)

	data := make([]float32, 3*size*size)
	plane := size * size
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			idx := y*size + x
			data[idx] = float32(r>>8) / 255.0
			data[plane+idx] = float32(g>>8) / 255.0
			data[2*plane+idx] = float32(b>>8) / 255.0
		}
	}
	return data
}

// frameScale returns the factors mapping model-space coordinates back to
// the original frame.
func frameScale(bounds image.Rectangle, size int) (sx, sy float32) {
	sx = float32(bounds.Dx()) / float32(size)
	sy = float32(bounds.Dy()) / float32(size)
	return sx, sy
}
