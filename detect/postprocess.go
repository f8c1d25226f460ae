package detect

import (
	"image"
	"sort"

	"github.com/chewxy/math32"
)

// decodeOutput converts a raw YOLOv8 output tensor, laid out as
// [4+classes][anchors] row-major, into thresholded detections in original
// frame coordinates.
func decodeOutput(output []float32, anchors, classes int, threshold, nmsThreshold float32, sx, sy float32, bounds image.Rectangle) []Detection {
	var detections []Detection

	for a := 0; a < anchors; a++ {
		classID := 0
		best := float32(0)
		for c := 0; c < classes; c++ {
			score := output[(4+c)*anchors+a]
			if score > best {
				best = score
				classID = c
			}
		}
		if best < threshold {
			continue
		}

		cx := output[0*anchors+a]
		cy := output[1*anchors+a]
		w := output[2*anchors+a]
		h := output[3*anchors+a]

		x1 := int(math32.Round((cx - w/2) * sx))
		y1 := int(math32.Round((cy - h/2) * sy))
		x2 := int(math32.Round((cx + w/2) * sx))
		y2 := int(math32.Round((cy + h/2) * sy))

		box := image.Rect(x1, y1, x2, y2).Intersect(bounds)
		if box.Empty() {
			continue
		}

		detections = append(detections, Detection{
			Box:       box,
			Score:     best,
			ClassID:   classID,
			ClassName: ClassName(classID),
		})
	}

	return applyNMS(detections, nmsThreshold)
}

const defaultNMSThreshold = 0.45

// applyNMS removes overlapping detections of the same class, keeping the
// highest-scoring box of each overlapping cluster.
func applyNMS(detections []Detection, iouThreshold float32) []Detection {
	if len(detections) == 0 {
		return detections
	}

	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Score > detections[j].Score
	})

	kept := make([]Detection, 0, len(detections))
	suppressed := make([]bool, len(detections))

	for i := range detections {
		if suppressed[i] {
			continue
		}
		kept = append(kept, detections[i])

		for j := i + 1; j < len(detections); j++ {
			if suppressed[j] || detections[j].ClassID != detections[i].ClassID {
				continue
			}
			if iou(detections[i].Box, detections[j].Box) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// iou computes intersection-over-union of two boxes.
func iou(a, b image.Rectangle) float32 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}
	interArea := float32(inter.Dx() * inter.Dy())
	union := float32(a.Dx()*a.Dy()+b.Dx()*b.Dy()) - interArea
	if union <= 0 {
		return 0
	}
	return interArea / union
}
