package detect

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildOutput assembles a [4+classes][anchors] row-major tensor with the
// given boxes written into distinct anchor columns.
func buildOutput(anchors, classes int, boxes []struct {
	anchor       int
	cx, cy, w, h float32
	classID      int
	score        float32
}) []float32 {
	out := make([]float32, (4+classes)*anchors)
	for _, b := range boxes {
		out[0*anchors+b.anchor] = b.cx
		out[1*anchors+b.anchor] = b.cy
		out[2*anchors+b.anchor] = b.w
		out[3*anchors+b.anchor] = b.h
		out[(4+b.classID)*anchors+b.anchor] = b.score
	}
	return out
}

func TestDecodeOutputThresholdsAndScales(t *testing.T) {
	const anchors, classes = 4, 3
	bounds := image.Rect(0, 0, 1280, 960) // 2x the 640 model space

	out := buildOutput(anchors, classes, []struct {
		anchor       int
		cx, cy, w, h float32
		classID      int
		score        float32
	}{
		{anchor: 0, cx: 320, cy: 240, w: 100, h: 80, classID: 0, score: 0.9},
		{anchor: 1, cx: 100, cy: 100, w: 50, h: 50, classID: 2, score: 0.3}, // below threshold
	})

	detections := decodeOutput(out, anchors, classes, 0.5, 0.45, 2.0, 1.5, bounds)
	require.Len(t, detections, 1)

	d := detections[0]
	assert.Equal(t, 0, d.ClassID)
	assert.Equal(t, "person", d.ClassName)
	assert.InDelta(t, 0.9, float64(d.Score), 1e-6)
	// Center (320,240), size 100x80, scaled by (2.0, 1.5).
	assert.Equal(t, image.Rect(540, 300, 740, 420), d.Box)
}

func TestDecodeOutputClampsToFrame(t *testing.T) {
	const anchors, classes = 2, 1
	bounds := image.Rect(0, 0, 640, 480)

	out := buildOutput(anchors, classes, []struct {
		anchor       int
		cx, cy, w, h float32
		classID      int
		score        float32
	}{
		{anchor: 0, cx: 630, cy: 470, w: 100, h: 100, classID: 0, score: 0.8},
	})

	detections := decodeOutput(out, anchors, classes, 0.5, 0.45, 1.0, 1.0, bounds)
	require.Len(t, detections, 1)
	assert.True(t, detections[0].Box.In(bounds))
}

func TestApplyNMSSuppressesOverlaps(t *testing.T) {
	detections := []Detection{
		{Box: image.Rect(0, 0, 100, 100), Score: 0.9, ClassID: 0},
		{Box: image.Rect(5, 5, 105, 105), Score: 0.8, ClassID: 0},   // overlaps the first
		{Box: image.Rect(300, 300, 400, 400), Score: 0.7, ClassID: 0}, // far away
	}

	kept := applyNMS(detections, 0.45)
	require.Len(t, kept, 2)
	assert.Equal(t, float32(0.9), kept[0].Score)
	assert.Equal(t, float32(0.7), kept[1].Score)
}

func TestApplyNMSKeepsDifferentClasses(t *testing.T) {
	detections := []Detection{
		{Box: image.Rect(0, 0, 100, 100), Score: 0.9, ClassID: 0},
		{Box: image.Rect(0, 0, 100, 100), Score: 0.8, ClassID: 2},
	}

	kept := applyNMS(detections, 0.45)
	assert.Len(t, kept, 2, "identical boxes of different classes both survive")
}

func TestIOU(t *testing.T) {
	a := image.Rect(0, 0, 10, 10)
	assert.Equal(t, float32(1.0), iou(a, a))
	assert.Equal(t, float32(0.0), iou(a, image.Rect(20, 20, 30, 30)))

	// 5x5 intersection, union 100+100-25.
	b := image.Rect(5, 5, 15, 15)
	assert.InDelta(t, 25.0/175.0, float64(iou(a, b)), 1e-6)
}

func TestPreprocessShapeAndRange(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 32, 24))
	data := preprocess(img, 16)

	require.Len(t, data, 3*16*16)
	for _, v := range data {
		assert.GreaterOrEqual(t, v, float32(0))
		assert.LessOrEqual(t, v, float32(1))
	}
}

func TestFrameScale(t *testing.T) {
	sx, sy := frameScale(image.Rect(0, 0, 1280, 480), 640)
	assert.Equal(t, float32(2.0), sx)
	assert.Equal(t, float32(0.75), sy)
}

func TestAnchorCount(t *testing.T) {
	// 80^2 + 40^2 + 20^2 for the standard 640 input.
	assert.Equal(t, 8400, anchorCount(640))
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "person", ClassName(0))
	assert.Equal(t, "toothbrush", ClassName(79))
	assert.Equal(t, "unknown", ClassName(-1))
	assert.Equal(t, "unknown", ClassName(80))
}

func TestNullEngine(t *testing.T) {
	engine := Null{}
	detections, err := engine.Detect(image.NewRGBA(image.Rect(0, 0, 8, 8)))
	require.NoError(t, err)
	assert.Empty(t, detections)
	assert.NoError(t, engine.Close())
}
