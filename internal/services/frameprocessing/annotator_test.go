package frameprocessing

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/labels"
	"yolo-webcam-go/internal/models"
)

func TestAnnotateIsIdempotentOnRectangle(t *testing.T) {
	a := NewAnnotator(labels.COCO(), nil, DefaultAnnotatorOptions())
	det := models.Detection{BBox: models.BBox{X1: 100, Y1: 100, X2: 200, Y2: 200}, ClassID: 0, Confidence: 0.92}

	frame := grayFrame(640, 480)
	_, err := a.Annotate(frame, det)
	require.NoError(t, err)
	first := make([]color.RGBA, 0)
	for _, p := range rectPixels(det.BBox) {
		first = append(first, pixel(frame, p[0], p[1]))
	}

	out, err := a.Annotate(frame, det)
	require.NoError(t, err)
	assert.Same(t, frame, out, "annotation happens in place")
	for i, p := range rectPixels(det.BBox) {
		require.Equal(t, first[i], pixel(frame, p[0], p[1]))
	}
}

func TestAnnotateUnknownClassLeavesFrame(t *testing.T) {
	a := NewAnnotator(labels.COCO(), nil, DefaultAnnotatorOptions())
	frame := grayFrame(64, 64)
	before := append([]byte(nil), frame.Data...)

	_, err := a.Annotate(frame, models.Detection{BBox: models.BBox{X1: 1, Y1: 30, X2: 20, Y2: 50}, ClassID: -1, Confidence: 0.9})
	assert.ErrorIs(t, err, labels.ErrUnknownClass)
	assert.Equal(t, before, frame.Data)
}

func TestAnnotateClipsAtFrameEdges(t *testing.T) {
	a := NewAnnotator(labels.COCO(), nil, DefaultAnnotatorOptions())

	tests := []struct {
		name   string
		box    models.BBox
		corner [2]int
	}{
		{"label above the top edge", models.BBox{X1: 10, Y1: 5, X2: 60, Y2: 40}, [2]int{10, 5}},
		{"box past bottom right", models.BBox{X1: 100, Y1: 100, X2: 300, Y2: 300}, [2]int{100, 100}},
		{"box starting left of frame", models.BBox{X1: -20, Y1: 60, X2: 30, Y2: 90}, [2]int{30, 90}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := grayFrame(128, 128)
			require.NotPanics(t, func() {
				_, err := a.Annotate(frame, models.Detection{BBox: tt.box, ClassID: 41, Confidence: 0.77})
				require.NoError(t, err)
			})
			assert.Equal(t, magenta, pixel(frame, tt.corner[0], tt.corner[1]))
		})
	}
}

func TestAnnotateLabelEntirelyOutside(t *testing.T) {
	a := NewAnnotator(labels.COCO(), nil, DefaultAnnotatorOptions())
	frame := grayFrame(64, 64)
	before := append([]byte(nil), frame.Data...)

	_, err := a.Annotate(frame, models.Detection{BBox: models.BBox{X1: 100, Y1: 100, X2: 120, Y2: 120}, ClassID: 0, Confidence: 0.9})
	require.NoError(t, err)
	assert.Equal(t, before, frame.Data)
}

func TestAnnotateLabelFirstKeepsBoxOnTop(t *testing.T) {
	opts := DefaultAnnotatorOptions()
	opts.DrawOrder = config.DrawOrderLabelFirst
	opts.Color = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	a := NewAnnotator(labels.COCO(), nil, opts)

	box := models.BBox{X1: 20, Y1: 40, X2: 90, Y2: 100}
	frame := grayFrame(200, 150)
	_, err := a.Annotate(frame, models.Detection{BBox: box, ClassID: 6, Confidence: 0.66})
	require.NoError(t, err)
	for _, p := range rectPixels(box) {
		require.Equal(t, opts.Color, pixel(frame, p[0], p[1]))
	}
}

func TestAnnotatorOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{AnnotationColor: "#00ff7f", FontSize: 18, LabelOffsetY: 20, BoxThickness: 3, DrawOrder: config.DrawOrderBoxFirst}
	opts, err := AnnotatorOptionsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0, G: 255, B: 127, A: 255}, opts.Color)
	assert.Equal(t, 3, opts.Thickness)

	cfg.AnnotationColor = "magenta"
	_, err = AnnotatorOptionsFromConfig(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestDrawRectangleThickness(t *testing.T) {
	frame := grayFrame(20, 20)
	drawRectangle(frame, models.BBox{X1: 2, Y1: 2, X2: 12, Y2: 12}, magenta, 3)

	assert.Equal(t, magenta, pixel(frame, 4, 7), "third stroke row")
	assert.NotEqual(t, magenta, pixel(frame, 5, 7), "interior")
	assert.NotEqual(t, magenta, pixel(frame, 1, 7), "outside")
	assert.Equal(t, magenta, pixel(frame, 12, 12))
}

func TestDrawRectangleHugeBoxIsClipped(t *testing.T) {
	frame := grayFrame(64, 64)
	box := models.BBox{X1: -1_000_000_000_000, Y1: -1_000_000_000_000, X2: 1_000_000_000_000, Y2: 30}

	start := time.Now()
	drawRectangle(frame, box, magenta, 2)
	assert.Less(t, time.Since(start), time.Second)

	for x := 0; x < 64; x++ {
		require.Equal(t, magenta, pixel(frame, x, 30), "bottom edge x=%d", x)
		require.Equal(t, magenta, pixel(frame, x, 29), "inner stroke x=%d", x)
	}
	assert.NotEqual(t, magenta, pixel(frame, 10, 28))
	assert.NotEqual(t, magenta, pixel(frame, 10, 31))
}

func TestRequiredRunes(t *testing.T) {
	runes := RequiredRunes(labels.COCO())
	for _, r := range "0123456789.ườ" {
		assert.Contains(t, runes, r)
	}
	seen := map[rune]bool{}
	for _, r := range runes {
		assert.False(t, seen[r], "duplicate rune %q", r)
		seen[r] = true
	}
}
