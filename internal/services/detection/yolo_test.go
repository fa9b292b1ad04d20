package detection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yolo-webcam-go/internal/models"
)

// tensor builds a [4+classes, anchors] output from per-anchor rows
func tensor(classes int, anchors [][]float32) []float32 {
	rows := 4 + classes
	out := make([]float32, rows*len(anchors))
	for a, vals := range anchors {
		for r := 0; r < rows; r++ {
			out[r*len(anchors)+a] = vals[r]
		}
	}
	return out
}

func TestSquareScale(t *testing.T) {
	assert.Equal(t, float32(1), SquareScale(640, 480, 640))
	assert.Equal(t, float32(2), SquareScale(1280, 720, 640))
	assert.Equal(t, float32(0.5), SquareScale(240, 320, 640))
}

func TestDecodeYOLOv8(t *testing.T) {
	out := tensor(3, [][]float32{
		{100, 100, 40, 20, 0.1, 0.9, 0.2},  // class 1 wins
		{300, 200, 50, 50, 0.2, 0.1, 0.15}, // below threshold
		{630, 470, 40, 40, 0.6, 0.0, 0.0},  // spills over the frame edge
		{10, 10, 0, 0, 0.99, 0.0, 0.0},     // zero area
	})

	cands, err := DecodeYOLOv8(out, 3, 4, 0.25, 1, 640, 480)
	require.NoError(t, err)
	require.Len(t, cands, 2)

	assert.Equal(t, Candidate{Box: image.Rect(80, 90, 120, 110), ClassID: 1, Confidence: 0.9}, cands[0])
	assert.Equal(t, Candidate{Box: image.Rect(610, 450, 640, 480), ClassID: 0, Confidence: 0.6}, cands[1])
}

func TestDecodeYOLOv8Scales(t *testing.T) {
	out := tensor(1, [][]float32{{320, 180, 64, 36, 0.8}})
	cands, err := DecodeYOLOv8(out, 1, 1, 0.5, SquareScale(1280, 720, 640), 1280, 720)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, image.Rect(576, 324, 704, 396), cands[0].Box)
}

func TestDecodeYOLOv8SizeMismatch(t *testing.T) {
	_, err := DecodeYOLOv8(make([]float32, 10), 80, 8400, 0.25, 1, 640, 480)
	assert.Error(t, err)
}

func TestToDetections(t *testing.T) {
	cands := []Candidate{
		{Box: image.Rect(0, 0, 10, 10), ClassID: 2, Confidence: 0.7},
		{Box: image.Rect(5, 5, 20, 20), ClassID: 0, Confidence: 0.9},
	}
	dets := ToDetections(cands, []int{1, 7, 0})
	assert.Equal(t, []models.Detection{
		{BBox: models.BBox{X1: 5, Y1: 5, X2: 20, Y2: 20}, ClassID: 0, Confidence: 0.9},
		{BBox: models.BBox{X1: 0, Y1: 0, X2: 10, Y2: 10}, ClassID: 2, Confidence: 0.7},
	}, dets)
}
