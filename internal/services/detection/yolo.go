package detection

import (
	"fmt"
	"image"
	"math"

	"yolo-webcam-go/internal/models"
)

// Candidate is one pre-NMS box decoded from a YOLOv8 output tensor, in frame pixels
type Candidate struct {
	Box        image.Rectangle
	ClassID    int
	Confidence float32
}

// SquareScale maps model-input coordinates back to frame pixels when a frame
// has been copied into the top-left corner of a max(w,h) square and resized to size.
func SquareScale(w, h, size int) float32 {
	return float32(max(w, h)) / float32(size)
}

// DecodeYOLOv8 reads a [1, 4+classes, anchors] tensor flattened row-major.
// Each anchor contributes its best class when that score reaches minConfidence.
func DecodeYOLOv8(out []float32, classes, anchors int, minConfidence, scale float32, w, h int) ([]Candidate, error) {
	rows := 4 + classes
	if len(out) != rows*anchors {
		return nil, fmt.Errorf("unexpected YOLOv8 output size %d, want %d (%d x %d)", len(out), rows*anchors, rows, anchors)
	}
	at := func(row, anchor int) float32 { return out[row*anchors+anchor] }

	var candidates []Candidate
	for a := 0; a < anchors; a++ {
		bestClass, bestScore := -1, float32(0)
		for c := 0; c < classes; c++ {
			if s := at(4+c, a); s > bestScore {
				bestClass, bestScore = c, s
			}
		}
		if bestClass < 0 || bestScore < minConfidence {
			continue
		}

		cx, cy, bw, bh := at(0, a), at(1, a), at(2, a), at(3, a)
		box := image.Rect(
			clampInt(scaleCoord(cx-bw/2, scale), 0, w),
			clampInt(scaleCoord(cy-bh/2, scale), 0, h),
			clampInt(scaleCoord(cx+bw/2, scale), 0, w),
			clampInt(scaleCoord(cy+bh/2, scale), 0, h),
		)
		if box.Empty() {
			continue
		}
		candidates = append(candidates, Candidate{Box: box, ClassID: bestClass, Confidence: bestScore})
	}
	return candidates, nil
}

// ToDetections keeps the candidates at the given indices, in index order
func ToDetections(candidates []Candidate, keep []int) []models.Detection {
	dets := make([]models.Detection, 0, len(keep))
	for _, i := range keep {
		if i < 0 || i >= len(candidates) {
			continue
		}
		c := candidates[i]
		dets = append(dets, models.Detection{
			BBox:       models.BBox{X1: c.Box.Min.X, Y1: c.Box.Min.Y, X2: c.Box.Max.X, Y2: c.Box.Max.Y},
			ClassID:    c.ClassID,
			Confidence: c.Confidence,
		})
	}
	return dets
}

func scaleCoord(v, scale float32) int {
	return int(math.Floor(float64(v * scale)))
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
