// Package onnx runs a YOLOv8 ONNX model in-process through OpenCV DNN.
package onnx

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"yolo-webcam-go/internal/models"
	"yolo-webcam-go/internal/services/detection"
)

// minCandidateScore keeps weak anchors out of NMS; the relevance filter applies the user threshold later
const minCandidateScore = 0.25

type Config struct {
	ModelPath    string
	InputSize    int
	Classes      int
	NMSThreshold float32
}

// Detector wraps a gocv.Net. The network is not safe for concurrent use, so calls are serialized.
type Detector struct {
	cfg Config

	mu  sync.Mutex
	net gocv.Net
}

func NewDetector(cfg Config) (*Detector, error) {
	if cfg.InputSize <= 0 {
		cfg.InputSize = 640
	}
	if cfg.Classes <= 0 {
		cfg.Classes = 80
	}

	net := gocv.ReadNet(cfg.ModelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load model %s", cfg.ModelPath)
	}
	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set DNN backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set DNN target: %w", err)
	}

	log.Info().Str("model", cfg.ModelPath).Int("input_size", cfg.InputSize).Msg("🧠 YOLOv8 model loaded")
	return &Detector{cfg: cfg, net: net}, nil
}

// Detect runs one forward pass. The frame is copied into a square canvas at the top-left
// so model coordinates map back with a single scale factor.
func (d *Detector) Detect(ctx context.Context, frame *models.RawFrame) ([]models.Detection, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap frame: %w", err)
	}
	defer mat.Close()

	side := max(frame.Width, frame.Height)
	square := gocv.NewMatWithSize(side, side, gocv.MatTypeCV8UC3)
	defer square.Close()
	roi := square.Region(image.Rect(0, 0, frame.Width, frame.Height))
	mat.CopyTo(&roi)
	roi.Close()

	size := d.cfg.InputSize
	blob := gocv.BlobFromImage(square, 1.0/255.0, image.Pt(size, size), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 || dims[1] != 4+d.cfg.Classes {
		return nil, fmt.Errorf("unexpected model output shape %v", dims)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read model output: %w", err)
	}

	scale := detection.SquareScale(frame.Width, frame.Height, size)
	candidates, err := detection.DecodeYOLOv8(data, d.cfg.Classes, dims[2], minCandidateScore, scale, frame.Width, frame.Height)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	boxes := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		boxes[i] = c.Box
		scores[i] = c.Confidence
	}
	keep := gocv.NMSBoxes(boxes, scores, minCandidateScore, d.cfg.NMSThreshold)
	return detection.ToDetections(candidates, keep), nil
}

func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
