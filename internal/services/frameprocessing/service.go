package frameprocessing

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"yolo-webcam-go/internal/models"
)

// Detector finds objects in a frame. Implementations must not modify the frame.
type Detector interface {
	Detect(ctx context.Context, frame *models.RawFrame) ([]models.Detection, error)
}

// DetectorFunc adapts a function to the Detector interface
type DetectorFunc func(ctx context.Context, frame *models.RawFrame) ([]models.Detection, error)

func (f DetectorFunc) Detect(ctx context.Context, frame *models.RawFrame) ([]models.Detection, error) {
	return f(ctx, frame)
}

// NoDetector never finds anything; frames pass through unannotated
type NoDetector struct{}

func (NoDetector) Detect(context.Context, *models.RawFrame) ([]models.Detection, error) {
	return nil, nil
}

// Processor turns a raw frame into an annotated one. Every transport goes through it.
type Processor interface {
	ProcessFrame(ctx context.Context, raw *models.RawFrame) (*models.ProcessedFrame, error)
}

// FrameProcessor runs detection, relevance filtering and annotation for one frame at a time
type FrameProcessor struct {
	detector  Detector
	annotator *Annotator
	settings  atomic.Pointer[Settings]
}

var _ Processor = (*FrameProcessor)(nil)

func NewFrameProcessor(detector Detector, annotator *Annotator, settings Settings) (*FrameProcessor, error) {
	if annotator == nil {
		return nil, fmt.Errorf("annotator is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	if detector == nil {
		detector = NoDetector{}
	}
	fp := &FrameProcessor{detector: detector, annotator: annotator}
	fp.settings.Store(&settings)
	return fp, nil
}

// Settings returns the current settings snapshot
func (fp *FrameProcessor) Settings() Settings {
	return *fp.settings.Load()
}

// UpdateSettings validates and swaps in a new settings snapshot. Frames already in flight keep the old one.
func (fp *FrameProcessor) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	fp.settings.Store(&s)
	log.Info().
		Float64("confidence_threshold", s.ConfidenceThreshold).
		Bool("center_zone", s.CenterZoneEnabled).
		Str("draw_order", s.DrawOrder).
		Msg("🎛️ Annotation settings updated")
	return nil
}

// Annotator returns the annotator bound at construction
func (fp *FrameProcessor) Annotator() *Annotator {
	return fp.annotator
}

// ProcessFrame detects objects in raw and annotates the relevant ones in place.
// A detector failure is recorded on the result and the frame passes through untouched.
func (fp *FrameProcessor) ProcessFrame(ctx context.Context, raw *models.RawFrame) (*models.ProcessedFrame, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()

	detections, err := fp.detector.Detect(ctx, raw)
	if err != nil {
		log.Warn().Err(err).Str("camera_id", raw.CameraID).Int64("frame_id", raw.FrameID).Msg("Detection failed, passing frame through")
		out := newProcessedFrame(raw)
		out.DetectionError = err.Error()
		out.ProcessingTime = time.Since(start)
		return out, nil
	}

	out, err := fp.AnnotateDetections(raw, detections)
	if err != nil {
		return nil, err
	}
	out.ProcessingTime = time.Since(start)
	return out, nil
}

// AnnotateDetections filters detections and draws the survivors onto raw in detector order.
// Labels are resolved before anything is drawn, so an unknown class id is returned wrapped
// and leaves raw untouched.
func (fp *FrameProcessor) AnnotateDetections(raw *models.RawFrame, detections []models.Detection) (*models.ProcessedFrame, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	settings := fp.Settings()
	filter := settings.Filter()

	out := newProcessedFrame(raw)
	out.Detections = detections
	for _, det := range detections {
		if !filter.Keep(det, raw.Width, raw.Height) {
			continue
		}
		name, err := fp.annotator.table.Lookup(det.ClassID)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", raw.FrameID, err)
		}
		out.Annotated = append(out.Annotated, models.AnnotatedDetection{Detection: det, Label: name})
	}
	for _, a := range out.Annotated {
		fp.annotator.draw(raw, a.Detection, FormatLabel(a.Label, a.Confidence), settings.DrawOrder)
	}

	if len(out.Annotated) > 0 {
		log.Debug().
			Str("camera_id", raw.CameraID).
			Int64("frame_id", raw.FrameID).
			Int("detections", len(detections)).
			Int("annotated", len(out.Annotated)).
			Msg("Frame annotated")
	}
	return out, nil
}

func newProcessedFrame(raw *models.RawFrame) *models.ProcessedFrame {
	return &models.ProcessedFrame{
		CameraID:  raw.CameraID,
		Data:      raw.Data,
		Timestamp: raw.Timestamp,
		FrameID:   raw.FrameID,
		Width:     raw.Width,
		Height:    raw.Height,
	}
}
