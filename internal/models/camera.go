package models

import (
	"errors"
	"fmt"
	"time"
)

const FormatBGR24 = "BGR24"

// ErrFrameSize is returned when a frame's byte length does not match its dimensions
var ErrFrameSize = errors.New("frame data does not match dimensions")

// RawFrame represents a frame from OpenCV
type RawFrame struct {
	CameraID  string
	Data      []byte // BGR24, Width*Height*3 bytes
	Timestamp time.Time
	FrameID   int64
	Width     int
	Height    int
	Format    string
}

// Validate checks that Data holds exactly one BGR24 frame of Width x Height
func (f *RawFrame) Validate() error {
	if f == nil {
		return fmt.Errorf("nil frame")
	}
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if len(f.Data) != f.Width*f.Height*3 {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrFrameSize, len(f.Data), f.Width, f.Height)
	}
	return nil
}

// FrameSink receives captured frames. Offer must not block.
type FrameSink interface {
	Offer(frame *RawFrame) bool
}

// ProcessedFrame represents a frame after detection and annotation
type ProcessedFrame struct {
	CameraID  string
	Data      []byte // Annotated BGR24 frame data, shares the raw frame's buffer
	Timestamp time.Time
	FrameID   int64
	Width     int
	Height    int

	Detections     []Detection          // Everything the detector returned
	Annotated      []AnnotatedDetection // Detections that passed the filter and were drawn
	DetectionError string
	ProcessingTime time.Duration
}

// CameraStats holds capture and processing counters for a camera
type CameraStats struct {
	CameraID         string    `json:"camera_id"`
	Source           string    `json:"source"`
	FramesCaptured   int64     `json:"frames_captured"`
	FramesProcessed  int64     `json:"frames_processed"`
	FramesDropped    int64     `json:"frames_dropped"`
	DetectionsKept   int64     `json:"detections_kept"`
	ProcessingErrors int64     `json:"processing_errors"`
	LastFrameTime    time.Time `json:"last_frame_time"`
	LastError        string    `json:"last_error,omitempty"`
}
