package models

import (
	"time"

	"github.com/google/uuid"
)

// BBox is an axis-aligned box in pixel coordinates, (X1,Y1) top-left and (X2,Y2) bottom-right
type BBox struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Center returns the floor midpoint of the box
func (b BBox) Center() (int, int) {
	return floorDiv(b.X1+b.X2, 2), floorDiv(b.Y1+b.Y2, 2)
}

// Valid reports whether the box has positive width and height
func (b BBox) Valid() bool {
	return b.X1 < b.X2 && b.Y1 < b.Y2
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Detection represents a single object found in a frame by the detector
type Detection struct {
	BBox       BBox    `json:"bbox"`
	ClassID    int     `json:"class_id"`
	Confidence float32 `json:"confidence"`
}

// AnnotatedDetection is a detection that survived filtering, with the label drawn for it
type AnnotatedDetection struct {
	Detection
	Label string `json:"label"`
}

// AnnotationEvent is published once per frame that had at least one detection annotated
type AnnotationEvent struct {
	EventID    string               `json:"event_id"`
	WorkerID   string               `json:"worker_id"`
	CameraID   string               `json:"camera_id"`
	FrameID    int64                `json:"frame_id"`
	Timestamp  time.Time            `json:"timestamp"`
	Width      int                  `json:"width"`
	Height     int                  `json:"height"`
	Detections []AnnotatedDetection `json:"detections"`
}

// NewAnnotationEvent builds an event for a processed frame
func NewAnnotationEvent(workerID string, frame *ProcessedFrame) AnnotationEvent {
	return AnnotationEvent{
		EventID:    uuid.NewString(),
		WorkerID:   workerID,
		CameraID:   frame.CameraID,
		FrameID:    frame.FrameID,
		Timestamp:  frame.Timestamp,
		Width:      frame.Width,
		Height:     frame.Height,
		Detections: frame.Annotated,
	}
}
