package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBBoxCenter(t *testing.T) {
	tests := []struct {
		name  string
		box   BBox
		wantX int
		wantY int
	}{
		{"even", BBox{100, 100, 200, 200}, 150, 150},
		{"odd rounds down", BBox{1, 1, 4, 6}, 2, 3},
		{"negative floors", BBox{-5, -3, 2, 0}, -2, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.box.Center()
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestRawFrameValidate(t *testing.T) {
	f := &RawFrame{Width: 4, Height: 2, Data: make([]byte, 24)}
	assert.NoError(t, f.Validate())

	f.Data = f.Data[:23]
	assert.ErrorIs(t, f.Validate(), ErrFrameSize)

	var nilFrame *RawFrame
	assert.Error(t, nilFrame.Validate())
	assert.Error(t, (&RawFrame{}).Validate())
}

func TestNewAnnotationEvent(t *testing.T) {
	frame := &ProcessedFrame{
		CameraID: "webcam",
		FrameID:  7,
		Width:    640,
		Height:   480,
		Annotated: []AnnotatedDetection{
			{Detection: Detection{BBox: BBox{1, 2, 3, 4}, Confidence: 0.9}, Label: "Person - Con người"},
		},
	}
	ev := NewAnnotationEvent("worker-1", frame)
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "worker-1", ev.WorkerID)
	assert.Equal(t, "webcam", ev.CameraID)
	assert.Equal(t, int64(7), ev.FrameID)
	assert.Len(t, ev.Detections, 1)
}
