package handlers

import (
	"net/http"

	"yolo-webcam-go/internal/models"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// StatsProvider exposes the state of the capture pipeline
type StatsProvider interface {
	Stats() models.CameraStats
	Running() bool
}

// FrameStreamer serves the annotated feed to HTTP clients
type FrameStreamer interface {
	StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request, cameraID string)
	LatestJPEG(cameraID string) ([]byte, bool)
	ViewerCount() int
}
