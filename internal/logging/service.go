package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"yolo-webcam-go/internal/config"
)

// NewServiceLogger returns the global logger tagged with this worker and the named pipeline stage
func NewServiceLogger(cfg *config.Config, service string) zerolog.Logger {
	return log.With().Str("worker_id", cfg.WorkerID).Str("service", service).Logger()
}

// WithCamera narrows base to one camera so capture and annotation lines can be filtered per source
func WithCamera(base zerolog.Logger, cameraID string) zerolog.Logger {
	return base.With().Str("camera_id", cameraID).Logger()
}
