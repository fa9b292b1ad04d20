package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yolo-webcam-go/internal/config"
)

type HealthHandler struct {
	cfg      *config.Config
	pipeline StatsProvider
}

func NewHealthHandler(cfg *config.Config, pipeline StatsProvider) *HealthHandler {
	return &HealthHandler{cfg: cfg, pipeline: pipeline}
}

type HealthResponse struct {
	Status          string `json:"status" example:"healthy"`
	WorkerID        string `json:"worker_id" example:"worker-1"`
	PipelineRunning bool   `json:"pipeline_running"`
}

type WorkerInfoResponse struct {
	WorkerID     string   `json:"worker_id" example:"worker-1"`
	Status       string   `json:"status" example:"running"`
	Version      string   `json:"version" example:"1.0.0"`
	Environment  string   `json:"environment" example:"development"`
	CameraID     string   `json:"camera_id" example:"webcam"`
	Detector     string   `json:"detector" example:"onnx"`
	Capabilities []string `json:"capabilities"`
}

// HealthCheck godoc
// @Summary Health check
// @Description Check if the worker is healthy and its pipeline is running
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	running := h.pipeline == nil || h.pipeline.Running()
	if !running {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:   "degraded",
			WorkerID: h.cfg.WorkerID,
		})
		return
	}
	c.JSON(http.StatusOK, HealthResponse{
		Status:          "healthy",
		WorkerID:        h.cfg.WorkerID,
		PipelineRunning: h.pipeline != nil,
	})
}

// WorkerInfo godoc
// @Summary Worker information
// @Description Get basic worker information and capabilities
// @Tags health
// @Produce json
// @Success 200 {object} WorkerInfoResponse
// @Router / [get]
func (h *HealthHandler) WorkerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, WorkerInfoResponse{
		WorkerID:    h.cfg.WorkerID,
		Status:      "running",
		Version:     h.cfg.Version,
		Environment: h.cfg.Environment,
		CameraID:    h.cfg.CameraID,
		Detector:    h.cfg.DetectorBackend,
		Capabilities: []string{
			"yolo_detection",
			"bilingual_labels",
			"mjpeg_streaming",
			"annotation_events",
		},
	})
}
