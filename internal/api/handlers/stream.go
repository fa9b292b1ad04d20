package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/logging"
)

type StreamHandler struct {
	cfg      *config.Config
	streamer FrameStreamer
}

func NewStreamHandler(cfg *config.Config, streamer FrameStreamer) *StreamHandler {
	return &StreamHandler{cfg: cfg, streamer: streamer}
}

func (h *StreamHandler) cameraID(c *gin.Context) string {
	return c.DefaultQuery("camera_id", h.cfg.CameraID)
}

// Stream godoc
// @Summary MJPEG stream
// @Description Stream annotated frames as multipart/x-mixed-replace
// @Tags stream
// @Produce multipart/x-mixed-replace
// @Param camera_id query string false "Camera ID"
// @Success 200
// @Router /stream.mjpeg [get]
func (h *StreamHandler) Stream(c *gin.Context) {
	if h.streamer == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "streaming is not available"})
		return
	}
	cameraID := h.cameraID(c)
	logging.Info(c).Str("camera_id", cameraID).Msg("MJPEG viewer connected")
	h.streamer.StreamMJPEGHTTP(c.Writer, c.Request, cameraID)
	logging.Info(c).Str("camera_id", cameraID).Msg("MJPEG viewer disconnected")
}

// Snapshot godoc
// @Summary Latest frame
// @Description Get the latest annotated frame as a JPEG
// @Tags stream
// @Produce image/jpeg
// @Param camera_id query string false "Camera ID"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /frame.jpg [get]
func (h *StreamHandler) Snapshot(c *gin.Context) {
	if h.streamer == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "streaming is not available"})
		return
	}
	jpeg, ok := h.streamer.LatestJPEG(h.cameraID(c))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no frame available yet"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/jpeg", jpeg)
}
