package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/services/frameprocessing"
)

var startTime = time.Now()

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	cfg       *config.Config
	pipeline  StatsProvider
	streamer  FrameStreamer
	processor *frameprocessing.FrameProcessor
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(cfg *config.Config, pipeline StatsProvider, streamer FrameStreamer, processor *frameprocessing.FrameProcessor) *SystemHandler {
	return &SystemHandler{
		cfg:       cfg,
		pipeline:  pipeline,
		streamer:  streamer,
		processor: processor,
	}
}

// @Summary Get system stats
// @Description Get runtime and pipeline statistics
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/stats [get]
func (h *SystemHandler) GetStats(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	resp := gin.H{
		"success": true,
		"stats": gin.H{
			"worker_id":      h.cfg.WorkerID,
			"uptime_seconds": int64(time.Since(startTime).Seconds()),
			"memory_mb":      m.Alloc / 1024 / 1024,
			"cpu_cores":      runtime.NumCPU(),
			"goroutines":     runtime.NumGoroutine(),
			"go_version":     runtime.Version(),
		},
		"timestamp": time.Now().Unix(),
	}
	if h.pipeline != nil {
		resp["camera"] = h.pipeline.Stats()
		resp["pipeline_running"] = h.pipeline.Running()
	}
	if h.streamer != nil {
		resp["mjpeg_viewers"] = h.streamer.ViewerCount()
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Get debug info
// @Description Get font and detector details for troubleshooting
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /system/debug [get]
func (h *SystemHandler) GetDebugInfo(c *gin.Context) {
	tf := h.processor.Annotator().Typeface()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"debug": gin.H{
			"worker_id":      h.cfg.WorkerID,
			"detector":       h.cfg.DetectorBackend,
			"font":           tf.Name,
			"font_fallback":  tf.Fallback,
			"missing_glyphs": string(tf.Missing),
			"labels":         h.processor.Annotator().Labels().Len(),
			"settings":       h.processor.Settings(),
		},
		"timestamp": time.Now().Unix(),
	})
}
