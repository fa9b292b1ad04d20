package handlers

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/helpers"
	"yolo-webcam-go/internal/labels"
	"yolo-webcam-go/internal/logging"
	"yolo-webcam-go/internal/models"
	"yolo-webcam-go/internal/services/frameprocessing"
)

type AnnotationHandler struct {
	cfg       *config.Config
	processor *frameprocessing.FrameProcessor
}

func NewAnnotationHandler(cfg *config.Config, processor *frameprocessing.FrameProcessor) *AnnotationHandler {
	return &AnnotationHandler{cfg: cfg, processor: processor}
}

type LabelEntry struct {
	ClassID int    `json:"class_id" example:"0"`
	Name    string `json:"name" example:"Person - Con người"`
}

type LabelsResponse struct {
	Count  int          `json:"count" example:"80"`
	Labels []LabelEntry `json:"labels"`
}

// AnnotateRequest carries a base64 JPEG or PNG (a data URL prefix is accepted) and the detections to draw
type AnnotateRequest struct {
	Image      string             `json:"image" binding:"required"`
	Detections []models.Detection `json:"detections"`
}

// Labels godoc
// @Summary Label table
// @Description Get the bilingual label table indexed by class id
// @Tags annotation
// @Produce json
// @Success 200 {object} LabelsResponse
// @Router /labels [get]
func (h *AnnotationHandler) Labels(c *gin.Context) {
	names := h.processor.Annotator().Labels().Names()
	entries := make([]LabelEntry, len(names))
	for i, name := range names {
		entries[i] = LabelEntry{ClassID: i, Name: name}
	}
	c.JSON(http.StatusOK, LabelsResponse{Count: len(entries), Labels: entries})
}

// GetSettings godoc
// @Summary Get annotation settings
// @Description Get the confidence threshold, center zone and draw order currently applied
// @Tags annotation
// @Produce json
// @Success 200 {object} frameprocessing.Settings
// @Router /annotation/settings [get]
func (h *AnnotationHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.processor.Settings())
}

// UpdateSettings godoc
// @Summary Update annotation settings
// @Description Update annotation settings. Omitted fields keep their current value.
// @Tags annotation
// @Accept json
// @Produce json
// @Param settings body frameprocessing.Settings true "Settings"
// @Success 200 {object} frameprocessing.Settings
// @Failure 400 {object} ErrorResponse
// @Router /annotation/settings [put]
func (h *AnnotationHandler) UpdateSettings(c *gin.Context) {
	s := h.processor.Settings()
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.processor.UpdateSettings(s); err != nil {
		logging.Warn(c).Err(err).Msg("Rejected settings update")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.processor.Settings())
}

// Annotate godoc
// @Summary Annotate an image
// @Description Filter the given detections and draw the survivors onto the uploaded image
// @Tags annotation
// @Accept json
// @Produce image/jpeg
// @Param request body AnnotateRequest true "Image and detections"
// @Success 200 {file} binary "Annotated JPEG"
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /annotate [post]
func (h *AnnotationHandler) Annotate(c *gin.Context) {
	var req AnnotateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	data, err := decodeImagePayload(req.Image)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "image is not valid base64"})
		return
	}
	frame, err := helpers.DecodeFrame(data, "upload")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	out, err := h.processor.AnnotateDetections(frame, req.Detections)
	if err != nil {
		if errors.Is(err, labels.ErrUnknownClass) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
			return
		}
		logging.Error(c).Err(err).Msg("Annotation failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	jpeg, err := helpers.EncodeFrameJPEG(frame, h.cfg.MJPEGQuality)
	if err != nil {
		logging.Error(c).Err(err).Msg("Failed to encode annotated image")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	logging.Debug(c).
		Int("detections", len(req.Detections)).
		Int("annotated", len(out.Annotated)).
		Msg("Image annotated")
	c.Header("X-Detections-Kept", strconv.Itoa(len(out.Annotated)))
	c.Data(http.StatusOK, "image/jpeg", jpeg)
}

func decodeImagePayload(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if _, payload, ok := strings.Cut(s, ","); ok {
			s = payload
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
