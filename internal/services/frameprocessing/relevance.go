package frameprocessing

import (
	"fmt"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/models"
)

// Settings is the runtime-tunable part of frame processing. It is swapped as a whole.
type Settings struct {
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	CenterZoneEnabled   bool    `json:"center_zone_enabled"`
	CenterZoneMin       float64 `json:"center_zone_min"`
	CenterZoneMax       float64 `json:"center_zone_max"`
	DrawOrder           string  `json:"draw_order"`
}

// SettingsFromConfig extracts the annotation settings from the worker config
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ConfidenceThreshold: cfg.ConfidenceThreshold,
		CenterZoneEnabled:   cfg.CenterZoneEnabled,
		CenterZoneMin:       cfg.CenterZoneMin,
		CenterZoneMax:       cfg.CenterZoneMax,
		DrawOrder:           cfg.DrawOrder,
	}
}

// Validate applies the same rules as config.Validate to a settings update
func (s Settings) Validate() error {
	if s.ConfidenceThreshold < 0 || s.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: confidence threshold %.2f outside [0,1]", config.ErrInvalid, s.ConfidenceThreshold)
	}
	if s.CenterZoneMin < 0 || s.CenterZoneMax > 1 || s.CenterZoneMin >= s.CenterZoneMax {
		return fmt.Errorf("%w: center zone %.2f..%.2f", config.ErrInvalid, s.CenterZoneMin, s.CenterZoneMax)
	}
	switch s.DrawOrder {
	case config.DrawOrderBoxFirst, config.DrawOrderLabelFirst:
	default:
		return fmt.Errorf("%w: draw order %q", config.ErrInvalid, s.DrawOrder)
	}
	return nil
}

// Filter returns the relevance filter described by these settings
func (s Settings) Filter() Filter {
	return Filter{
		Threshold:  s.ConfidenceThreshold,
		CenterZone: s.CenterZoneEnabled,
		ZoneMin:    s.CenterZoneMin,
		ZoneMax:    s.CenterZoneMax,
	}
}

// Zone is an axis-aligned region with exclusive bounds
type Zone struct {
	MinX, MinY, MaxX, MaxY int
}

// CenterZone derives the zone for a w x h frame, truncating each bound toward zero
func CenterZone(w, h int, minFrac, maxFrac float64) Zone {
	return Zone{
		MinX: int(float64(w) * minFrac),
		MinY: int(float64(h) * minFrac),
		MaxX: int(float64(w) * maxFrac),
		MaxY: int(float64(h) * maxFrac),
	}
}

// Contains reports whether (x, y) lies strictly inside the zone
func (z Zone) Contains(x, y int) bool {
	return z.MinX < x && x < z.MaxX && z.MinY < y && y < z.MaxY
}

// Filter decides which detections of a frame are worth annotating
type Filter struct {
	Threshold  float64
	CenterZone bool
	ZoneMin    float64
	ZoneMax    float64
}

// Keep reports whether det survives the confidence threshold and, when enabled, the center zone.
// The comparison runs at detector precision so a confidence equal to the threshold is kept.
func (f Filter) Keep(det models.Detection, w, h int) bool {
	if det.Confidence < float32(f.Threshold) {
		return false
	}
	if !f.CenterZone {
		return true
	}
	cx, cy := det.BBox.Center()
	return CenterZone(w, h, f.ZoneMin, f.ZoneMax).Contains(cx, cy)
}
