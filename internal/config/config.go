package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ErrInvalid wraps every validation failure returned by Validate
var ErrInvalid = errors.New("invalid configuration")

// Draw orders for rectangle and label
const (
	DrawOrderBoxFirst   = "box_first"
	DrawOrderLabelFirst = "label_first"
)

// Detector backends
const (
	DetectorONNX = "onnx"
	DetectorGRPC = "grpc"
	DetectorNone = "none"
)

const defaultFontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf"

type Config struct {
	// Application
	Version     string
	Environment string
	WorkerID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Capture
	CameraID     string
	CameraSource string // webcam device index ("0") or a URL OpenCV can open
	OutputWidth  int
	OutputHeight int
	MaxFPS       int

	// Detection
	DetectorBackend   string
	ModelPath         string
	ModelInputSize    int
	NMSThreshold      float64
	DetectorGRPCURL   string
	DetectorTimeout   time.Duration
	DetectorServePort int // >0 shares the in-process detector over gRPC

	// Annotation
	ConfidenceThreshold float64
	CenterZoneEnabled   bool
	CenterZoneMin       float64 // fraction of width/height
	CenterZoneMax       float64
	DrawOrder           string
	FontPaths           []string
	FontSize            float64
	LabelOffsetY        int
	BoxThickness        int
	AnnotationColor     string

	// MJPEG
	MJPEGQuality int

	// NATS (annotation events)
	NatsEnabled        bool
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	AnnotationsSubject string
	SettingsSubject    string

	// WebRTC Configuration, handed to browser clients
	WebRTCICEServers []string

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found or error loading .env file, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}

	return &Config{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		WorkerID:    getEnv("WORKER_ID", "worker-1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Capture
		CameraID:     getEnv("CAMERA_ID", "webcam"),
		CameraSource: getEnv("CAMERA_SOURCE", "0"),
		OutputWidth:  getEnvInt("OUTPUT_WIDTH", 640),
		OutputHeight: getEnvInt("OUTPUT_HEIGHT", 480),
		MaxFPS:       getEnvInt("MAX_FPS", 30),

		// Detection
		DetectorBackend:   getEnv("DETECTOR_BACKEND", DetectorONNX),
		ModelPath:         getEnv("MODEL_PATH", "yolov8m.onnx"),
		ModelInputSize:    getEnvInt("MODEL_INPUT_SIZE", 640),
		NMSThreshold:      getEnvFloat("NMS_THRESHOLD", 0.45),
		DetectorGRPCURL:   getEnv("DETECTOR_GRPC_URL", "localhost:50052"),
		DetectorTimeout:   getEnvDuration("DETECTOR_TIMEOUT", 2*time.Second),
		DetectorServePort: getEnvInt("DETECTOR_SERVE_PORT", 0),

		// Annotation
		ConfidenceThreshold: getEnvFloat("CONFIDENCE_THRESHOLD", 0.5),
		CenterZoneEnabled:   getEnvBool("CENTER_ZONE_ENABLED", false),
		CenterZoneMin:       getEnvFloat("CENTER_ZONE_MIN", 0.3),
		CenterZoneMax:       getEnvFloat("CENTER_ZONE_MAX", 0.7),
		DrawOrder:           getEnv("DRAW_ORDER", DrawOrderBoxFirst),
		FontPaths:           getEnvList("FONT_PATHS", []string{defaultFontPath}),
		FontSize:            getEnvFloat("FONT_SIZE", 24),
		LabelOffsetY:        getEnvInt("LABEL_OFFSET_Y", 25),
		BoxThickness:        getEnvInt("BOX_THICKNESS", 2),
		AnnotationColor:     getEnv("ANNOTATION_COLOR", "#FF00FF"),

		// MJPEG
		MJPEGQuality: getEnvInt("MJPEG_QUALITY", 90),

		// NATS
		NatsEnabled:        getEnvBool("NATS_ENABLED", false),
		NatsURL:            getNatsURL(),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		AnnotationsSubject: getEnv("ANNOTATIONS_SUBJECT", "annotations"),
		SettingsSubject:    getEnv("SETTINGS_SUBJECT", "annotation.settings"),

		WebRTCICEServers: getEnvList("WEBRTC_ICE_SERVERS", []string{"stun:stun.l.google.com:19302"}),

		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

// Validate checks the values that would otherwise fail deep inside frame processing
func (c *Config) Validate() error {
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: CONFIDENCE_THRESHOLD %.2f outside [0,1]", ErrInvalid, c.ConfidenceThreshold)
	}
	if c.CenterZoneMin < 0 || c.CenterZoneMax > 1 || c.CenterZoneMin >= c.CenterZoneMax {
		return fmt.Errorf("%w: center zone %.2f..%.2f", ErrInvalid, c.CenterZoneMin, c.CenterZoneMax)
	}
	switch c.DrawOrder {
	case DrawOrderBoxFirst, DrawOrderLabelFirst:
	default:
		return fmt.Errorf("%w: DRAW_ORDER %q", ErrInvalid, c.DrawOrder)
	}
	switch c.DetectorBackend {
	case DetectorONNX, DetectorGRPC, DetectorNone:
	default:
		return fmt.Errorf("%w: DETECTOR_BACKEND %q", ErrInvalid, c.DetectorBackend)
	}
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		return fmt.Errorf("%w: output size %dx%d", ErrInvalid, c.OutputWidth, c.OutputHeight)
	}
	if c.FontSize <= 0 {
		return fmt.Errorf("%w: FONT_SIZE %.1f", ErrInvalid, c.FontSize)
	}
	if c.BoxThickness <= 0 {
		return fmt.Errorf("%w: BOX_THICKNESS %d", ErrInvalid, c.BoxThickness)
	}
	if c.MJPEGQuality < 1 || c.MJPEGQuality > 100 {
		return fmt.Errorf("%w: MJPEG_QUALITY %d", ErrInvalid, c.MJPEGQuality)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
