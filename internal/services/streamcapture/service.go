package streamcapture

import (
	"context"
	"fmt"
	"image"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/models"
)

const maxConsecutiveErrors = 10

// Service handles video capture operations
type Service struct {
	cfg *config.Config
}

// NewService creates a new stream capture service
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg: cfg,
	}
}

// source is either a local device index or a URL/path OpenCV can open
type source struct {
	device   int
	isDevice bool
	url      string
}

func parseSource(s string) source {
	s = strings.TrimSpace(s)
	if idx, err := strconv.Atoi(s); err == nil && idx >= 0 {
		return source{device: idx, isDevice: true}
	}
	return source{url: s}
}

func (src source) String() string {
	if src.isDevice {
		return fmt.Sprintf("device:%d", src.device)
	}
	return src.url
}

func (s *Service) open(src source) (*gocv.VideoCapture, error) {
	var (
		cap *gocv.VideoCapture
		err error
	)
	switch {
	case src.isDevice:
		cap, err = gocv.OpenVideoCapture(src.device)
	case strings.HasPrefix(src.url, "rtsp://"):
		configureFFmpegOptions()
		cap, err = gocv.OpenVideoCaptureWithAPI(src.url, gocv.VideoCaptureFFmpeg)
	default:
		cap, err = gocv.OpenVideoCapture(src.url)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open video source %s: %w", src, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("video source %s is not opened", src)
	}

	cap.Set(gocv.VideoCaptureFrameWidth, float64(s.cfg.OutputWidth))
	cap.Set(gocv.VideoCaptureFrameHeight, float64(s.cfg.OutputHeight))
	cap.Set(gocv.VideoCaptureBufferSize, 1)
	return cap, nil
}

// Run reads frames from the configured source until ctx is done, resizing them to the
// output size and offering each to sink. It returns an error when the source cannot be
// opened or keeps failing after a reset.
func (s *Service) Run(ctx context.Context, cameraID string, sink models.FrameSink) error {
	src := parseSource(s.cfg.CameraSource)
	log.Info().Str("camera_id", cameraID).Str("source", src.String()).Msg("📷 Starting OpenCV VideoCapture")

	cap, err := s.open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cap != nil {
			cap.Close()
		}
	}()

	log.Info().
		Str("camera_id", cameraID).
		Float64("actual_fps", cap.Get(gocv.VideoCaptureFPS)).
		Float64("actual_width", cap.Get(gocv.VideoCaptureFrameWidth)).
		Float64("actual_height", cap.Get(gocv.VideoCaptureFrameHeight)).
		Msg("VideoCapture opened successfully with actual properties")

	img := gocv.NewMat()
	defer img.Close()

	frameID := int64(0)
	consecutiveErrors := 0
	targetInterval := time.Second / time.Duration(max(1, s.cfg.MaxFPS))

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("camera_id", cameraID).Msg("Stopping VideoCapture reader due to context cancel")
			return nil
		default:
		}
		started := time.Now()

		if ok := cap.Read(&img); !ok || img.Empty() {
			consecutiveErrors++
			log.Warn().Str("camera_id", cameraID).Int("consecutive_errors", consecutiveErrors).Msg("Failed to read frame from VideoCapture")

			if consecutiveErrors >= maxConsecutiveErrors {
				log.Warn().Str("camera_id", cameraID).Msg("Too many consecutive errors, attempting capture reset")
				cap.Close()
				if cap, err = s.open(src); err != nil {
					return fmt.Errorf("failed to reset VideoCapture after %d consecutive errors: %w", consecutiveErrors, err)
				}
				consecutiveErrors = 0
				continue
			}

			// Progressive delay based on error count
			delay := min(time.Duration(consecutiveErrors*50)*time.Millisecond, 2*time.Second)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(delay):
			}
			continue
		}

		consecutiveErrors = 0
		frameID++
		sink.Offer(s.toRawFrame(img, cameraID, frameID))

		if wait := targetInterval - time.Since(started); wait > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		}
	}
}

func (s *Service) toRawFrame(img gocv.Mat, cameraID string, frameID int64) *models.RawFrame {
	var data []byte
	if img.Cols() != s.cfg.OutputWidth || img.Rows() != s.cfg.OutputHeight {
		resized := gocv.NewMat()
		gocv.Resize(img, &resized, image.Pt(s.cfg.OutputWidth, s.cfg.OutputHeight), 0, 0, gocv.InterpolationLinear)
		data = resized.ToBytes()
		resized.Close()
	} else {
		data = img.ToBytes()
	}

	return &models.RawFrame{
		CameraID:  cameraID,
		Data:      data,
		Timestamp: time.Now(),
		FrameID:   frameID,
		Width:     s.cfg.OutputWidth,
		Height:    s.cfg.OutputHeight,
		Format:    models.FormatBGR24,
	}
}

// configureFFmpegOptions sets low-latency FFmpeg options for RTSP sources
func configureFFmpegOptions() {
	ffmpegOptions := map[string]string{
		"rtsp_transport":  "tcp",
		"buffer_size":     "2097152",
		"max_delay":       "500000",
		"stimeout":        "5000000",
		"flags":           "low_delay",
		"fflags":          "nobuffer+flush_packets",
		"analyzeduration": "500000",
		"probesize":       "2000000",
		"reconnect":       "1",
	}

	options := make([]string, 0, len(ffmpegOptions))
	for key, value := range ffmpegOptions {
		options = append(options, key+";"+value)
	}
	sort.Strings(options)
	opts := strings.Join(options, "|")

	// OpenCV's FFmpeg backend reads its options from this variable
	os.Setenv("OPENCV_FFMPEG_CAPTURE_OPTIONS", opts)
	log.Debug().Str("ffmpeg_options", opts).Msg("FFmpeg options configured for OpenCV")
}
