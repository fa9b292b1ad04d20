package detection

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"yolo-webcam-go/internal/helpers"
	"yolo-webcam-go/internal/models"
)

// Remote detector contract: a JPEG frame wrapped in google.protobuf.BytesValue goes in,
// a google.protobuf.ListValue of {x1, y1, x2, y2, class_id, confidence} structs comes back.
const (
	ServiceName  = "yolo.v1.Detector"
	DetectMethod = "/" + ServiceName + "/Detect"
)

const (
	defaultTimeout     = 2 * time.Second
	defaultJPEGQuality = 90
	healthCheckTimeout = 3 * time.Second
	maxRetryBackoff    = 30 * time.Second
)

// Service is a remote object detector reached over gRPC.
// Failed calls mark it unhealthy; the next call reconnects once the backoff has passed.
type Service struct {
	endpoint string
	timeout  time.Duration
	quality  int
	dialOpts []grpc.DialOption

	mu               sync.RWMutex
	conn             *grpc.ClientConn
	isHealthy        bool
	consecutiveFails int
	lastFailTime     time.Time
}

type Option func(*Service)

// WithTimeout bounds each Detect call
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithJPEGQuality sets the quality frames are encoded with before sending
func WithJPEGQuality(q int) Option {
	return func(s *Service) {
		if q > 0 && q <= 100 {
			s.quality = q
		}
	}
}

// WithDialOptions replaces endpoint parsing: the endpoint is dialed as-is with these options
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(s *Service) {
		s.dialOpts = opts
	}
}

func NewService(endpoint string, opts ...Option) (*Service, error) {
	log.Info().Str("url", endpoint).Msg("Initializing AI detection service")

	s := &Service{
		endpoint: endpoint,
		timeout:  defaultTimeout,
		quality:  defaultJPEGQuality,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Try to connect, but don't fail if it's not available
	if err := s.connect(); err != nil {
		s.recordFailure()
		log.Warn().Err(err).Msg("AI detection service not available, will retry later")
	}

	return s, nil
}

func (s *Service) connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}

	target, dialOpts := s.endpoint, s.dialOpts
	if dialOpts == nil {
		host, creds, err := parseGRPCEndpoint(s.endpoint)
		if err != nil {
			return fmt.Errorf("failed to parse detector endpoint %s: %w", s.endpoint, err)
		}
		target = host
		dialOpts = []grpc.DialOption{grpc.WithTransportCredentials(creds)}
	}

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return fmt.Errorf("failed to connect to detection service: %w", err)
	}

	// Test connection with health check
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	if err != nil {
		conn.Close()
		return fmt.Errorf("detection service health check failed: %w", err)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		conn.Close()
		return fmt.Errorf("detection service is %s", resp.GetStatus())
	}

	s.conn = conn
	s.isHealthy = true
	s.consecutiveFails = 0

	log.Info().Str("target", target).Msg("Successfully connected to AI detection service")
	return nil
}

func (s *Service) ensureConnection() (*grpc.ClientConn, error) {
	s.mu.RLock()
	conn, healthy := s.conn, s.isHealthy
	s.mu.RUnlock()
	if healthy && conn != nil {
		return conn, nil
	}

	if !s.shouldRetry() {
		return nil, fmt.Errorf("in backoff period after consecutive failures")
	}
	if err := s.connect(); err != nil {
		s.recordFailure()
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn, nil
}

// Detect sends frame to the remote detector and returns boxes in frame pixels
func (s *Service) Detect(ctx context.Context, frame *models.RawFrame) ([]models.Detection, error) {
	conn, err := s.ensureConnection()
	if err != nil {
		return nil, fmt.Errorf("detection service unavailable: %w", err)
	}

	payload, err := helpers.EncodeFrameJPEG(frame, s.quality)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp := &structpb.ListValue{}
	if err := conn.Invoke(ctx, DetectMethod, wrapperspb.Bytes(payload), resp); err != nil {
		s.recordFailure()
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	s.recordSuccess()

	detections, err := DecodeDetections(resp)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("camera_id", frame.CameraID).Int64("frame_id", frame.FrameID).Int("detections", len(detections)).Msg("Detection response")
	return detections, nil
}

// HealthCheck asks the remote side for its serving status
func (s *Service) HealthCheck(ctx context.Context) error {
	conn, err := s.ensureConnection()
	if err != nil {
		return err
	}

	resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: ServiceName})
	if err == nil && resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		err = fmt.Errorf("detection service is %s", resp.GetStatus())
	}
	if err != nil {
		s.recordFailure()
	}
	return err
}

func (s *Service) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isHealthy
}

func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		log.Info().Msg("Shutting down detection service connection")
		err := s.conn.Close()
		s.conn = nil
		s.isHealthy = false
		return err
	}
	return nil
}

// shouldRetry determines if we should attempt a connection based on exponential backoff
func (s *Service) shouldRetry() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.consecutiveFails == 0 {
		return true
	}

	// Exponential backoff: 1s, 2s, 4s, 8s, 16s, 30s (max)
	backoff := time.Duration(1<<uint(min(s.consecutiveFails-1, 5))) * time.Second
	if backoff > maxRetryBackoff {
		backoff = maxRetryBackoff
	}
	return time.Since(s.lastFailTime) >= backoff
}

func (s *Service) recordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.isHealthy = false
	s.consecutiveFails++
	s.lastFailTime = time.Now()

	if s.consecutiveFails <= 5 {
		log.Warn().Int("consecutive_fails", s.consecutiveFails).Msg("AI connection failure recorded")
	}
}

func (s *Service) recordSuccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consecutiveFails = 0
}

var detectionFields = []string{"x1", "y1", "x2", "y2", "class_id", "confidence"}

// DecodeDetections converts the wire list into detections, rejecting malformed entries
func DecodeDetections(list *structpb.ListValue) ([]models.Detection, error) {
	values := list.GetValues()
	dets := make([]models.Detection, 0, len(values))
	for i, v := range values {
		fields := v.GetStructValue().GetFields()
		if fields == nil {
			return nil, fmt.Errorf("detection %d is not an object", i)
		}
		nums := make(map[string]float64, len(detectionFields))
		for _, name := range detectionFields {
			n, ok := fields[name].GetKind().(*structpb.Value_NumberValue)
			if !ok {
				return nil, fmt.Errorf("detection %d: missing numeric field %q", i, name)
			}
			nums[name] = n.NumberValue
		}
		if nums["class_id"] != math.Trunc(nums["class_id"]) {
			return nil, fmt.Errorf("detection %d: class_id %v is not an integer", i, nums["class_id"])
		}
		dets = append(dets, models.Detection{
			BBox: models.BBox{
				X1: int(nums["x1"]),
				Y1: int(nums["y1"]),
				X2: int(nums["x2"]),
				Y2: int(nums["y2"]),
			},
			ClassID:    int(nums["class_id"]),
			Confidence: float32(nums["confidence"]),
		})
	}
	return dets, nil
}

// EncodeDetections is the inverse of DecodeDetections, for detector implementations
func EncodeDetections(dets []models.Detection) (*structpb.ListValue, error) {
	items := make([]any, 0, len(dets))
	for _, d := range dets {
		items = append(items, map[string]any{
			"x1":         d.BBox.X1,
			"y1":         d.BBox.Y1,
			"x2":         d.BBox.X2,
			"y2":         d.BBox.Y2,
			"class_id":   d.ClassID,
			"confidence": float64(d.Confidence),
		})
	}
	return structpb.NewList(items)
}
