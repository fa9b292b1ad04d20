package detection

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"yolo-webcam-go/internal/models"
)

type fakeBackend struct {
	mu     sync.Mutex
	dets   []models.Detection
	err    error
	frames []*models.RawFrame
}

func (f *fakeBackend) Detect(_ context.Context, frame *models.RawFrame) ([]models.Detection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, frame)
	return f.dets, f.err
}

// startServer runs a detector server on an in-memory listener and returns a connected client
func startServer(t *testing.T, backend Backend, serving bool) *Service {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := RegisterServer(srv, backend)
	if !serving {
		hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	}
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	svc, err := NewService("passthrough:///bufnet",
		WithDialOptions(
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Shutdown(context.Background()) })
	return svc
}

func testFrame() *models.RawFrame {
	return &models.RawFrame{CameraID: "cam", FrameID: 7, Width: 32, Height: 24, Data: make([]byte, 32*24*3), Format: models.FormatBGR24}
}

func TestServiceDetect(t *testing.T) {
	backend := &fakeBackend{dets: []models.Detection{
		{BBox: models.BBox{X1: 1, Y1: 2, X2: 10, Y2: 20}, ClassID: 0, Confidence: 0.875},
		{BBox: models.BBox{X1: 5, Y1: 5, X2: 30, Y2: 22}, ClassID: 56, Confidence: 0.5},
	}}
	svc := startServer(t, backend, true)
	require.True(t, svc.IsHealthy())

	dets, err := svc.Detect(context.Background(), testFrame())
	require.NoError(t, err)
	assert.Equal(t, backend.dets, dets)

	require.Len(t, backend.frames, 1)
	assert.Equal(t, 32, backend.frames[0].Width)
	assert.Equal(t, 24, backend.frames[0].Height)

	assert.NoError(t, svc.HealthCheck(context.Background()))
}

func TestServiceDetectBackendError(t *testing.T) {
	svc := startServer(t, &fakeBackend{err: errors.New("model not loaded")}, true)

	_, err := svc.Detect(context.Background(), testFrame())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
	assert.False(t, svc.IsHealthy())

	// the failure starts a backoff window
	_, err = svc.Detect(context.Background(), testFrame())
	assert.ErrorContains(t, err, "backoff")
}

func TestServiceNotServing(t *testing.T) {
	svc := startServer(t, &fakeBackend{}, false)
	assert.False(t, svc.IsHealthy())

	_, err := svc.Detect(context.Background(), testFrame())
	assert.ErrorContains(t, err, "detection service unavailable")
}

func TestServiceRejectsInvalidFrame(t *testing.T) {
	svc := startServer(t, &fakeBackend{}, true)
	_, err := svc.Detect(context.Background(), &models.RawFrame{Width: 2, Height: 2})
	assert.ErrorIs(t, err, models.ErrFrameSize)
}

func TestDecodeDetections(t *testing.T) {
	list, err := structpb.NewList([]any{
		map[string]any{"x1": 1, "y1": 2, "x2": 3, "y2": 4, "class_id": 5, "confidence": 0.25},
	})
	require.NoError(t, err)
	dets, err := DecodeDetections(list)
	require.NoError(t, err)
	assert.Equal(t, []models.Detection{{BBox: models.BBox{X1: 1, Y1: 2, X2: 3, Y2: 4}, ClassID: 5, Confidence: 0.25}}, dets)

	tests := map[string][]any{
		"not an object":    {"person"},
		"missing field":    {map[string]any{"x1": 1, "y1": 2, "x2": 3, "class_id": 5, "confidence": 0.5}},
		"string field":     {map[string]any{"x1": "1", "y1": 2, "x2": 3, "y2": 4, "class_id": 5, "confidence": 0.5}},
		"fractional class": {map[string]any{"x1": 1, "y1": 2, "x2": 3, "y2": 4, "class_id": 5.5, "confidence": 0.5}},
	}
	for name, items := range tests {
		t.Run(name, func(t *testing.T) {
			list, err := structpb.NewList(items)
			require.NoError(t, err)
			_, err = DecodeDetections(list)
			assert.Error(t, err)
		})
	}

	empty, err := DecodeDetections(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
