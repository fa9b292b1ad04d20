package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/labels"
	"yolo-webcam-go/internal/models"
	"yolo-webcam-go/internal/services/frameprocessing"
)

type chanSource struct {
	frames   chan *models.RawFrame
	failures int32
	calls    atomic.Int32
}

func newChanSource(failures int32) *chanSource {
	return &chanSource{frames: make(chan *models.RawFrame), failures: failures}
}

func (s *chanSource) Run(ctx context.Context, cameraID string, sink models.FrameSink) error {
	if s.calls.Add(1) <= s.failures {
		return errors.New("camera unplugged")
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case f := <-s.frames:
			f.CameraID = cameraID
			sink.Offer(f)
		}
	}
}

// fakeProcessor annotates even frames and fails frame 99
type fakeProcessor struct{}

func (fakeProcessor) ProcessFrame(_ context.Context, raw *models.RawFrame) (*models.ProcessedFrame, error) {
	if raw.FrameID == 99 {
		return nil, errors.New("frame 99: unknown class id 500")
	}
	out := &models.ProcessedFrame{CameraID: raw.CameraID, FrameID: raw.FrameID, Timestamp: raw.Timestamp}
	if raw.FrameID%2 == 0 {
		out.Annotated = []models.AnnotatedDetection{{Label: "Person - Con người"}}
	}
	return out, nil
}

type framesRecorder struct {
	frames chan *models.ProcessedFrame
}

func (r *framesRecorder) PublishFrame(f *models.ProcessedFrame) error {
	r.frames <- f
	return nil
}

type eventsRecorder struct {
	events chan models.AnnotationEvent
}

func (r *eventsRecorder) PublishAnnotations(ev models.AnnotationEvent) error {
	r.events <- ev
	return nil
}

func testConfig() *config.Config {
	return &config.Config{WorkerID: "worker-1", CameraID: "webcam", CameraSource: "0"}
}

func waitFrame(t *testing.T, ch <-chan *models.ProcessedFrame) *models.ProcessedFrame {
	t.Helper()
	select {
	case f := <-ch:
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("no frame published")
		return nil
	}
}

func startWorker(t *testing.T, src Source) (*Worker, *framesRecorder, *eventsRecorder) {
	t.Helper()
	frames := &framesRecorder{frames: make(chan *models.ProcessedFrame, 10)}
	events := &eventsRecorder{events: make(chan models.AnnotationEvent, 10)}
	w, err := New(testConfig(), src, fakeProcessor{}, frames, events)
	require.NoError(t, err)
	w.retryBackoff = 5 * time.Millisecond

	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return w, frames, events
}

func TestPipelinePublishesFramesAndEvents(t *testing.T) {
	src := newChanSource(0)
	w, frames, events := startWorker(t, src)

	src.frames <- &models.RawFrame{FrameID: 1, Timestamp: time.Now()}
	f := waitFrame(t, frames.frames)
	assert.Equal(t, int64(1), f.FrameID)
	assert.Equal(t, "webcam", f.CameraID)

	src.frames <- &models.RawFrame{FrameID: 2, Timestamp: time.Now()}
	f = waitFrame(t, frames.frames)
	assert.Equal(t, int64(2), f.FrameID)

	select {
	case ev := <-events.events:
		assert.Equal(t, int64(2), ev.FrameID)
		assert.Equal(t, "worker-1", ev.WorkerID)
		assert.Len(t, ev.Detections, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no annotation event")
	}
	assert.Empty(t, events.events, "frames without annotations publish no event")

	stats := w.Stats()
	assert.Equal(t, int64(2), stats.FramesCaptured)
	assert.Equal(t, int64(2), stats.FramesProcessed)
	assert.Equal(t, int64(1), stats.DetectionsKept)
	assert.Equal(t, "webcam", stats.CameraID)
	assert.True(t, w.Running())
}

func TestProcessingErrorSkipsFrame(t *testing.T) {
	src := newChanSource(0)
	w, frames, _ := startWorker(t, src)

	src.frames <- &models.RawFrame{FrameID: 99}
	require.Eventually(t, func() bool { return w.Stats().ProcessingErrors == 1 }, 2*time.Second, 5*time.Millisecond)
	src.frames <- &models.RawFrame{FrameID: 3}

	f := waitFrame(t, frames.frames)
	assert.Equal(t, int64(3), f.FrameID)

	stats := w.Stats()
	assert.Equal(t, int64(1), stats.ProcessingErrors)
	assert.Contains(t, stats.LastError, "unknown class")
}

func TestCaptureRestartsAfterFailure(t *testing.T) {
	src := newChanSource(2)
	w, frames, _ := startWorker(t, src)

	src.frames <- &models.RawFrame{FrameID: 5}
	f := waitFrame(t, frames.frames)
	assert.Equal(t, int64(5), f.FrameID)

	assert.Equal(t, int32(3), src.calls.Load())
	stats := w.Stats()
	assert.Equal(t, int64(2), stats.ProcessingErrors)
	assert.Equal(t, "camera unplugged", stats.LastError)
}

func TestStartStop(t *testing.T) {
	frames := &framesRecorder{frames: make(chan *models.ProcessedFrame, 1)}
	w, err := New(testConfig(), newChanSource(0), fakeProcessor{}, frames, nil)
	require.NoError(t, err)

	w.Stop()
	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.False(t, w.Running())
}

func TestNewValidation(t *testing.T) {
	frames := &framesRecorder{}
	_, err := New(testConfig(), nil, fakeProcessor{}, frames, nil)
	assert.Error(t, err)
	_, err = New(testConfig(), newChanSource(0), nil, frames, nil)
	assert.Error(t, err)
	_, err = New(testConfig(), newChanSource(0), fakeProcessor{}, nil, nil)
	assert.Error(t, err)
}

func TestSettingsHandler(t *testing.T) {
	annotator := frameprocessing.NewAnnotator(labels.COCO(), nil, frameprocessing.DefaultAnnotatorOptions())
	fp, err := frameprocessing.NewFrameProcessor(nil, annotator, frameprocessing.Settings{
		ConfidenceThreshold: 0.5,
		CenterZoneMin:       0.3,
		CenterZoneMax:       0.7,
		DrawOrder:           config.DrawOrderBoxFirst,
	})
	require.NoError(t, err)

	apply := SettingsHandler(fp)

	apply([]byte(`{"confidence_threshold":0.8,"center_zone_enabled":true}`))
	s := fp.Settings()
	assert.InDelta(t, 0.8, s.ConfidenceThreshold, 1e-9)
	assert.True(t, s.CenterZoneEnabled)
	assert.Equal(t, config.DrawOrderBoxFirst, s.DrawOrder, "missing fields keep their value")

	apply([]byte(`{"confidence_threshold":1.5}`))
	assert.InDelta(t, 0.8, fp.Settings().ConfidenceThreshold, 1e-9, "invalid update rejected")

	apply([]byte(`not json`))
	assert.InDelta(t, 0.8, fp.Settings().ConfidenceThreshold, 1e-9)
}
