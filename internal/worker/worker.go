package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/logging"
	"yolo-webcam-go/internal/models"
	"yolo-webcam-go/internal/services/frameprocessing"
	"yolo-webcam-go/internal/services/mailbox"
)

const (
	defaultRetryBackoff = time.Second
	maxRetryBackoff     = 30 * time.Second
)

// Source produces frames for one camera until ctx is done
type Source interface {
	Run(ctx context.Context, cameraID string, sink models.FrameSink) error
}

// FramePublisher receives every processed frame
type FramePublisher interface {
	PublishFrame(frame *models.ProcessedFrame) error
}

// EventPublisher receives one event per frame with annotated detections
type EventPublisher interface {
	PublishAnnotations(event models.AnnotationEvent) error
}

// Worker drives the pipeline for a single camera:
// capture -> mailbox -> detection and annotation -> MJPEG publisher and NATS events.
// A Worker runs once; create a new one to restart.
type Worker struct {
	cfg       *config.Config
	cameraID  string
	source    Source
	processor frameprocessing.Processor
	frames    FramePublisher
	events    EventPublisher
	logger    zerolog.Logger

	inbox        *mailbox.Mailbox
	retryBackoff time.Duration

	started atomic.Bool
	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	statsMu sync.Mutex
	stats   models.CameraStats
}

// New wires a worker. events may be nil when NATS is disabled.
func New(cfg *config.Config, source Source, processor frameprocessing.Processor, frames FramePublisher, events EventPublisher) (*Worker, error) {
	if source == nil {
		return nil, fmt.Errorf("frame source is required")
	}
	if processor == nil {
		return nil, fmt.Errorf("frame processor is required")
	}
	if frames == nil {
		return nil, fmt.Errorf("frame publisher is required")
	}

	logger := logging.WithCamera(logging.NewServiceLogger(cfg, "worker"), cfg.CameraID)
	return &Worker{
		cfg:          cfg,
		cameraID:     cfg.CameraID,
		source:       source,
		processor:    processor,
		frames:       frames,
		events:       events,
		logger:       logger,
		inbox:        mailbox.New(),
		retryBackoff: defaultRetryBackoff,
		stats: models.CameraStats{
			CameraID: cfg.CameraID,
			Source:   cfg.CameraSource,
		},
	}, nil
}

// Start launches the capture and processing loops. They stop when ctx is done or Stop is called.
func (w *Worker) Start(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		return fmt.Errorf("worker for camera %s already started", w.cameraID)
	}

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.running.Store(true)

	w.wg.Add(2)
	go w.runCapture(ctx)
	go w.runProcessor(ctx)

	w.logger.Info().Str("source", w.cfg.CameraSource).Msg("🚀 Worker pipeline started")
	return nil
}

// Stop cancels both loops and waits for them to return
func (w *Worker) Stop() {
	if !w.started.Load() {
		return
	}
	w.cancel()
	w.inbox.Close()
	w.wg.Wait()
	if w.running.Swap(false) {
		w.logger.Info().Msg("Worker pipeline stopped")
	}
}

// Running reports whether the pipeline loops are active
func (w *Worker) Running() bool {
	return w.running.Load()
}

// Stats returns a snapshot of the camera counters
func (w *Worker) Stats() models.CameraStats {
	w.statsMu.Lock()
	s := w.stats
	w.statsMu.Unlock()

	s.FramesCaptured = w.inbox.Offered()
	s.FramesDropped = w.inbox.Dropped()
	return s
}

// runCapture keeps the source running, restarting it with exponential backoff after failures
func (w *Worker) runCapture(ctx context.Context) {
	defer w.wg.Done()
	defer w.inbox.Close()

	backoff := w.retryBackoff
	for {
		before := w.inbox.Offered()
		err := w.runSource(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			w.recordError(err)
			w.logger.Error().Err(err).Dur("retry_in", backoff).Msg("Capture failed")
		} else {
			w.logger.Warn().Dur("retry_in", backoff).Msg("Capture ended, restarting")
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if w.inbox.Offered() > before {
			backoff = w.retryBackoff
		} else {
			backoff = min(backoff*2, maxRetryBackoff)
		}
	}
}

func (w *Worker) runSource(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("capture panic: %v", r)
		}
	}()
	return w.source.Run(ctx, w.cameraID, w.inbox)
}

func (w *Worker) runProcessor(ctx context.Context) {
	defer w.wg.Done()
	defer w.running.Store(false)

	w.logger.Debug().Msg("Frame processor started")
	for {
		raw := w.inbox.Take(ctx)
		if raw == nil {
			w.logger.Debug().Msg("Frame processor stopping")
			return
		}
		w.processFrame(ctx, raw)
	}
}

// processFrame runs one frame through detection and annotation, then fans it out
func (w *Worker) processFrame(ctx context.Context, raw *models.RawFrame) {
	defer func() {
		if r := recover(); r != nil {
			w.recordError(fmt.Errorf("process frame panic: %v", r))
			w.logger.Error().Interface("panic", r).Int64("frame_id", raw.FrameID).Msg("Process frame panic recovered")
		}
	}()

	processed, err := w.processor.ProcessFrame(ctx, raw)
	if err != nil {
		w.recordError(err)
		w.logger.Error().Err(err).Int64("frame_id", raw.FrameID).Msg("Failed to process frame")
		return
	}
	w.recordProcessed(processed)

	if err := w.frames.PublishFrame(processed); err != nil {
		w.recordError(err)
		w.logger.Error().Err(err).Int64("frame_id", processed.FrameID).Msg("Failed to publish frame")
	}

	if w.events != nil && len(processed.Annotated) > 0 {
		if err := w.events.PublishAnnotations(models.NewAnnotationEvent(w.cfg.WorkerID, processed)); err != nil {
			w.logger.Warn().Err(err).Int64("frame_id", processed.FrameID).Msg("Failed to publish annotation event")
		}
	}
}

func (w *Worker) recordProcessed(frame *models.ProcessedFrame) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.stats.FramesProcessed++
	w.stats.DetectionsKept += int64(len(frame.Annotated))
	w.stats.LastFrameTime = frame.Timestamp
	if frame.DetectionError != "" {
		w.stats.LastError = frame.DetectionError
	}
}

func (w *Worker) recordError(err error) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()

	w.stats.ProcessingErrors++
	w.stats.LastError = err.Error()
}
