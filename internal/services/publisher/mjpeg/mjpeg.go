package mjpeg

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/models"
)

const boundary = "frame"

type Publisher struct {
	cfg *config.Config

	jpegMutex  sync.RWMutex
	latestJPEG map[string][]byte

	notifyMutex sync.Mutex
	viewers     map[string]map[chan struct{}]struct{}
}

func NewPublisher(cfg *config.Config) (*Publisher, error) {
	p := &Publisher{
		cfg:        cfg,
		latestJPEG: make(map[string][]byte),
		viewers:    make(map[string]map[chan struct{}]struct{}),
	}

	return p, nil
}

// PublishFrame encodes the annotated frame and wakes every viewer of its camera
func (p *Publisher) PublishFrame(frame *models.ProcessedFrame) error {
	if err := p.updateLatestJPEG(frame); err != nil {
		return err
	}

	p.notifyStreamers(frame.CameraID)
	return nil
}

func (p *Publisher) updateLatestJPEG(frame *models.ProcessedFrame) error {
	mat, err := gocv.NewMatFromBytes(frame.Height, frame.Width, gocv.MatTypeCV8UC3, frame.Data)
	if err != nil {
		return fmt.Errorf("failed to create Mat from frame data: %w", err)
	}
	defer mat.Close()

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, p.cfg.MJPEGQuality})
	if err != nil {
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}

	b := buf.GetBytes()
	jpegCopy := make([]byte, len(b))
	copy(jpegCopy, b)
	buf.Close()

	p.jpegMutex.Lock()
	p.latestJPEG[frame.CameraID] = jpegCopy
	p.jpegMutex.Unlock()
	return nil
}

// LatestJPEG returns the most recent encoded frame of a camera
func (p *Publisher) LatestJPEG(cameraID string) ([]byte, bool) {
	p.jpegMutex.RLock()
	defer p.jpegMutex.RUnlock()
	b, ok := p.latestJPEG[cameraID]
	return b, ok && len(b) > 0
}

func (p *Publisher) notifyStreamers(cameraID string) {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()

	for notify := range p.viewers[cameraID] {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
}

func (p *Publisher) addViewer(cameraID string) chan struct{} {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()

	notify := make(chan struct{}, 1)
	if p.viewers[cameraID] == nil {
		p.viewers[cameraID] = make(map[chan struct{}]struct{})
	}
	p.viewers[cameraID][notify] = struct{}{}
	return notify
}

func (p *Publisher) removeViewer(cameraID string, notify chan struct{}) {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()

	delete(p.viewers[cameraID], notify)
	if len(p.viewers[cameraID]) == 0 {
		delete(p.viewers, cameraID)
	}
}

// ViewerCount returns the number of connected MJPEG clients across cameras
func (p *Publisher) ViewerCount() int {
	p.notifyMutex.Lock()
	defer p.notifyMutex.Unlock()

	n := 0
	for _, v := range p.viewers {
		n += len(v)
	}
	return n
}

func (p *Publisher) StreamMJPEGHTTP(w http.ResponseWriter, r *http.Request, cameraID string) {
	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary="+boundary)
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	notify := p.addViewer(cameraID)
	defer p.removeViewer(cameraID, notify)

	writePart := func(jpeg []byte) bool {
		if _, err := io.WriteString(w, "--"+boundary+"\r\n"); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "Content-Type: image/jpeg\r\n"); err != nil {
			return false
		}
		if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(jpeg)); err != nil {
			return false
		}
		if _, err := w.Write(jpeg); err != nil {
			return false
		}
		if _, err := io.WriteString(w, "\r\n"); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	first, ok := p.LatestJPEG(cameraID)
	if !ok {
		first = p.placeholder(cameraID)
	}
	if len(first) > 0 {
		if !writePart(first) {
			return
		}
	}

	keepaliveTicker := time.NewTicker(2 * time.Second)
	defer keepaliveTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-notify:
		case <-keepaliveTicker.C:
		}
		if buf, ok := p.LatestJPEG(cameraID); ok {
			if !writePart(buf) {
				return
			}
		}
	}
}

// placeholder renders a gray "Initializing..." card shown until the first frame arrives
func (p *Publisher) placeholder(cameraID string) []byte {
	mat := gocv.NewMatWithSize(p.cfg.OutputHeight, p.cfg.OutputWidth, gocv.MatTypeCV8UC3)
	defer mat.Close()

	mat.SetTo(gocv.Scalar{Val1: 64, Val2: 64, Val3: 64, Val4: 0})

	textColor := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	gocv.PutText(&mat, fmt.Sprintf("Camera: %s", cameraID),
		image.Pt(20, p.cfg.OutputHeight/2), gocv.FontHersheySimplex, 1.0, textColor, 2)
	gocv.PutText(&mat, "Initializing...",
		image.Pt(20, p.cfg.OutputHeight/2+40), gocv.FontHersheySimplex, 0.8, textColor, 2)

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, p.cfg.MJPEGQuality})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to encode placeholder frame")
		return nil
	}
	defer buf.Close()

	b := buf.GetBytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (p *Publisher) Shutdown() {
	log.Info().Msg("MJPEG Publisher shutting down")
}
