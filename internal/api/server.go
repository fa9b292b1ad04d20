package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yolo-webcam-go/internal/api/handlers"
	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/services/frameprocessing"
)

// Dependencies are the services the HTTP API exposes. Stream and Stats may be nil.
type Dependencies struct {
	Processor *frameprocessing.FrameProcessor
	Stream    handlers.FrameStreamer
	Stats     handlers.StatsProvider
}

type Server struct {
	config *config.Config
	router *gin.Engine
	server *http.Server

	// request contexts derive from baseCtx so Shutdown can end MJPEG streams
	baseCtx    context.Context
	cancelBase context.CancelFunc

	healthHandler     *handlers.HealthHandler
	annotationHandler *handlers.AnnotationHandler
	streamHandler     *handlers.StreamHandler
	webrtcHandler     *handlers.WebRTCHandler
	systemHandler     *handlers.SystemHandler
}

func NewServer(cfg *config.Config, deps Dependencies) (*Server, error) {
	if deps.Processor == nil {
		return nil, fmt.Errorf("frame processor is required")
	}
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	baseCtx, cancelBase := context.WithCancel(context.Background())
	s := &Server{
		config:            cfg,
		router:            gin.New(),
		baseCtx:           baseCtx,
		cancelBase:        cancelBase,
		healthHandler:     handlers.NewHealthHandler(cfg, deps.Stats),
		annotationHandler: handlers.NewAnnotationHandler(cfg, deps.Processor),
		streamHandler:     handlers.NewStreamHandler(cfg, deps.Stream),
		webrtcHandler:     handlers.NewWebRTCHandler(cfg),
		systemHandler:     handlers.NewSystemHandler(cfg, deps.Stats, deps.Stream, deps.Processor),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupSwagger()

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.baseCtx },
	}
	return s, nil
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Info().Int("port", s.config.Port).Msg("🚀 Starting annotation API")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("🛑 Stopping annotation API...")
	s.cancelBase()
	return s.server.Shutdown(ctx)
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}
