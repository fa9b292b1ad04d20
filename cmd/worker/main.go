package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"yolo-webcam-go/internal/api"
	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/labels"
	"yolo-webcam-go/internal/logging"
	"yolo-webcam-go/internal/services/frameprocessing"
	"yolo-webcam-go/internal/services/messaging"
	"yolo-webcam-go/internal/services/publisher/mjpeg"
	"yolo-webcam-go/internal/services/streamcapture"
	"yolo-webcam-go/internal/worker"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().
		Str("worker_id", cfg.WorkerID).
		Str("version", cfg.Version).
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("camera_source", cfg.CameraSource).
		Str("detector", cfg.DetectorBackend).
		Msg("Starting YOLO webcam annotation worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	table := labels.COCO()
	detector, err := newDetector(cfg, table)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create detector")
	}

	typeface := frameprocessing.AcquireTypeface(frameprocessing.FileFonts(cfg.FontPaths), frameprocessing.RequiredRunes(table))
	opts, err := frameprocessing.AnnotatorOptionsFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid annotation options")
	}
	processor, err := frameprocessing.NewFrameProcessor(detector, frameprocessing.NewAnnotator(table, typeface, opts), frameprocessing.SettingsFromConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create frame processor")
	}

	publisher, err := mjpeg.NewPublisher(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create MJPEG publisher")
	}

	var (
		events  worker.EventPublisher
		natsSvc *messaging.Service
	)
	if cfg.NatsEnabled {
		natsSvc, err = messaging.NewService(cfg)
		if err != nil {
			log.Warn().Err(err).Msg("NATS unavailable, annotation events disabled")
		} else {
			events = natsSvc
			if _, err := natsSvc.Subscribe(cfg.SettingsSubject, worker.SettingsHandler(processor)); err != nil {
				log.Warn().Err(err).Str("subject", cfg.SettingsSubject).Msg("Failed to subscribe to settings updates")
			}
		}
	}

	pipeline, err := worker.New(cfg, streamcapture.NewService(cfg), processor, publisher, events)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create worker")
	}
	if err := pipeline.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start worker")
	}

	var grpcDetector *detectorServer
	if cfg.DetectorServePort > 0 {
		grpcDetector, err = serveDetector(cfg.DetectorServePort, detector)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to start detector gRPC server")
		}
	}

	server, err := api.NewServer(cfg, api.Dependencies{
		Processor: processor,
		Stream:    publisher,
		Stats:     pipeline,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if grpcDetector != nil {
		grpcDetector.Stop()
	}
	pipeline.Stop()
	publisher.Shutdown()
	if natsSvc != nil {
		if err := natsSvc.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("NATS shutdown failed")
		}
	}
	if err := detector.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Detector shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
