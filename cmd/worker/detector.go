package main

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"yolo-webcam-go/internal/config"
	"yolo-webcam-go/internal/labels"
	"yolo-webcam-go/internal/services/detection"
	"yolo-webcam-go/internal/services/detection/onnx"
	"yolo-webcam-go/internal/services/frameprocessing"
)

type closableDetector interface {
	frameprocessing.Detector
	Close(ctx context.Context) error
}

type onnxDetector struct{ *onnx.Detector }

func (d onnxDetector) Close(context.Context) error { return d.Detector.Close() }

type remoteDetector struct{ *detection.Service }

func (d remoteDetector) Close(ctx context.Context) error { return d.Shutdown(ctx) }

type noDetector struct{ frameprocessing.NoDetector }

func (noDetector) Close(context.Context) error { return nil }

func newDetector(cfg *config.Config, table *labels.Table) (closableDetector, error) {
	switch cfg.DetectorBackend {
	case config.DetectorONNX:
		d, err := onnx.NewDetector(onnx.Config{
			ModelPath:    cfg.ModelPath,
			InputSize:    cfg.ModelInputSize,
			Classes:      table.Len(),
			NMSThreshold: float32(cfg.NMSThreshold),
		})
		if err != nil {
			return nil, err
		}
		return onnxDetector{d}, nil
	case config.DetectorGRPC:
		svc, err := detection.NewService(cfg.DetectorGRPCURL,
			detection.WithTimeout(cfg.DetectorTimeout),
			detection.WithJPEGQuality(cfg.MJPEGQuality),
		)
		if err != nil {
			return nil, err
		}
		return remoteDetector{svc}, nil
	case config.DetectorNone:
		log.Warn().Msg("No detector configured, frames pass through unannotated")
		return noDetector{}, nil
	default:
		return nil, fmt.Errorf("%w: DETECTOR_BACKEND %q", config.ErrInvalid, cfg.DetectorBackend)
	}
}

// detectorServer shares the in-process detector with other workers over gRPC
type detectorServer struct {
	grpc   *grpc.Server
	health *health.Server
}

func serveDetector(port int, backend detection.Backend) (*detectorServer, error) {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("failed to listen on port %d: %w", port, err)
	}

	s := grpc.NewServer()
	hs := detection.RegisterServer(s, backend)
	go func() {
		if err := s.Serve(lis); err != nil {
			log.Error().Err(err).Msg("Detector gRPC server stopped")
		}
	}()

	log.Info().Int("port", port).Str("service", detection.ServiceName).Msg("🛰️ Serving detector over gRPC")
	return &detectorServer{grpc: s, health: hs}, nil
}

func (d *detectorServer) Stop() {
	d.health.Shutdown()
	d.grpc.GracefulStop()
}
