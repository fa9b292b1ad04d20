package detection

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"yolo-webcam-go/internal/helpers"
	"yolo-webcam-go/internal/models"
)

// Backend is anything that can detect objects in a frame
type Backend interface {
	Detect(ctx context.Context, frame *models.RawFrame) ([]models.Detection, error)
}

// DetectorServer is the server side of the remote detector contract
type DetectorServer interface {
	Detect(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.ListValue, error)
}

type detectorServer struct {
	backend Backend
}

// RegisterServer exposes backend on s under ServiceName, together with a grpc.health.v1 service
// reporting SERVING for it. The returned health server can flip the status on shutdown.
func RegisterServer(s *grpc.Server, backend Backend) *health.Server {
	s.RegisterService(&serviceDesc, &detectorServer{backend: backend})

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	grpc_health_v1.RegisterHealthServer(s, hs)
	return hs
}

func (d *detectorServer) Detect(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.ListValue, error) {
	frame, err := helpers.DecodeFrame(in.GetValue(), "")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	dets, err := d.backend.Detect(ctx, frame)
	if err != nil {
		log.Error().Err(err).Msg("Detector backend failed")
		return nil, status.Error(codes.Internal, err.Error())
	}
	list, err := EncodeDetections(dets)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return list, nil
}

func detectHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DetectorServer).Detect(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: DetectMethod,
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(DetectorServer).Detect(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DetectorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Detect",
			Handler:    detectHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "yolo/v1/detector.proto",
}
