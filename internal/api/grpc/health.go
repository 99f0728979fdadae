package grpc

import (
	"context"
	"net"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"blooddrive-backend/internal/logger"
)

// ServiceName is the health-check name reported for the blood drive API.
// The empty name reports overall server health.
const ServiceName = "blooddrive.v1.API"

// HealthServer hosts grpc.health.v1 and reflection for probes and grpcurl.
type HealthServer struct {
	server *gogrpc.Server
	health *health.Server
}

func NewHealthServer() *HealthServer {
	s := gogrpc.NewServer(
		gogrpc.UnaryInterceptor(unaryLogger),
	)
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)

	// Register reflection service for grpcurl
	reflection.Register(s)

	hs := &HealthServer{server: s, health: h}
	// NOT_SERVING until the first database probe succeeds
	hs.SetServing(false)
	return hs
}

// SetServing flips both the overall and the API status.
func (s *HealthServer) SetServing(ok bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
}

func (s *HealthServer) Serve(lis net.Listener) error {
	return s.server.Serve(lis)
}

// Stop marks every service NOT_SERVING, then drains in-flight calls.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.server.GracefulStop()
}

func unaryLogger(ctx context.Context, req interface{}, info *gogrpc.UnaryServerInfo, handler gogrpc.UnaryHandler) (resp interface{}, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("gRPC handler panicked", "method", info.FullMethod, "panic", r)
			err = status.Error(codes.Internal, "internal error")
		}
		logger.Debug("gRPC call", "method", info.FullMethod, "duration_ms", time.Since(start).Milliseconds(), "code", status.Code(err).String())
	}()
	return handler(ctx, req)
}
