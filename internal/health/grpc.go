package health

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Service is the name reported to grpc health clients besides "".
const Service = "tienda"

// NewGRPCServer returns a server with the health service registered. The
// returned health server starts NOT_SERVING until Refresh reports a
// successful ping.
func NewGRPCServer(log *slog.Logger) (*grpc.Server, *grpchealth.Server) {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(recovery(log), logging(log)))
	hs := grpchealth.NewServer()
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(Service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpc_health_v1.RegisterHealthServer(srv, hs)
	return srv, hs
}

type pinger interface {
	Ping(ctx context.Context) error
}

type statusSetter interface {
	SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus)
}

// Refresh pings the store every interval and mirrors the result into hs
// until ctx is done.
func Refresh(ctx context.Context, store pinger, hs statusSetter, interval time.Duration) error {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	set := func() {
		st := grpc_health_v1.HealthCheckResponse_SERVING
		if err := store.Ping(ctx); err != nil {
			st = grpc_health_v1.HealthCheckResponse_NOT_SERVING
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(Service, st)
	}

	set()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			set()
		}
	}
}

func recovery(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("grpc panic", "method", info.FullMethod, "panic", r, "stack", string(debug.Stack()))
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

func logging(log *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		log.Debug("grpc request",
			"method", info.FullMethod,
			"code", status.Code(err).String(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return resp, err
	}
}
