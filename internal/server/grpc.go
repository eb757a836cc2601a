package server

import (
	"context"
	"net"
	"time"

	"github.com/fekuna/omnipos-shelf-service/internal/pkg/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the gRPC health service name reported alongside the
// overall ("") status.
const ServiceName = "omnipos.shelf.v1.ShelfService"

// NewGRPCServer returns a server exposing grpc.health.v1 and reflection.
func NewGRPCServer(hs *health.Server) *grpc.Server {
	s := grpc.NewServer()
	healthpb.RegisterHealthServer(s, hs)
	reflection.Register(s)
	return s
}

// WatchHealth pings the database every interval and mirrors the result into
// the health server until ctx is cancelled.
func WatchHealth(ctx context.Context, hs *health.Server, db Pinger, interval time.Duration, log logger.ZapLogger) {
	update := func() {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		status := healthpb.HealthCheckResponse_SERVING
		if err := db.PingContext(pingCtx); err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if ctx.Err() == nil {
				log.Warn("Database ping failed", zap.Error(err))
			}
		}
		hs.SetServingStatus("", status)
		hs.SetServingStatus(ServiceName, status)
	}

	update()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			hs.Shutdown()
			return
		case <-ticker.C:
			update()
		}
	}
}

// ServeGRPC serves on addr until ctx is cancelled, then stops gracefully.
func ServeGRPC(ctx context.Context, s *grpc.Server, addr string, log logger.ZapLogger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting gRPC server", zap.String("addr", addr))
		errCh <- s.Serve(lis)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("Shutting down gRPC server")
		s.GracefulStop()
		return nil
	}
}
