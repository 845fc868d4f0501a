// Package server поднимает gRPC-сервер со стандартным сервисом
// grpc.health.v1 для проб оркестратора.
package server

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/magabrotheeeer/bloom-gym/internal/lib/sl"
)

// ServiceName - имя сервиса, под которым публикуется статус.
const ServiceName = "bloom-gym"

// Pinger проверяет доступность зависимости.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthServer отдаёт статус сервиса по grpc.health.v1.
type HealthServer struct {
	srv    *grpc.Server
	health *health.Server
	checks map[string]Pinger
	log    *slog.Logger
}

// NewHealthServer создает сервер. До первой проверки статус NOT_SERVING.
func NewHealthServer(log *slog.Logger, checks map[string]Pinger) *HealthServer {
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

	return &HealthServer{
		srv:    srv,
		health: hs,
		checks: checks,
		log:    log,
	}
}

// Serve принимает соединения на lis до вызова Stop.
func (s *HealthServer) Serve(lis net.Listener) error {
	s.log.Info("gRPC health server starting", slog.String("address", lis.Addr().String()))
	return s.srv.Serve(lis)
}

// Refresh опрашивает зависимости и обновляет статус.
func (s *HealthServer) Refresh(ctx context.Context) {
	status := healthpb.HealthCheckResponse_SERVING
	for name, c := range s.checks {
		if err := c.Ping(ctx); err != nil {
			s.log.Warn("dependency unavailable", slog.String("component", name), sl.Err(err))
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	s.health.SetServingStatus(ServiceName, status)
	s.health.SetServingStatus("", status)
}

// Watch обновляет статус каждые interval, пока не отменён ctx.
func (s *HealthServer) Watch(ctx context.Context, interval time.Duration) {
	s.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Stop переводит статус в NOT_SERVING и дожидается завершения активных вызовов.
func (s *HealthServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
