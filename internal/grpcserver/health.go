package grpcserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service name reported for the API as a whole.
const ServiceName = "socialnet"

// Probe checks one backing dependency.
type Probe func(ctx context.Context) error

// HealthServer reports SERVING for a dependency while its probe succeeds. The overall
// ServiceName (and the empty name) are SERVING only when every probe succeeds.
type HealthServer struct {
	health *health.Server
	probes map[string]Probe
	logger *slog.Logger
}

func NewHealthServer(probes map[string]Probe, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	h := &HealthServer{
		health: health.NewServer(),
		probes: probes,
		logger: logger,
	}
	h.setAll(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthServer) setAll(status healthpb.HealthCheckResponse_ServingStatus) {
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
	for name := range h.probes {
		h.health.SetServingStatus(name, status)
	}
}

// Check runs every probe once and updates the reported statuses.
func (h *HealthServer) Check(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING
	for name, probe := range h.probes {
		status := healthpb.HealthCheckResponse_SERVING
		if err := probe(ctx); err != nil {
			h.logger.Warn("health probe failed", "dependency", name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = healthpb.HealthCheckResponse_NOT_SERVING
		}
		h.health.SetServingStatus(name, status)
	}
	h.health.SetServingStatus("", overall)
	h.health.SetServingStatus(ServiceName, overall)
}

// Register attaches the health service to srv.
func (h *HealthServer) Register(srv *grpc.Server) {
	healthpb.RegisterHealthServer(srv, h.health)
}

// Run re-checks the probes every interval until ctx is done, then marks everything NOT_SERVING.
func (h *HealthServer) Run(ctx context.Context, interval time.Duration) {
	h.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, interval)
			h.Check(probeCtx)
			cancel()
		}
	}
}

// Start serves the health service on lis until ctx is cancelled.
func Start(ctx context.Context, lis net.Listener, h *HealthServer, interval time.Duration) *grpc.Server {
	srv := grpc.NewServer()
	h.Register(srv)

	go h.Run(ctx, interval)

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()

	go func() {
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			h.logger.Error("gRPC server error", "error", err)
		}
	}()

	return srv
}

// Listen opens a TCP listener on addr and starts the server on it.
func Listen(ctx context.Context, addr string, h *HealthServer, interval time.Duration) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return Start(ctx, lis, h, interval), nil
}
