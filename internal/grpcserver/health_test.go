package grpcserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCheckUpdatesStatuses(t *testing.T) {
	var mongoDown atomic.Bool
	h := NewHealthServer(map[string]Probe{
		"postgres": func(context.Context) error { return nil },
		"mongo": func(context.Context) error {
			if mongoDown.Load() {
				return errors.New("no reachable servers")
			}
			return nil
		},
	}, quietLogger())
	ctx := context.Background()

	status := func(service string) healthpb.HealthCheckResponse_ServingStatus {
		resp, err := h.health.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		return resp.GetStatus()
	}

	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(ServiceName))

	h.Check(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status(ServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status("mongo"))

	mongoDown.Store(true)
	h.Check(ctx)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status(ServiceName))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, status("mongo"))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, status("postgres"))
}

func TestStartServesOverGRPC(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := NewHealthServer(map[string]Probe{
		"postgres": func(context.Context) error { return nil },
	}, quietLogger())
	Start(ctx, lis, h, time.Hour)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := healthpb.NewHealthClient(conn)
	require.Eventually(t, func() bool {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 10*time.Millisecond)

	_, err = client.Check(ctx, &healthpb.HealthCheckRequest{Service: "unknown"})
	require.Error(t, err)
}
