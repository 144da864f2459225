package grpcapi_test

import (
	"context"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
	"github.com/itsariadust/qrattendance/station/internal/grpcapi"
)

func newTestServer(t *testing.T) (*grpcapi.Server, healthpb.HealthClient) {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpcapi.NewServer(grpcapi.Dependencies{Logger: log.New(io.Discard, "", 0)})
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	})

	return srv, healthpb.NewHealthClient(conn)
}

func check(t *testing.T, c healthpb.HealthClient) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := c.Check(ctx, &healthpb.HealthCheckRequest{Service: grpcapi.CaptureService})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestHealth_NotServingUntilLoopReports(t *testing.T) {
	_, client := newTestServer(t)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client))
}

func TestHealth_TracksCaptureState(t *testing.T) {
	srv, client := newTestServer(t)

	srv.SetCaptureState(capture.StateRunning)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client))

	srv.SetCaptureState(capture.StateCooldown)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client))

	srv.SetCaptureState(capture.StateStopped)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client))
}

func TestHealth_OverallServerServing(t *testing.T) {
	_, client := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
