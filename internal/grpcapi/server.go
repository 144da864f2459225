// Package grpcapi exposes the station's liveness over the standard gRPC
// health protocol.
package grpcapi

import (
	"context"
	"log"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/itsariadust/qrattendance/station/internal/attendance/capture"
)

// CaptureService is the health service name that tracks the capture loop.
const CaptureService = "qrattendance.CaptureLoop"

type Dependencies struct {
	Logger *log.Logger
	Addr   string
}

type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	addr       string
	logger     *log.Logger
}

func NewServer(d Dependencies) *Server {
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	// Until the loop reports in, the station is not scanning.
	hs.SetServingStatus(CaptureService, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Server{
		grpcServer: gs,
		health:     hs,
		addr:       d.Addr,
		logger:     d.Logger,
	}
}

// SetCaptureState maps a capture loop state onto the health status.  It is
// safe to call from the loop goroutine.
func (s *Server) SetCaptureState(st capture.State) {
	status := healthpb.HealthCheckResponse_SERVING
	if st == capture.StateStopped {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus(CaptureService, status)
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.logger.Printf("grpc health listening on %s", lis.Addr())
	return s.grpcServer.Serve(lis)
}

// Shutdown marks every service NOT_SERVING and drains in-flight calls, or
// stops hard once ctx expires.
func (s *Server) Shutdown(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
		<-done
	}
}
