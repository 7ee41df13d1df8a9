// Package grpc exposes the gRPC health endpoint of the library service.
// Orchestrators probe it to learn whether the line-protocol listener is
// accepting connections.
package grpc

import (
	"context"
	"errors"
	"net"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/librarian/internal/logging"
)

// ServiceName is the health service name reported alongside the overall ("")
// status.
const ServiceName = "librarian.Library"

type HealthServer struct {
	address string
	logger  logging.Logger
	health  *health.Server

	statusMu sync.Mutex
	draining bool

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

func NewHealthServer(a string, l logging.Logger) *HealthServer {
	s := &HealthServer{
		address: a,
		logger:  l.With("module", "grpc_health"),
		health:  health.NewServer(),
		ready:   make(chan struct{}),
	}
	s.SetServing(false)
	return s
}

// SetServing flips the reported status of both the overall server and
// ServiceName. After Drain, SERVING is never reported again.
func (s *HealthServer) SetServing(serving bool) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	if serving && s.draining {
		return
	}
	s.setStatusLocked(serving)
}

// Drain reports NOT_SERVING for good.
func (s *HealthServer) Drain() {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.draining = true
	s.setStatusLocked(false)
}

func (s *HealthServer) setStatusLocked(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Ready is closed once the listener is bound.
func (s *HealthServer) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Ready is closed.
func (s *HealthServer) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Run serves health checks until ctx is cancelled.
func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.addr = listen.Addr()
	s.mu.Unlock()
	close(s.ready)

	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor),
		grpc.ChainStreamInterceptor(s.streamLoggingInterceptor),
	)

	healthpb.RegisterHealthServer(srv, s.health)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC health server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC health server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return err
	}

	return nil
}
