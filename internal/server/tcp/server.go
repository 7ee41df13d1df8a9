// Package tcp serves the library line protocol over TCP: one goroutine
// accepts connections and every accepted connection gets its own handler
// goroutine that serves exactly one request.
package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/librarian/internal/activity"
	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server/metrics"
	"github.com/dmitrijs2005/librarian/internal/server/protocol"
)

// State is the lifecycle stage of the listener.
type State int32

const (
	StateBinding State = iota
	StateListening
	StateDraining
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateBinding:
		return "binding"
	case StateListening:
		return "listening"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Dispatcher executes one parsed request.
type Dispatcher interface {
	Dispatch(ctx context.Context, req protocol.Request) protocol.Response
}

// Options tunes a Server. Zero values fall back to the defaults below.
type Options struct {
	// PollInterval bounds each accept call; shutdown is noticed within
	// roughly this long.
	PollInterval time.Duration
	// ReadBufferSize is the size of the single read done per connection.
	ReadBufferSize int
	// MaxTokenLen limits each request token.
	MaxTokenLen int
}

const (
	DefaultPollInterval   = time.Second
	DefaultReadBufferSize = 1024
)

type Server struct {
	address    string
	dispatcher Dispatcher
	logger     logging.Logger
	activity   activity.Recorder
	metrics    metrics.Recorder
	opts       Options

	shutdown atomic.Bool
	state    atomic.Int32

	mu    sync.Mutex
	addr  net.Addr
	ready chan struct{}
}

// NewServer returns a Server that will listen on address once Run is called.
func NewServer(address string, d Dispatcher, l logging.Logger, a activity.Recorder, m metrics.Recorder, opts Options) *Server {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.ReadBufferSize <= 0 {
		opts.ReadBufferSize = DefaultReadBufferSize
	}
	if opts.MaxTokenLen <= 0 {
		opts.MaxTokenLen = protocol.MaxTokenLen
	}

	return &Server{
		address:    address,
		dispatcher: d,
		logger:     l.With("module", "tcp_server"),
		activity:   a,
		metrics:    m,
		opts:       opts,
		ready:      make(chan struct{}),
	}
}

// Shutdown asks the accept loop to stop. It is safe to call any number of
// times from any goroutine, including signal handlers.
func (s *Server) Shutdown() {
	s.shutdown.Store(true)
}

// State reports the current lifecycle stage.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Ready is closed once the listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, or nil before Ready is closed.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

func (s *Server) stopping(ctx context.Context) bool {
	return s.shutdown.Load() || ctx.Err() != nil
}

// Run binds the listener and accepts connections until Shutdown is called or
// ctx is cancelled. Handlers already started keep running after Run returns;
// cancelling ctx does not interrupt them. A bind failure is returned before
// any connection is accepted.
func (s *Server) Run(ctx context.Context) error {
	s.state.Store(int32(StateBinding))

	ln, err := net.Listen("tcp", s.address)
	if err != nil {
		s.state.Store(int32(StateStopped))
		return fmt.Errorf("listen on %s: %w", s.address, err)
	}
	defer ln.Close()

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()

	s.state.Store(int32(StateListening))
	close(s.ready)

	s.logger.Info(ctx, "Server listening", "address", ln.Addr().String())
	s.activity.Record(activity.SourceLibrary, fmt.Sprintf("Server listening on %s...", ln.Addr()))

	handlerCtx := context.WithoutCancel(ctx)

	for !s.stopping(ctx) {
		if dl, ok := ln.(interface{ SetDeadline(time.Time) error }); ok {
			if err := dl.SetDeadline(time.Now().Add(s.opts.PollInterval)); err != nil {
				return fmt.Errorf("set accept deadline: %w", err)
			}
		}

		conn, err := ln.Accept()
		if err != nil {
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			s.logger.Error(ctx, "accept failed", "error", err)
			s.metrics.ConnectionError(ctx, "accept")
			continue
		}

		go s.handle(handlerCtx, conn)
	}

	s.state.Store(int32(StateDraining))
	s.logger.Info(ctx, "Stopping server...")
	s.activity.Record(activity.SourceLibrary, "Shutting down: no longer accepting connections.")

	if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.logger.Warn(ctx, "closing listener", "error", err)
	}

	s.state.Store(int32(StateStopped))
	s.activity.Record(activity.SourceLibrary, "Shutdown complete.")
	s.logger.Info(ctx, "Server stopped")

	return nil
}
