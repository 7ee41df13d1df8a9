package tcp

import (
	"context"
	"io"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/librarian/internal/activity"
	"github.com/dmitrijs2005/librarian/internal/server/protocol"
)

// handle serves exactly one request on conn and closes it. Nothing that
// happens here, a panic included, reaches the accept loop.
func (s *Server) handle(ctx context.Context, conn net.Conn) {
	start := time.Now()
	log := s.logger.With("conn_id", uuid.NewString(), "remote", conn.RemoteAddr().String())

	s.metrics.HandlerStarted(ctx)
	defer s.metrics.HandlerFinished(ctx)
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			log.Error(ctx, "handler panicked", "panic", r)
			s.metrics.ConnectionError(ctx, "panic")
		}
	}()

	buf := make([]byte, s.opts.ReadBufferSize)
	n, err := conn.Read(buf)
	if n == 0 {
		if err == nil || err == io.EOF {
			log.Debug(ctx, "connection closed before a request arrived")
		} else {
			log.Warn(ctx, "read failed", "error", err)
		}
		s.metrics.ConnectionError(ctx, "read")
		return
	}

	raw := strings.TrimRight(string(buf[:n]), "\r\n")
	s.activity.Record(activity.SourceLibraryThread, "Request received: "+raw)

	req := protocol.ParseRequestN(raw, s.opts.MaxTokenLen)
	resp := s.dispatcher.Dispatch(ctx, req)
	out := resp.String()

	s.activity.Record(activity.SourceLibraryThread, "Response sent: "+out)

	if _, err := conn.Write([]byte(out)); err != nil {
		log.Warn(ctx, "write failed", "error", err)
		s.metrics.ConnectionError(ctx, "write")
		return
	}

	command := req.Command
	if !protocol.Known(command) {
		command = "unknown"
	}
	s.metrics.RequestServed(ctx, command, resp.Outcome(), time.Since(start))
	log.Debug(ctx, "request served", "command", req.Command, "response", out)
}
