// Package netx holds the client side of the library line protocol.
package netx

import (
	"context"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// MaxResponseSize bounds how much of a reply is read.
const MaxResponseSize = 1024

// Exchange performs one request/response round trip: it dials addr, writes
// line, reads until the server closes the connection and returns the reply.
// timeout bounds the dial and, separately, the read; zero disables both.
func Exchange(ctx context.Context, addr, line string, timeout time.Duration) (string, error) {
	d := net.Dialer{Timeout: timeout}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return "", err
		}
	}

	if _, err := io.WriteString(conn, line); err != nil {
		return "", fmt.Errorf("write request: %w", err)
	}

	b, err := io.ReadAll(io.LimitReader(conn, MaxResponseSize))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	return strings.TrimRight(string(b), "\r\n"), nil
}
