package netx

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serveOnce accepts a single connection, hands the received bytes to reply
// and writes back whatever it returns.
func serveOnce(t *testing.T, reply func(req string) string) (string, <-chan string) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	got := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 1024)
		n, _ := conn.Read(buf)
		got <- string(buf[:n])
		_, _ = conn.Write([]byte(reply(string(buf[:n]))))
	}()

	return ln.Addr().String(), got
}

func TestExchange(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		addr, got := serveOnce(t, func(string) string { return "success 1" })

		resp, err := Exchange(context.Background(), addr, "Register Carol", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "success 1", resp)
		assert.Equal(t, "Register Carol", <-got)
	})

	t.Run("trailing newline trimmed", func(t *testing.T) {
		addr, _ := serveOnce(t, func(string) string { return "failure (unknown command)\r\n" })

		resp, err := Exchange(context.Background(), addr, "Hello", time.Second)
		require.NoError(t, err)
		assert.Equal(t, "failure (unknown command)", resp)
	})

	t.Run("connection refused", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		addr := ln.Addr().String()
		require.NoError(t, ln.Close())

		_, err = Exchange(context.Background(), addr, "Register Carol", time.Second)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "dial "+addr)
	})

	t.Run("silent server times out", func(t *testing.T) {
		ln, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		t.Cleanup(func() { _ = ln.Close() })

		go func() {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			time.Sleep(500 * time.Millisecond)
			conn.Close()
		}()

		_, err = Exchange(context.Background(), ln.Addr().String(), "Register Carol", 50*time.Millisecond)
		require.Error(t, err)

		var ne net.Error
		require.ErrorAs(t, err, &ne)
		assert.True(t, ne.Timeout())
	})
}
