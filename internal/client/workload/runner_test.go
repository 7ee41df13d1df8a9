package workload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/dmitrijs2005/librarian/internal/server/library"
	"github.com/dmitrijs2005/librarian/internal/server/metrics"
	"github.com/dmitrijs2005/librarian/internal/server/protocol"
	"github.com/dmitrijs2005/librarian/internal/server/tcp"
)

type memRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *memRecorder) Record(source, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, "["+source+"] "+message)
}

func (r *memRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

func (r *memRecorder) bySource(source string) []string {
	var out []string
	for _, l := range r.all() {
		if strings.HasPrefix(l, "["+source+"] ") {
			out = append(out, strings.TrimPrefix(l, "["+source+"] "))
		}
	}
	return out
}

func writeScenario(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func stubExchange(t *testing.T, fn func(line string) (string, error)) {
	t.Helper()
	orig := exchange
	exchange = func(_ context.Context, _, line string, _ time.Duration) (string, error) {
		return fn(line)
	}
	t.Cleanup(func() { exchange = orig })
}

func TestUserTag(t *testing.T) {
	assert.Equal(t, "USER_user1", UserTag("user1.txt"))
	assert.Equal(t, "USER_alice", UserTag("/tmp/scenarios/alice.txt"))
	assert.Equal(t, "USER_bob", UserTag("bob"))
}

func TestRunner_NoFiles(t *testing.T) {
	r := NewRunner("127.0.0.1:1", time.Second, logging.Nop{}, &memRecorder{})

	_, err := r.Run(context.Background(), nil)
	require.ErrorIs(t, err, ErrNoScenarios)
}

func TestRunner_LogsPerUser(t *testing.T) {
	stubExchange(t, func(line string) (string, error) {
		if strings.HasPrefix(line, "Register") {
			return "success 1", nil
		}
		return "", errors.New("connection refused")
	})

	dir := t.TempDir()
	f := writeScenario(t, dir, "user1.txt", "Register Alice\nSleep 0.01\nLend 1984 Alice\n")

	rec := &memRecorder{}
	r := NewRunner("127.0.0.1:1", time.Second, logging.Nop{}, rec)

	results, err := r.Run(context.Background(), []string{f})
	require.NoError(t, err)
	assert.Equal(t, []Result{{User: "USER_user1", Sent: 2, Failures: 1}}, results)

	assert.Equal(t, []string{
		"Sending: Register Alice",
		"Received: success 1",
		"Sending: Lend 1984 Alice",
		"Connection failed: connection refused",
	}, rec.bySource("USER_user1"))

	assert.Equal(t, []string{
		"Starting 1 client threads...",
		"All user threads finished.",
	}, rec.bySource("CLIENT_PROC"))
}

func TestRunner_CountsRejectedReplies(t *testing.T) {
	stubExchange(t, func(line string) (string, error) {
		switch {
		case strings.HasPrefix(line, "Register"):
			return "success 3", nil
		case strings.HasPrefix(line, "Lend"):
			return "failure (user not found)", nil
		default:
			return "garbled", nil
		}
	})

	dir := t.TempDir()
	f := writeScenario(t, dir, "erin.txt", "Register Erin\nLend 1984 Frank\nHello\n")

	r := NewRunner("127.0.0.1:1", time.Second, logging.Nop{}, &memRecorder{})

	results, err := r.Run(context.Background(), []string{f})
	require.NoError(t, err)
	assert.Equal(t, []Result{{User: "USER_erin", Sent: 3, Rejected: 2}}, results)
}

func TestRunner_UsersRunConcurrently(t *testing.T) {
	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	stubExchange(t, func(string) (string, error) {
		mu.Lock()
		inside++
		if inside > maxSeen {
			maxSeen = inside
		}
		mu.Unlock()

		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		inside--
		mu.Unlock()
		return "success", nil
	})

	dir := t.TempDir()
	files := []string{
		writeScenario(t, dir, "a.txt", "AddBook A\n"),
		writeScenario(t, dir, "b.txt", "AddBook B\n"),
		writeScenario(t, dir, "c.txt", "AddBook C\n"),
	}

	r := NewRunner("127.0.0.1:1", time.Second, logging.Nop{}, &memRecorder{})
	_, err := r.Run(context.Background(), files)
	require.NoError(t, err)

	assert.Greater(t, maxSeen, 1)
}

func TestRunner_MissingFileDoesNotStopOthers(t *testing.T) {
	stubExchange(t, func(string) (string, error) { return "success", nil })

	dir := t.TempDir()
	good := writeScenario(t, dir, "good.txt", "AddBook Dune\n")
	missing := filepath.Join(dir, "missing.txt")

	rec := &memRecorder{}
	r := NewRunner("127.0.0.1:1", time.Second, logging.Nop{}, rec)

	results, err := r.Run(context.Background(), []string{missing, good})
	require.ErrorIs(t, err, os.ErrNotExist)

	require.Len(t, results, 2)
	assert.Equal(t, Result{User: "USER_good", Sent: 1}, results[1])
	assert.Equal(t, []string{"Sending: AddBook Dune", "Received: success"}, rec.bySource("USER_good"))
	require.Len(t, rec.bySource("USER_missing"), 1)
	assert.Contains(t, rec.bySource("USER_missing")[0], "Could not load scenario")

	lines := rec.all()
	assert.Equal(t, "[CLIENT_PROC] All user threads finished.", lines[len(lines)-1])
}

func TestRunner_CancelStopsSleep(t *testing.T) {
	stubExchange(t, func(string) (string, error) { return "success", nil })

	dir := t.TempDir()
	f := writeScenario(t, dir, "sleepy.txt", "Sleep 30\nAddBook Never\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner("127.0.0.1:1", time.Second, logging.Nop{}, &memRecorder{})

	start := time.Now()
	results, err := r.Run(ctx, []string{f})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 0, results[0].Sent)
}

func TestRunner_AgainstServer(t *testing.T) {
	store, err := library.NewStore(10, 10, []string{"Alpha", "Beta"})
	require.NoError(t, err)

	srv := tcp.NewServer("127.0.0.1:0", protocol.NewDispatcher(store), logging.Nop{}, &memRecorder{}, metrics.Nop{},
		tcp.Options{PollInterval: 20 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- srv.Run(context.Background()) }()
	t.Cleanup(func() {
		srv.Shutdown()
		<-done
	})

	select {
	case <-srv.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	dir := t.TempDir()
	carol := writeScenario(t, dir, "carol.txt", "Register Carol\nLend Alpha Carol\nReturn Alpha\nLend Alpha Carol\n")
	dave := writeScenario(t, dir, "dave.txt", "Lend Beta Dave\n")

	rec := &memRecorder{}
	r := NewRunner(srv.Addr().String(), time.Second, logging.Nop{}, rec)

	results, err := r.Run(context.Background(), []string{carol, dave})
	require.NoError(t, err)
	assert.Equal(t, []Result{
		{User: "USER_carol", Sent: 4},
		{User: "USER_dave", Sent: 1, Rejected: 1},
	}, results)

	assert.Equal(t, []string{
		"Sending: Register Carol",
		"Received: success 1",
		"Sending: Lend Alpha Carol",
		"Received: success",
		"Sending: Return Alpha",
		"Received: success",
		"Sending: Lend Alpha Carol",
		"Received: success",
	}, rec.bySource("USER_carol"))
	assert.Equal(t, []string{
		"Sending: Lend Beta Dave",
		"Received: failure (user not found)",
	}, rec.bySource("USER_dave"))

	book, _, ok := store.Books.Find("Alpha")
	require.True(t, ok)
	assert.False(t, book.Available)
}
