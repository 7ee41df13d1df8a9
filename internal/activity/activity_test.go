package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/librarian/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLog_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, Reset(path, "=== Library Management System Simulation ==="))

	l := NewFileLog(path, logging.Nop{})
	l.Record(SourceLibrary, "Library process starting...")
	l.Record(SourceLibraryThread, "Request received: Register Carol")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"=== Library Management System Simulation ===\n\n"+
			"[LIBRARY] Library process starting...\n"+
			"[LIBRARY_THREAD] Request received: Register Carol\n",
		string(b))
}

func TestFileLog_ConcurrentLinesStayWhole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	l := NewFileLog(path, logging.Nop{})

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.Record(fmt.Sprintf("W%d", w), strings.Repeat("x", 200))
			}
		}(w)
	}
	wg.Wait()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	require.Len(t, lines, writers*perWriter)
	for _, line := range lines {
		assert.Regexp(t, `^\[W\d\] x{200}$`, line)
	}
}

func TestFileLog_UnwritablePathDoesNotPanic(t *testing.T) {
	l := NewFileLog(filepath.Join(t.TempDir(), "missing", "dir", "log.txt"), logging.Nop{})
	assert.NotPanics(t, func() { l.Record(SourceBuilder, "lost") })
}

func TestReset_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "log.txt")

	require.NoError(t, Reset(path, "header"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "header\n\n", string(b))
}
