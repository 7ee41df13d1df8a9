// Package activity writes the shared, human-readable activity log of a
// simulation run. Several processes append to the same file; every line is
// "[<SOURCE>] <message>".
package activity

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dmitrijs2005/librarian/internal/filex"
	"github.com/dmitrijs2005/librarian/internal/logging"
)

// Source tags used by the programs of this module.
const (
	SourceLibrary       = "LIBRARY"
	SourceLibraryThread = "LIBRARY_THREAD"
	SourceClient        = "CLIENT_PROC"
	SourceBuilder       = "BUILDER"
)

// Recorder accepts activity lines.
type Recorder interface {
	Record(source, message string)
}

// FileLog appends to a file shared with other processes. Writers inside one
// process are serialized by a mutex, writers across processes by an
// exclusive flock held for the duration of the write.
type FileLog struct {
	path   string
	mu     sync.Mutex
	logger logging.Logger
}

// NewFileLog returns a FileLog appending to path. Write failures are reported
// to logger and otherwise ignored.
func NewFileLog(path string, logger logging.Logger) *FileLog {
	return &FileLog{path: path, logger: logger}
}

// Record appends one line.
func (l *FileLog) Record(source, message string) {
	if err := l.append(fmt.Sprintf("[%s] %s\n", source, message)); err != nil {
		l.logger.Error(context.Background(), "activity log write failed", "path", l.path, "error", err)
	}
}

func (l *FileLog) append(line string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open activity log: %w", err)
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("lock activity log: %w", err)
	}
	defer unlockFile(f)

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write activity log: %w", err)
	}
	return nil
}

// Reset truncates the file at path and writes header followed by a blank
// line. Missing parent directories are created.
func Reset(path, header string) error {
	if _, err := filex.EnsureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(header+"\n\n"), 0o644)
}

// Nop drops every line.
type Nop struct{}

func (Nop) Record(string, string) {}
