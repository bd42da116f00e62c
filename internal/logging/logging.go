// Package logging builds the per-run logger shared by every installer
// component.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Name is the logger name stamped on every line.
const Name = "rebellion_installer"

// DefaultFile is the log file name used when none is configured.
const DefaultFile = "rebellion_fix_install.log"

// Logger is an append-only line logger backed by a file. Create one per run
// and Close it on exit.
type Logger struct {
	*slog.Logger
	file *os.File
}

// New opens path for appending and returns a Logger writing to it. If the
// file cannot be opened the logger falls back to stderr so that a log
// failure never blocks an install.
func New(path string) *Logger {
	if path == "" {
		path = DefaultFile
	}

	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", path, err)
		return &Logger{Logger: newSlog(os.Stderr)}
	}

	return &Logger{Logger: newSlog(f), file: f}
}

// NewWriter returns a Logger writing to w. It owns no file.
func NewWriter(w io.Writer) *Logger {
	return &Logger{Logger: newSlog(w)}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return NewWriter(io.Discard)
}

func newSlog(w io.Writer) *slog.Logger {
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	return slog.New(h).With(slog.String("logger", Name))
}

// Path returns the backing file path, or "" when logging to a plain writer.
func (l *Logger) Path() string {
	if l == nil || l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close flushes and closes the backing file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
