package logger

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"go.trai.ch/roster/internal/core/ports"
)

// messager is implemented by zerr errors: Message returns the error's own text
// without its causes.
type messager interface {
	Message() string
}

// Logger implements ports.Logger using log/slog.
type Logger struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	level    slog.LevelVar
	jsonMode bool
	output   io.Writer
}

var _ ports.Logger = (*Logger)(nil)

// New creates a Logger writing pretty output to stderr at info level.
func New() *Logger {
	l := &Logger{output: os.Stderr}
	l.level.Set(slog.LevelInfo)
	l.rebuild()
	return l
}

// SetOutput changes the destination. A nil writer means stderr.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.rebuild()
}

// SetJSON switches between JSON and pretty output, keeping the destination.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.jsonMode = enable
	l.rebuild()
}

// SetVerbose enables debug messages.
func (l *Logger) SetVerbose(enable bool) {
	if enable {
		l.level.Set(slog.LevelDebug)
		return
	}
	l.level.Set(slog.LevelInfo)
}

// rebuild installs a handler for the current settings. Callers hold mu.
func (l *Logger) rebuild() {
	opts := &slog.HandlerOptions{Level: &l.level}
	var handler slog.Handler
	if l.jsonMode {
		handler = slog.NewJSONHandler(l.output, opts)
	} else {
		handler = NewPrettyHandler(l.output, opts)
	}
	l.logger = slog.New(handler)
}

// Debug logs a diagnostic message, shown only in verbose mode.
func (l *Logger) Debug(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Debug(msg)
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
}

// Error logs err with its chain of causes. Nil errors are ignored.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}

// ErrorEntry is one level of an error chain.
type ErrorEntry struct {
	Message string
}

// collectErrorEntries walks the zerr chain of err. The first error that is not a zerr
// error ends the walk with its full text.
func collectErrorEntries(err error) []ErrorEntry {
	var entries []ErrorEntry
	for current := err; current != nil; {
		m, ok := current.(messager)
		if !ok {
			entries = append(entries, ErrorEntry{Message: current.Error()})
			break
		}
		entries = append(entries, ErrorEntry{Message: m.Message()})
		current = errors.Unwrap(current)
	}
	return entries
}

func formatErrorEntries(entries []ErrorEntry) string {
	var lines []string
	for i, entry := range entries {
		msgLines := strings.Split(entry.Message, "\n")
		if i == 0 {
			lines = append(lines, "Error: "+msgLines[0])
			for _, line := range msgLines[1:] {
				lines = append(lines, "       "+line)
			}
			continue
		}
		if i == 1 {
			lines = append(lines, "", "  Caused by:")
		}
		lines = append(lines, "    → "+msgLines[0])
		for _, line := range msgLines[1:] {
			lines = append(lines, "      "+line)
		}
	}
	return strings.Join(lines, "\n")
}
