// package shared defines shared helpers
package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// LogSink is an [io.Writer] whose destination can be swapped after loggers have been built on it.
//
// Child loggers created with [WithLogger] copy their writer, so redirecting the sink is the only
// way to move every component's output at once. The TUI uses it to keep log lines off the screen.
type LogSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLogSink creates a sink writing to w, defaulting to [os.Stderr].
func NewLogSink(w io.Writer) *LogSink {
	if w == nil {
		w = os.Stderr
	}
	return &LogSink{w: w}
}

func (s *LogSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Redirect sends later writes to w and returns the previous destination.
func (s *LogSink) Redirect(w io.Writer) io.Writer {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.w
	s.w = w
	return prev
}

// OpenLogFile opens the file at path for appending, creating parent directories as needed.
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}

// NopLogger returns a [log.Logger] that discards everything. Components fall back to it when no logger is injected.
func NopLogger() *log.Logger {
	return log.New(io.Discard)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// FormatDuration renders seconds as m:ss. Negative and fractional inputs are floored to whole seconds.
func FormatDuration(seconds float64) string {
	s := int(seconds)
	if s < 0 || seconds != seconds {
		s = 0
	}
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

// WatchURL returns the public watch page for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// MarshalJSON encodes v, indenting with two spaces when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
