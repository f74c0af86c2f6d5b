package orchestrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DebugLogger appends timestamped lines to the arbor debug log. A nil logger
// and the one returned by NopLogger discard everything. Loggers derived with
// WithPrefix share the parent's writer and lock.
type DebugLogger struct {
	out    *logSink
	prefix string
}

type logSink struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewDebugLogger opens logPath for appending, creating parent directories.
// An empty path yields a no-op logger.
func NewDebugLogger(logPath string) (*DebugLogger, error) {
	if logPath == "" {
		return NopLogger(), nil
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	l := NewWriterLogger(f, time.Now)
	fmt.Fprintf(f, "\n--- arbor %s ---\n", time.Now().Format(time.RFC3339))
	return l, nil
}

// NewWriterLogger logs to w using now for timestamps.
func NewWriterLogger(w io.Writer, now func() time.Time) *DebugLogger {
	if now == nil {
		now = time.Now
	}
	return &DebugLogger{out: &logSink{w: w, now: now}}
}

// NopLogger returns a logger that writes nothing.
func NopLogger() *DebugLogger {
	return &DebugLogger{}
}

// WithPrefix returns a logger that tags every line with prefix, e.g. a run id.
func (l *DebugLogger) WithPrefix(prefix string) *DebugLogger {
	if l == nil {
		return nil
	}
	if l.prefix != "" {
		prefix = l.prefix + " " + prefix
	}
	return &DebugLogger{out: l.out, prefix: prefix}
}

// Log writes one formatted line.
func (l *DebugLogger) Log(format string, args ...any) {
	if l == nil || l.out == nil {
		return
	}
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")

	s := l.out
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().Format("15:04:05.000")
	if l.prefix != "" {
		fmt.Fprintf(s.w, "[%s] [%s] %s\n", ts, l.prefix, msg)
	} else {
		fmt.Fprintf(s.w, "[%s] %s\n", ts, msg)
	}
	if f, ok := s.w.(*os.File); ok {
		f.Sync()
	}
}

// Event records an orchestrator event as a single line.
func (l *DebugLogger) Event(ev Event) {
	if l == nil || l.out == nil {
		return
	}
	line := fmt.Sprintf("event %s level=%s node=%q", ev.Type, ev.Level, ev.NodeName)
	if ev.Count > 0 {
		line += fmt.Sprintf(" count=%d", ev.Count)
	}
	if ev.Attempt > 0 {
		line += fmt.Sprintf(" attempt=%d/%d", ev.Attempt, ev.MaxAttempts)
	}
	if ev.Path != "" {
		line += " path=" + ev.Path
	}
	if ev.Error != nil {
		line += fmt.Sprintf(" err=%q", ev.Error.Error())
	}
	l.Log("%s", line)
}

// Close closes the underlying file, if the logger owns one. Loggers made
// with WithPrefix close the shared file too.
func (l *DebugLogger) Close() error {
	if l == nil || l.out == nil {
		return nil
	}
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if c, ok := l.out.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
