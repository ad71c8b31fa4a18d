// Package logging writes structured JSON log lines, one object per line.
//
// Every entry carries "ts" (RFC3339Nano in the configured location), "level",
// "component" and "event", plus caller-supplied fields.
package logging

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

type ctxKey struct{}

// WithRequestID returns a copy of ctx carrying the request ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID stored in ctx, or "".
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Fields are extra key/value pairs attached to a log entry.
type Fields map[string]any

// Logger emits JSON lines for a single component.
// It is safe for concurrent use.
type Logger struct {
	mu        *sync.Mutex
	w         io.Writer
	loc       *time.Location
	component string
}

// New returns a Logger writing to w. A nil location means UTC.
func New(w io.Writer, loc *time.Location, component string) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{mu: &sync.Mutex{}, w: w, loc: loc, component: component}
}

// Stdout returns a Logger writing to os.Stdout.
func Stdout(loc *time.Location, component string) *Logger {
	return New(os.Stdout, loc, component)
}

// Discard returns a Logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(io.Discard, time.UTC, "")
}

// With returns a Logger sharing the same output for another component.
func (l *Logger) With(component string) *Logger {
	return &Logger{mu: l.mu, w: l.w, loc: l.loc, component: component}
}

// Info logs an informational event.
func (l *Logger) Info(event string, f Fields) {
	l.write("info", event, nil, f)
}

// Warn logs a recoverable problem.
func (l *Logger) Warn(event string, f Fields) {
	l.write("warn", event, nil, f)
}

// Error logs a failed event; err is stored under "error_message".
// f is never modified.
func (l *Logger) Error(event string, err error, f Fields) {
	l.write("error", event, err, f)
}

func (l *Logger) write(level, event string, err error, f Fields) {
	entry := make(map[string]any, len(f)+5)
	for k, v := range f {
		entry[k] = v
	}
	if err != nil {
		entry["error_message"] = err.Error()
	}
	entry["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	entry["level"] = level
	entry["event"] = event
	if l.component != "" {
		entry["component"] = l.component
	}

	b, merr := json.Marshal(entry)
	if merr != nil {
		log.Printf("failed to marshal log entry: %v", merr)
		return
	}
	b = append(b, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.w.Write(b)
}
