package logger

import (
	"context"
	"sync"
)

// Entry is a single log entry captured by the test logger.
type Entry struct {
	Level   string
	Message string
	Fields  Fields
}

type entryBuffer struct {
	mu      sync.Mutex
	entries []Entry
}

// TestLogger captures log entries in memory so tests can assert on them.
// Derived loggers from WithField/WithFields share the same buffer.
type TestLogger struct {
	buf    *entryBuffer
	fields Fields
}

// NewTestLogger creates an empty test logger.
func NewTestLogger() *TestLogger {
	return &TestLogger{buf: &entryBuffer{}, fields: Fields{}}
}

// Debug records a debug-level entry.
func (l *TestLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.record("debug", msg, fields)
}

// Info records an info-level entry.
func (l *TestLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.record("info", msg, fields)
}

// Warn records a warn-level entry.
func (l *TestLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.record("warn", msg, fields)
}

// Error records an error-level entry.
func (l *TestLogger) Error(ctx context.Context, msg string, fields Fields) {
	l.record("error", msg, fields)
}

// WithField returns a logger sharing the same capture buffer.
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(Fields{key: value})
}

// WithFields returns a logger sharing the same capture buffer.
func (l *TestLogger) WithFields(fields Fields) Logger {
	return &TestLogger{buf: l.buf, fields: mergeFields(l.fields, fields)}
}

// Entries returns a copy of all captured entries.
func (l *TestLogger) Entries() []Entry {
	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()
	out := make([]Entry, len(l.buf.entries))
	copy(out, l.buf.entries)
	return out
}

// Reset discards all captured entries.
func (l *TestLogger) Reset() {
	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()
	l.buf.entries = l.buf.entries[:0]
}

func (l *TestLogger) record(level, msg string, fields Fields) {
	l.buf.mu.Lock()
	defer l.buf.mu.Unlock()
	l.buf.entries = append(l.buf.entries, Entry{
		Level:   level,
		Message: msg,
		Fields:  mergeFields(l.fields, fields),
	})
}

func mergeFields(base, extra Fields) Fields {
	merged := make(Fields, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
