package logger

import "context"

// Fields carries structured data attached to a log entry.
type Fields map[string]interface{}

// Logger is the structured logging interface used across the backend.
// Implementations must be safe for concurrent use.
type Logger interface {
	// Debug logs a debug-level message with optional fields.
	Debug(ctx context.Context, msg string, fields Fields)

	// Info logs an info-level message with optional fields.
	Info(ctx context.Context, msg string, fields Fields)

	// Warn logs a warning-level message with optional fields.
	Warn(ctx context.Context, msg string, fields Fields)

	// Error logs an error-level message with optional fields.
	Error(ctx context.Context, msg string, fields Fields)

	// WithField returns a logger that attaches the field to every entry.
	WithField(key string, value interface{}) Logger

	// WithFields returns a logger that attaches the fields to every entry.
	WithFields(fields Fields) Logger
}
