package log

import (
	"context"
	"log/slog"
	"time"
)

// ContextKey type for context keys
type ContextKey string

const (
	// LoggerContextKey is the context key for the logger
	LoggerContextKey ContextKey = "logger"
)

// WithContext returns a copy of ctx carrying logger.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	// Return default logger if not found
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides structured logging methods with context awareness
type StructuredLogger struct {
	logger *Logger
}

// NewStructuredLogger creates a new structured logger
func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{
		logger: logger,
	}
}

// LogRecordCreated logs a stored contribution or expense.
func (sl *StructuredLogger) LogRecordCreated(ctx context.Context, kind string, groupID, id, memberID, amountCents int64) {
	fields := NewFields().
		WithGroup(groupID, "").
		WithRecord(id, memberID, amountCents).
		WithOperation(OpCreate).
		WithComponent(ComponentLedger)

	sl.logger.InfoContext(ctx, kind+" recorded", fields.ToSlice()...)
}

// LogReportBuilt logs a computed month report.
func (sl *StructuredLogger) LogReportBuilt(ctx context.Context, groupID int64, month string, elapsed time.Duration, cached bool) {
	fields := NewFields().
		WithGroup(groupID, month).
		WithOperation(OpRead).
		WithComponent(ComponentReport)
	fields[FieldDuration] = elapsed.Milliseconds()
	fields["cached"] = cached

	sl.logger.DebugContext(ctx, "Report built", fields.ToSlice()...)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	allFields := fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.logger.ErrorContext(ctx, msg, allFields.ToSlice()...)
}
