package logger

import (
	"context"
	"log/slog"
)

type ContextKey string

const (
	RequestIDKey ContextKey = "request_id"
	OperationKey ContextKey = "operation"
	SourceKeyKey ContextKey = "source_key"
)

type ContextLogger struct {
	logger *slog.Logger
}

func NewContextLogger(logger *slog.Logger) *ContextLogger {
	return &ContextLogger{logger: logger}
}

// WithContext adds context values to log entries
func (cl *ContextLogger) WithContext(ctx context.Context) *slog.Logger {
	args := make([]any, 0, 6)

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		args = append(args, "request_id", requestID)
	}

	if operation, ok := ctx.Value(OperationKey).(string); ok {
		args = append(args, "operation", operation)
	}

	if sourceKey, ok := ctx.Value(SourceKeyKey).(string); ok {
		args = append(args, "source_key", sourceKey)
	}

	return cl.logger.With(args...)
}

// FromContext is a shorthand over the global logger.
func FromContext(ctx context.Context) *slog.Logger {
	return NewContextLogger(Logger).WithContext(ctx)
}

func WithOperation(ctx context.Context, operation string) context.Context {
	return context.WithValue(ctx, OperationKey, operation)
}

func WithSourceKey(ctx context.Context, sourceKey string) context.Context {
	return context.WithValue(ctx, SourceKeyKey, sourceKey)
}
