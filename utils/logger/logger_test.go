package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestContextLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")
	ctx = WithOperation(ctx, "aggregate")
	ctx = WithSourceKey(ctx, "zhihu")

	NewContextLogger(base).WithContext(ctx).Info("source fetched")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "req-123", record["request_id"])
	assert.Equal(t, "aggregate", record["operation"])
	assert.Equal(t, "zhihu", record["source_key"])
}

func TestContextLogger_IgnoresMissingValues(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	NewContextLogger(base).WithContext(context.Background()).Info("plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	_, ok := record["request_id"]
	assert.False(t, ok)
}

func TestTraceContextHandler_AddsTraceIDs(t *testing.T) {
	var buf bytes.Buffer
	handler := NewTraceContextHandler(slog.NewJSONHandler(&buf, nil))
	log := slog.New(handler)

	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "op")
	log.InfoContext(ctx, "inside span")
	span.End()

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, span.SpanContext().TraceID().String(), record["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), record["span_id"])
}

func TestMultiHandler_FansOut(t *testing.T) {
	var first, second bytes.Buffer
	h := NewMultiHandlerWith(
		slog.NewJSONHandler(&first, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&second, &slog.HandlerOptions{Level: slog.LevelError}),
	)
	log := slog.New(h).With("component", "test")

	log.Info("info only")
	log.Error("both")

	assert.Contains(t, first.String(), "info only")
	assert.Contains(t, first.String(), "both")
	assert.NotContains(t, second.String(), "info only")
	assert.Contains(t, second.String(), "both")
	assert.Contains(t, second.String(), `"component":"test"`)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARNING"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
