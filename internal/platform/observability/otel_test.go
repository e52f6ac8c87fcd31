package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewLogger_StampsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With(slog.String("component", "test"))

	tracer := sdktrace.NewTracerProvider().Tracer("test")
	ctx, span := tracer.Start(context.Background(), "op")
	logger.InfoContext(ctx, "inside span")
	span.End()

	assert.Contains(t, buf.String(), `"traceId":"`+span.SpanContext().TraceID().String()+`"`)
	assert.Contains(t, buf.String(), `"component":"test"`)

	buf.Reset()
	logger.InfoContext(context.Background(), "no span")
	assert.NotContains(t, buf.String(), "traceId")

	buf.Reset()
	logger.DebugContext(ctx, "filtered")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel(" error "))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}
