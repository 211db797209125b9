package tracing

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestLogExporter(t *testing.T) {
	var lines []string
	exp := NewLogExporter(func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	})
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exp)))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "planner.stage.budget")
	span.End()

	require.Len(t, lines, 1)
	assert.True(t, strings.HasPrefix(lines[0], "DEBUG: span planner.stage.budget"))
}

func TestNewProvider_Disabled(t *testing.T) {
	tp, shutdown := NewProvider(false)
	_, span := tp.Tracer("test").Start(context.Background(), "ignored")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, shutdown(context.Background()))
}

func TestNewProvider_Enabled(t *testing.T) {
	tp, shutdown := NewProvider(true)
	_, span := tp.Tracer("test").Start(context.Background(), "planner.run")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
	assert.NoError(t, shutdown(context.Background()))
}
