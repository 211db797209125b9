// Package tracing installs the OpenTelemetry tracer provider used for
// planner stage spans.
package tracing

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ServiceName is reported on every span.
const ServiceName = "tripweaver"

// LogExporter writes ended spans to the process log.
type LogExporter struct {
	logf func(format string, args ...any)
}

// NewLogExporter creates an exporter that logs through logf, or log.Printf when nil.
func NewLogExporter(logf func(format string, args ...any)) *LogExporter {
	if logf == nil {
		logf = log.Printf
	}
	return &LogExporter{logf: logf}
}

// ExportSpans logs one line per span.
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		status := s.Status().Code.String()
		e.logf("DEBUG: span %s trace=%s span=%s duration=%s status=%s",
			s.Name(), s.SpanContext().TraceID(), s.SpanContext().SpanID(),
			s.EndTime().Sub(s.StartTime()).Round(time.Microsecond), status)
	}
	return nil
}

// Shutdown is a no-op.
func (e *LogExporter) Shutdown(ctx context.Context) error {
	return nil
}

// NewProvider returns the tracer provider for the process and a shutdown
// function. When disabled, spans are dropped.
func NewProvider(enabled bool) (trace.TracerProvider, func(context.Context) error) {
	if !enabled {
		return noop.NewTracerProvider(), func(context.Context) error { return nil }
	}

	// SimpleSpanProcessor exports as soon as a span ends
	processor := sdktrace.NewSimpleSpanProcessor(NewLogExporter(nil))
	res := resource.NewSchemaless(attribute.String("service.name", ServiceName))
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(processor),
		sdktrace.WithResource(res),
	)
	return tp, tp.Shutdown
}

// Install sets the global tracer provider.
func Install(enabled bool) func(context.Context) error {
	tp, shutdown := NewProvider(enabled)
	otel.SetTracerProvider(tp)
	return shutdown
}
