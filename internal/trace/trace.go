// Package trace owns the OpenTelemetry tracer for the process. Spans wrap
// the analysis and trading operations; the exporter prints to stdout so a
// session can be inspected without any collector infrastructure.
package trace

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "tradesense"

type state struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	enabled  bool
}

var global state

// Init configures the tracer provider. Set TRADESENSE_TRACING=false to run
// without spans; span helpers then become no-ops.
func Init() error {
	if v := os.Getenv("TRADESENSE_TRACING"); v == "false" {
		return nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return err
	}

	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return err
	}

	global.provider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(global.provider)
	global.tracer = otel.Tracer(serviceName)
	global.enabled = true
	return nil
}

// Shutdown flushes any buffered spans.
func Shutdown(ctx context.Context) error {
	if global.provider == nil {
		return nil
	}
	return global.provider.Shutdown(ctx)
}

// StartSpan opens a span when tracing is on; otherwise it returns the
// context unchanged with the ambient (possibly noop) span.
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if !global.enabled {
		return ctx, trace.SpanFromContext(ctx)
	}
	return global.tracer.Start(ctx, name, opts...)
}

// Ticker is the span attribute used to tag per-instrument operations.
func Ticker(ticker string) attribute.KeyValue {
	return attribute.String("ticker", ticker)
}

// Enabled reports whether tracing was initialized.
func Enabled() bool {
	return global.enabled
}

// GetTraceFields extracts the active trace and span IDs for log correlation.
func GetTraceFields(ctx context.Context) (traceID, spanID string, ok bool) {
	if !global.enabled {
		return "", "", false
	}
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return "", "", false
	}
	return sc.TraceID().String(), sc.SpanID().String(), true
}
