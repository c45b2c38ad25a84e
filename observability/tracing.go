// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for relay invocations.
package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/xraph/fanrelay"

// Tracer provides OpenTelemetry tracing for the relay.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{tracer: otel.Tracer(tracerName)}
}

// NewTracerFromProvider creates a tracer from tp.
func NewTracerFromProvider(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(tracerName)}
}

// StartInvocationSpan starts the span covering one inbound webhook.
func (t *Tracer) StartInvocationSpan(ctx context.Context, invocationID, method string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "fanrelay.invocation",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("fanrelay.invocation_id", invocationID),
			attribute.String("http.request.method", method),
		),
	)
}

// EndInvocationSpan ends an invocation span with the response code returned upstream.
func (t *Tracer) EndInvocationSpan(span trace.Span, targets, statusCode int) {
	span.SetAttributes(
		attribute.Int("fanrelay.targets", targets),
		attribute.Int("http.response.status_code", statusCode),
	)
	if statusCode >= 500 {
		span.SetStatus(codes.Error, "relay failed")
	}
	span.End()
}

// StartTargetSpan starts a span for one outbound target call.
func (t *Tracer) StartTargetSpan(ctx context.Context, invocationID, url string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "fanrelay.target",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("fanrelay.invocation_id", invocationID),
			attribute.String("url.full", url),
		),
	)
}

// EndTargetSpan ends a target span with result attributes.
func (t *Tracer) EndTargetSpan(span trace.Span, statusCode, latencyMs int, success bool, err string) {
	span.SetAttributes(
		attribute.Int("http.response.status_code", statusCode),
		attribute.Int("fanrelay.latency_ms", latencyMs),
		attribute.Bool("fanrelay.success", success),
	)
	if err != "" {
		span.SetAttributes(attribute.String("fanrelay.error", err))
	}
	if !success {
		span.SetStatus(codes.Error, "target failed")
	}
	span.End()
}
