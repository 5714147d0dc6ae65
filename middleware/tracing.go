package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for obscopilot tracing.
const tracerName = "github.com/justedave0/obscopilot"

// Tracing returns middleware that wraps action execution in an OpenTelemetry
// span. If no TracerProvider is configured globally, the default noop tracer
// is used and this middleware becomes a pass-through with zero overhead.
//
// Span attributes include: obscopilot.run.id, obscopilot.workflow.id,
// obscopilot.workflow.name, obscopilot.action.kind, obscopilot.action.index,
// obscopilot.action.attempt. On error, the span status is set to codes.Error
// with the error message.
func Tracing() Middleware {
	tracer := otel.Tracer(tracerName)
	return TracingWithTracer(tracer)
}

// TracingWithTracer returns tracing middleware using the provided tracer.
// This variant allows injecting a specific TracerProvider for testing or
// when multiple providers are in use.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, s *Step, next Handler) error {
		ctx, span := tracer.Start(ctx, "obscopilot.action.execute",
			trace.WithAttributes(
				attribute.String("obscopilot.run.id", s.RunID.String()),
				attribute.String("obscopilot.workflow.id", s.WorkflowID.String()),
				attribute.String("obscopilot.workflow.name", s.WorkflowName),
				attribute.String("obscopilot.action.kind", s.Spec.Kind),
				attribute.Int("obscopilot.action.index", s.Index),
				attribute.Int("obscopilot.action.attempt", s.Attempt),
			),
			trace.WithSpanKind(trace.SpanKindInternal),
		)
		defer span.End()

		err := next(ctx)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}

		return err
	}
}
