package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope name for triage tracing.
const tracerName = "github.com/xraph/triage"

// Tracing returns middleware that wraps each write in an OpenTelemetry span.
// Without a configured global TracerProvider the noop tracer is used.
//
// Span attributes: triage.exception.id, triage.key, triage.index,
// triage.score, triage.attempt.
func Tracing() Middleware {
	return TracingWithTracer(otel.Tracer(tracerName))
}

// TracingWithTracer returns tracing middleware using the provided tracer.
func TracingWithTracer(tracer trace.Tracer) Middleware {
	return func(ctx context.Context, w *Write, next Handler) error {
		ctx, span := tracer.Start(ctx, "triage.exception.write",
			trace.WithAttributes(
				attribute.Int64("triage.exception.id", w.ExceptionID),
				attribute.String("triage.key", w.Entry.Key),
				attribute.String("triage.index", w.Index),
				attribute.Float64("triage.score", w.Entry.Score),
				attribute.Int("triage.attempt", w.Attempt),
			),
			trace.WithSpanKind(trace.SpanKindClient),
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
