package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name for triage metrics.
const meterName = "github.com/xraph/triage"

// Metrics returns middleware that records per-write metrics using the
// global OTel MeterProvider.
//
// Instruments:
//   - triage.write.duration (Float64Histogram): seconds, by index and status
//   - triage.write.total (Int64Counter): writes, by index and status
//   - triage.exception.score (Float64Histogram): written scores, by index
func Metrics() Middleware {
	return MetricsWithMeter(otel.Meter(meterName))
}

// MetricsWithMeter returns metrics middleware using the provided meter.
func MetricsWithMeter(meter metric.Meter) Middleware {
	// On error the OTel API returns noop instruments.
	duration, _ := meter.Float64Histogram(
		"triage.write.duration",
		metric.WithDescription("Duration of ranked exception writes in seconds"),
		metric.WithUnit("s"),
	)
	writes, _ := meter.Int64Counter(
		"triage.write.total",
		metric.WithDescription("Total number of ranked exception writes"),
		metric.WithUnit("{write}"),
	)
	scores, _ := meter.Float64Histogram(
		"triage.exception.score",
		metric.WithDescription("Scores of written exceptions"),
	)

	return func(ctx context.Context, w *Write, next Handler) error {
		start := time.Now()
		err := next(ctx)
		elapsed := time.Since(start).Seconds()

		status := "ok"
		if err != nil {
			status = "error"
		}

		attrs := metric.WithAttributes(
			attribute.String("index", w.Index),
			attribute.String("status", status),
		)
		duration.Record(ctx, elapsed, attrs)
		writes.Add(ctx, 1, attrs)
		if err == nil {
			scores.Record(ctx, w.Entry.Score, metric.WithAttributes(attribute.String("index", w.Index)))
		}

		return err
	}
}
