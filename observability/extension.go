package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xraph/triage/exception"
	"github.com/xraph/triage/ext"
)

// Compile-time interface checks.
var (
	_ ext.Extension         = (*MetricsExtension)(nil)
	_ ext.ExceptionAdded    = (*MetricsExtension)(nil)
	_ ext.ExceptionRetrying = (*MetricsExtension)(nil)
	_ ext.ExceptionFailed   = (*MetricsExtension)(nil)
	_ ext.ExceptionRescored = (*MetricsExtension)(nil)
	_ ext.RescoreCompleted  = (*MetricsExtension)(nil)
)

const meterName = "github.com/xraph/triage/observability"

// MetricsExtension records lifecycle counters through an OTel meter.
// Every instrument carries an "index" attribute.
type MetricsExtension struct {
	Added    metric.Int64Counter
	Retried  metric.Int64Counter
	Failed   metric.Int64Counter
	Rescored metric.Int64Counter
	Passes   metric.Int64Counter
}

// NewMetricsExtension creates a MetricsExtension on the global
// MeterProvider.
func NewMetricsExtension() *MetricsExtension {
	return NewMetricsExtensionWithMeter(otel.Meter(meterName))
}

// NewMetricsExtensionWithMeter creates a MetricsExtension with the
// provided meter.
func NewMetricsExtensionWithMeter(meter metric.Meter) *MetricsExtension {
	// On error the OTel API returns noop instruments.
	added, _ := meter.Int64Counter("triage.exception.added",
		metric.WithDescription("Exceptions written to a ranked index"))
	retried, _ := meter.Int64Counter("triage.exception.retried",
		metric.WithDescription("Exception writes re-issued after a store failure"))
	failed, _ := meter.Int64Counter("triage.exception.failed",
		metric.WithDescription("Exception writes that failed terminally"))
	rescored, _ := meter.Int64Counter("triage.exception.rescored",
		metric.WithDescription("Stored scores replaced by re-scoring"))
	passes, _ := meter.Int64Counter("triage.rescore.passes",
		metric.WithDescription("Completed re-scoring passes"))

	return &MetricsExtension{
		Added:    added,
		Retried:  retried,
		Failed:   failed,
		Rescored: rescored,
		Passes:   passes,
	}
}

// Name implements ext.Extension.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

func indexAttr(index string) metric.AddOption {
	return metric.WithAttributes(attribute.String("index", index))
}

// ── Write hooks ─────────────────────────────────────

// OnExceptionAdded implements ext.ExceptionAdded.
func (m *MetricsExtension) OnExceptionAdded(ctx context.Context, index string, _ *exception.Entry, _ time.Duration) error {
	m.Added.Add(ctx, 1, indexAttr(index))
	return nil
}

// OnExceptionRetrying implements ext.ExceptionRetrying.
func (m *MetricsExtension) OnExceptionRetrying(ctx context.Context, index string, _ int64, _ int, _ error) error {
	m.Retried.Add(ctx, 1, indexAttr(index))
	return nil
}

// OnExceptionFailed implements ext.ExceptionFailed.
func (m *MetricsExtension) OnExceptionFailed(ctx context.Context, index string, _ int64, _ error) error {
	m.Failed.Add(ctx, 1, indexAttr(index))
	return nil
}

// ── Re-scoring hooks ────────────────────────────────

// OnExceptionRescored implements ext.ExceptionRescored.
func (m *MetricsExtension) OnExceptionRescored(ctx context.Context, index, _ string, _, _ float64) error {
	m.Rescored.Add(ctx, 1, indexAttr(index))
	return nil
}

// OnRescoreCompleted implements ext.RescoreCompleted.
func (m *MetricsExtension) OnRescoreCompleted(ctx context.Context, index string, _, _ int, _ time.Duration) error {
	m.Passes.Add(ctx, 1, indexAttr(index))
	return nil
}
