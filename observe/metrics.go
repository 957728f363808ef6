package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names.
const (
	MetricLookups     = "cache.lookups"
	MetricErrors      = "cache.errors"
	MetricKeyDuration = "cache.keygen.duration_ms"
)

// Metrics records cache activity.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordLookup counts one store lookup and whether it hit.
	RecordLookup(ctx context.Context, meta MethodMeta, hit bool)

	// RecordKeyGeneration records how long deriving a key took and whether
	// it failed.
	RecordKeyGeneration(ctx context.Context, meta MethodMeta, d time.Duration, err error)

	// RecordError counts a failed call or store operation.
	RecordError(ctx context.Context, meta MethodMeta, stage string)
}

type otelMetrics struct {
	lookups     metric.Int64Counter
	errors      metric.Int64Counter
	keyDuration metric.Float64Histogram
}

// NewMetrics registers the cache instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	lookups, err := meter.Int64Counter(MetricLookups,
		metric.WithDescription("Cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Failed calls and store operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	keyDuration, err := meter.Float64Histogram(MetricKeyDuration,
		metric.WithDescription("Time spent deriving cache keys"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{lookups: lookups, errors: errs, keyDuration: keyDuration}, nil
}

func (m *otelMetrics) RecordLookup(ctx context.Context, meta MethodMeta, hit bool) {
	attrs := append(meta.attributes(), attribute.Bool("hit", hit))
	m.lookups.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *otelMetrics) RecordKeyGeneration(ctx context.Context, meta MethodMeta, d time.Duration, err error) {
	attrs := append(meta.attributes(), attribute.Bool("error", err != nil))
	m.keyDuration.Record(ctx, float64(d.Microseconds())/1000, metric.WithAttributes(attrs...))
	if err != nil {
		m.RecordError(ctx, meta, "keygen")
	}
}

func (m *otelMetrics) RecordError(ctx context.Context, meta MethodMeta, stage string) {
	attrs := append(meta.attributes(), attribute.String("stage", stage))
	m.errors.Add(ctx, 1, metric.WithAttributes(attrs...))
}

type nopMetrics struct{}

func (nopMetrics) RecordLookup(context.Context, MethodMeta, bool)                         {}
func (nopMetrics) RecordKeyGeneration(context.Context, MethodMeta, time.Duration, error) {}
func (nopMetrics) RecordError(context.Context, MethodMeta, string)                        {}
