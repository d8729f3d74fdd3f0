package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records compiler metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordCompile records one compilation with its outcome and duration.
	RecordCompile(ctx context.Context, success bool, duration time.Duration)

	// RecordNodeEmitted records one node lowered to code.
	RecordNodeEmitted(ctx context.Context, kind string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	compileRuns    metric.Int64Counter
	compileLatency metric.Float64Histogram
	nodesEmitted   metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics lazily creates the shared OTel metrics instance.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("stratgraph")

	compileRuns, err := meter.Int64Counter("stratgraph.compile.runs",
		metric.WithDescription("Number of strategy compilations"),
	)
	if err != nil {
		return nil, err
	}

	compileLatency, err := meter.Float64Histogram("stratgraph.compile.latency_ms",
		metric.WithDescription("Strategy compilation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	nodesEmitted, err := meter.Int64Counter("stratgraph.node.emitted",
		metric.WithDescription("Number of nodes lowered to code"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		compileRuns:    compileRuns,
		compileLatency: compileLatency,
		nodesEmitted:   nodesEmitted,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordCompile records a compilation.
func (m *otelMetrics) RecordCompile(ctx context.Context, success bool, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.Bool("success", success))
	m.compileRuns.Add(ctx, 1, attrs)
	m.compileLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

// RecordNodeEmitted records a lowered node.
func (m *otelMetrics) RecordNodeEmitted(ctx context.Context, kind string) {
	m.nodesEmitted.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}
