package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest creates a test meter provider and returns a function to collect metrics.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordCompile(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCompile(ctx, true, 3*time.Millisecond)
	m.RecordCompile(ctx, false, time.Millisecond)
	m.RecordCompile(ctx, true, 2*time.Millisecond)

	rm := collectMetrics(t, reader)

	t.Run("counts runs by outcome", func(t *testing.T) {
		runs := findMetric(rm, "stratgraph.compile.runs")
		require.NotNil(t, runs)

		sum, ok := runs.Data.(metricdata.Sum[int64])
		require.True(t, ok, "Expected Sum type")

		bySuccess := map[bool]int64{}
		for _, dp := range sum.DataPoints {
			v, found := dp.Attributes.Value("success")
			require.True(t, found)
			bySuccess[v.AsBool()] += dp.Value
		}
		assert.Equal(t, int64(2), bySuccess[true])
		assert.Equal(t, int64(1), bySuccess[false])
	})

	t.Run("records latency", func(t *testing.T) {
		latency := findMetric(rm, "stratgraph.compile.latency_ms")
		require.NotNil(t, latency)

		hist, ok := latency.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")

		var count uint64
		for _, dp := range hist.DataPoints {
			count += dp.Count
		}
		assert.Equal(t, uint64(3), count)
	})
}

func TestRecordNodeEmitted(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordNodeEmitted(ctx, "FetchQuote")
	m.RecordNodeEmitted(ctx, "FetchQuote")
	m.RecordNodeEmitted(ctx, "PlaceOrder")

	rm := collectMetrics(t, reader)
	emitted := findMetric(rm, "stratgraph.node.emitted")
	require.NotNil(t, emitted)

	sum, ok := emitted.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	byKind := map[string]int64{}
	for _, dp := range sum.DataPoints {
		v, found := dp.Attributes.Value("kind")
		require.True(t, found)
		byKind[v.AsString()] += dp.Value
	}
	assert.Equal(t, map[string]int64{"FetchQuote": 2, "PlaceOrder": 1}, byKind)
}
