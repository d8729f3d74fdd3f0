package stratgraph

import (
	"log/slog"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph/observability"
)

// compileConfig holds configuration for one compilation.
type compileConfig struct {
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
	compileID string
}

// defaultCompileConfig returns a configuration with logging, metrics and
// tracing all off.
func defaultCompileConfig() compileConfig {
	return compileConfig{
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
	}
}

// Option configures a compilation.
type Option func(*compileConfig)

// WithLogger sets the logger. Compile events are logged at Info, per-node
// events at Debug, each carrying the compile ID.
func WithLogger(logger *slog.Logger) Option {
	return func(c *compileConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
//
// Example:
//
//	prog, err := stratgraph.Compile(ctx, g, stratgraph.WithMetrics(true))
func WithMetrics(enabled bool) Option {
	return func(c *compileConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithTracing enables OpenTelemetry spans using the global tracer provider:
// one span per compilation and one child span per emitted node.
func WithTracing(enabled bool) Option {
	return func(c *compileConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithCompileID sets the identifier attached to logs and spans.
// If not set, a UUID is generated.
func WithCompileID(id string) Option {
	return func(c *compileConfig) {
		c.compileID = id
	}
}
