// Package observability provides structured logging, metrics and tracing
// for strategy compilation.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds the compile ID to a logger.
//
// Example:
//
//	enriched := EnrichLogger(logger, "c-123")
//	enriched.Info("walking") // includes compile_id
func EnrichLogger(logger *slog.Logger, compileID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(slog.String("compile_id", compileID))
}

// LogCompileStart logs the start of a compilation.
func LogCompileStart(logger *slog.Logger, nodeCount, connectionCount int) {
	if logger == nil {
		return
	}
	logger.Info("strategy compile starting",
		slog.Int("nodes", nodeCount),
		slog.Int("connections", connectionCount),
	)
}

// LogCompileComplete logs a successful compilation.
func LogCompileComplete(logger *slog.Logger, durationMs float64, nodesEmitted int, capabilities []string) {
	if logger == nil {
		return
	}
	logger.Info("strategy compile completed",
		slog.Float64("duration_ms", durationMs),
		slog.Int("nodes_emitted", nodesEmitted),
		slog.Any("capabilities", capabilities),
	)
}

// LogCompileError logs a failed compilation.
func LogCompileError(logger *slog.Logger, err error, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Warn("strategy compile failed",
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogNodeEmitted logs one node lowered to code.
func LogNodeEmitted(logger *slog.Logger, nodeID, kind string, lines int) {
	if logger == nil {
		return
	}
	logger.Debug("node emitted",
		slog.String("node_id", nodeID),
		slog.String("kind", kind),
		slog.Int("lines", lines),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
