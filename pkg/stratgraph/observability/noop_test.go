package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	assert.NotPanics(t, func() {
		m.RecordCompile(context.Background(), true, time.Second)
		m.RecordNodeEmitted(context.Background(), "ForEach")
	})
}

func TestNoopSpanManager(t *testing.T) {
	var sm SpanManager = NoopSpanManager{}
	ctx := context.Background()

	gotCtx, span := sm.StartCompileSpan(ctx, "c-1")
	assert.Equal(t, ctx, gotCtx, "noop must not derive a new context")
	assert.False(t, span.IsRecording())

	gotCtx, span = sm.StartEmitSpan(ctx, "n", "Conditional")
	assert.Equal(t, ctx, gotCtx)
	assert.False(t, span.IsRecording())

	assert.NotPanics(t, func() { sm.EndSpanWithError(span, errors.New("x")) })
}
