package stratgraph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph/expr"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/observability"
)

// momentumGraph builds a shortlist scan that buys gainers above a price.
func momentumGraph(t *testing.T) *Graph {
	t.Helper()
	g := newTestGraph()
	r := add(t, g, "config", StrategyConfig{
		StartTime:       "2026-01-05T09:15:00",
		EndTime:         "2026-01-05T15:30:00",
		IntervalMinutes: 1,
		Name:            "Momentum",
		Tags:            []string{"nse", "intraday"},
	})
	s := add(t, g, "shortlist", FetchShortlist{ShortlistType: ShortlistTopGainers, UseCurrentTimestamp: true})
	loop := add(t, g, "loop", ForEach{})
	q := quoteNode(t, g, "quote", "")
	cond := add(t, g, "cond", Conditional{Field: "last_price", Operator: expr.OpGreater, CompareValue: 100})
	order := add(t, g, "order", defaultPlaceOrder(t))

	connect(t, g, r, "exec", s, "exec")
	connect(t, g, s, "exec", loop, "exec")
	connect(t, g, s, "results", loop, "array")
	connect(t, g, loop, "loopBody", q, "exec")
	connect(t, g, loop, "item", q, "symbol")
	connect(t, g, q, "exec", cond, "exec")
	connect(t, g, q, "quote", cond, "value")
	connect(t, g, cond, "true", order, "exec")
	connect(t, g, loop, "item", order, "nseSymbol")
	return g
}

const momentumProgram = `import { ganaka } from "@ganaka/sdk";

await ganaka({
  fn: async ({ fetchShortlist, fetchQuote, placeOrder, currentTimestamp }) => {
    const shortlist = await fetchShortlist({
      type: "TOP_GAINERS",
      datetime: currentTimestamp,
    });

    for (const item of shortlist ?? []) {
      const quote = await fetchQuote({
        symbol: item.nseSymbol,
      });

      if (quote?.payload?.last_price > 100) {
        // TODO: connect an entry price input to PlaceOrder node
        await placeOrder({
          nseSymbol: item.nseSymbol,
          entryPrice: 0, // wire entry price from upstream node
          stopLossPrice: 0,
          takeProfitPrice: 0,
          datetime: currentTimestamp,
        });
      }
    }
  },
  startTime: "2026-01-05T09:15:00",
  endTime: "2026-01-05T15:30:00",
  intervalMinutes: 1,
  name: "Momentum",
  tags: ["nse","intraday"],
});
`

func TestCompile_FullProgram(t *testing.T) {
	prog := mustCompile(t, momentumGraph(t), WithCompileID("c-1"))

	assert.Equal(t, momentumProgram, prog.Source)
	assert.Equal(t, []Capability{CapFetchShortlist, CapFetchQuote, CapPlaceOrder, CapCurrentTimestamp}, prog.Capabilities)
	assert.Equal(t, "config", prog.ConfigNodeID)
	assert.Equal(t, 2, prog.Statements)
	assert.Equal(t, 5, prog.NodesEmitted)
	assert.Equal(t, "c-1", prog.CompileID)
}

func TestCompile_MinimalProgram(t *testing.T) {
	g := newTestGraph()
	r := root(t, g)
	q := quoteNode(t, g, "q", "RELIANCE")
	connect(t, g, r, "exec", q, "exec")

	want := `import { ganaka } from "@ganaka/sdk";

await ganaka({
  fn: async ({ fetchQuote, currentTimestamp }) => {
    const quote = await fetchQuote({
      symbol: "RELIANCE",
    });
  },
  startTime: "2026-01-05T09:15:00",
  endTime: "2026-01-05T15:30:00",
  intervalMinutes: 1,
});
`
	assert.Equal(t, want, Generate(g))
}

func TestCompile_Settings(t *testing.T) {
	tests := []struct {
		name     string
		settings StrategyConfig
		want     []string
		absent   []string
	}{
		{
			name:     "interval",
			settings: StrategyConfig{StartTime: "2026-02-02T09:30:00", EndTime: "2026-02-02T15:00:00", IntervalMinutes: 15},
			want:     []string{`startTime: "2026-02-02T09:30:00",`, `endTime: "2026-02-02T15:00:00",`, "intervalMinutes: 15,\n});"},
			absent:   []string{"name:", "tags:"},
		},
		{
			name:     "name only",
			settings: StrategyConfig{IntervalMinutes: 5, Name: "Gap ${up}"},
			want:     []string{"intervalMinutes: 5,\n  name: \"Gap ${up}\",\n});"},
			absent:   []string{"tags:"},
		},
		{
			name:     "tags only",
			settings: StrategyConfig{IntervalMinutes: 5, Tags: []string{"a"}},
			want:     []string{"intervalMinutes: 5,\n  tags: [\"a\"],\n});"},
			absent:   []string{"name:"},
		},
		{
			name:     "empty tags omitted",
			settings: StrategyConfig{IntervalMinutes: 5, Tags: []string{}},
			absent:   []string{"tags:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph()
			r := add(t, g, "config", tt.settings)
			d := add(t, g, "d", FetchDates{})
			connect(t, g, r, "exec", d, "exec")

			src := Generate(g)
			for _, w := range tt.want {
				assert.Contains(t, src, w)
			}
			for _, a := range tt.absent {
				assert.NotContains(t, src, a)
			}
		})
	}
}

func TestCompile_Diagnostics(t *testing.T) {
	t.Run("empty graph", func(t *testing.T) {
		g := newTestGraph()

		_, err := Compile(context.Background(), g)
		assert.ErrorIs(t, err, ErrNoConfigNode)
		assert.Equal(t, DiagnosticNoConfig, Generate(g))
	})

	t.Run("no config node", func(t *testing.T) {
		g := newTestGraph()
		a := quoteNode(t, g, "a", "TCS")
		d := add(t, g, "d", FetchDates{})
		connect(t, g, a, "exec", d, "exec")

		assert.Equal(t, "// Error: No Strategy Config node found. Add one to define your strategy.", Generate(g))
	})

	t.Run("nothing connected", func(t *testing.T) {
		g := newTestGraph()
		root(t, g)
		quoteNode(t, g, "q", "TCS")

		_, err := Compile(context.Background(), g)
		assert.ErrorIs(t, err, ErrEmptyChain)
		assert.Equal(t, "// No nodes connected to Strategy Config. Connect nodes to build your strategy.", Generate(g))
	})

	t.Run("only data edges from root", func(t *testing.T) {
		g := newTestGraph()
		r := root(t, g)
		s := add(t, g, "s", FetchShortlist{ShortlistType: ShortlistTopGainers})
		connect(t, g, r, "currentTimestamp", s, "datetime")

		assert.Equal(t, DiagnosticEmptyChain, Generate(g))
	})
}

func TestDiagnostic_Other(t *testing.T) {
	assert.Equal(t, "// Error: boom", Diagnostic(errors.New("boom")))
	assert.Equal(t,
		`// Error: control-flow cycle detected at node n1 (output "done").`,
		Diagnostic(&CycleError{NodeID: "n1", Output: "done"}))
}

// TestCompile_FirstConfigIsRoot checks a second StrategyConfig is ignored.
func TestCompile_FirstConfigIsRoot(t *testing.T) {
	g := newTestGraph()
	first := add(t, g, "first", StrategyConfig{IntervalMinutes: 1})
	second := add(t, g, "second", StrategyConfig{IntervalMinutes: 30})
	a := add(t, g, "a", FetchDates{})
	b := add(t, g, "b", FetchHolidays{})
	connect(t, g, first, "exec", a, "exec")
	connect(t, g, second, "exec", b, "exec")

	prog := mustCompile(t, g)

	assert.Equal(t, "first", prog.ConfigNodeID)
	assert.Contains(t, prog.Source, "fetchDates()")
	assert.NotContains(t, prog.Source, "fetchHolidays")
	assert.Contains(t, prog.Source, "intervalMinutes: 1,")
}

// TestCompile_CurrentTimestampAlwaysAvailable checks currentTimestamp is
// destructured even when no emitter asked for it.
func TestCompile_CurrentTimestampAlwaysAvailable(t *testing.T) {
	g := newTestGraph()
	r := root(t, g)
	d := add(t, g, "d", FetchDates{})
	connect(t, g, r, "exec", d, "exec")

	prog := mustCompile(t, g)
	assert.Equal(t, []Capability{CapFetchDates, CapCurrentTimestamp}, prog.Capabilities)
	assert.Contains(t, prog.Source, "fn: async ({ fetchDates, currentTimestamp }) => {")
}

// TestCompile_CapabilityOrderIndependentOfVisits places the order first and
// fetches afterwards, inside both branches of a conditional.
func TestCompile_CapabilityOrderIndependentOfVisits(t *testing.T) {
	g := newTestGraph()
	r := root(t, g)
	order := add(t, g, "order", defaultPlaceOrder(t))
	cond := add(t, g, "cond", Conditional{Field: "last_price", Operator: expr.OpGreater, CompareValue: 100})
	q := quoteNode(t, g, "q", "TCS")
	d := add(t, g, "d", FetchDates{})
	connect(t, g, r, "exec", order, "exec")
	connect(t, g, order, "exec", cond, "exec")
	connect(t, g, cond, "true", q, "exec")
	connect(t, g, cond, "false", d, "exec")

	prog := mustCompile(t, g)

	assert.Equal(t, []Capability{CapFetchQuote, CapFetchDates, CapPlaceOrder, CapCurrentTimestamp}, prog.Capabilities)
	assert.Contains(t, prog.Source, "fn: async ({ fetchQuote, fetchDates, placeOrder, currentTimestamp }) => {")
	assert.Less(t, strings.Index(prog.Source, "await placeOrder("), strings.Index(prog.Source, "await fetchQuote("))
}

func TestCompile_Deterministic(t *testing.T) {
	g := momentumGraph(t)

	first := Generate(g)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Generate(g))
	}
}

func TestCompile_DoesNotModifyGraph(t *testing.T) {
	g := momentumGraph(t)
	nodes := g.Nodes()
	conns := g.Connections()

	_ = Generate(g)

	assert.Equal(t, nodes, g.Nodes())
	assert.Equal(t, conns, g.Connections())
}

// TestCompile_ConcurrentSnapshots checks independent compilations of one
// graph do not interfere.
func TestCompile_ConcurrentSnapshots(t *testing.T) {
	g := momentumGraph(t)

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Generate(g)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, momentumProgram, r)
	}
}

func TestCompile_NilContext(t *testing.T) {
	g := momentumGraph(t)

	//nolint:staticcheck // nil context is accepted
	prog, err := Compile(nil, g)
	require.NoError(t, err)
	assert.NotEmpty(t, prog.CompileID)
}

// logHandler captures log records, keeping attributes added with With.
type logHandler struct {
	mu    *sync.Mutex
	buf   *bytes.Buffer
	attrs []slog.Attr
}

func newLogHandler() *logHandler {
	return &logHandler{mu: &sync.Mutex{}, buf: &bytes.Buffer{}}
}

func (h *logHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *logHandler) Handle(_ context.Context, r slog.Record) error {
	data := map[string]any{"level": r.Level.String(), "msg": r.Message}
	for _, a := range h.attrs {
		data[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		data[a.Key] = a.Value.Any()
		return true
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	return json.NewEncoder(h.buf).Encode(data)
}

func (h *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &logHandler{mu: h.mu, buf: h.buf, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *logHandler) WithGroup(string) slog.Handler { return h }

func (h *logHandler) records() []map[string]any {
	h.mu.Lock()
	defer h.mu.Unlock()

	var records []map[string]any
	for _, line := range bytes.Split(h.buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err == nil {
			records = append(records, m)
		}
	}
	return records
}

func TestCompile_WithLogger(t *testing.T) {
	h := newLogHandler()

	mustCompile(t, momentumGraph(t), WithLogger(slog.New(h)), WithCompileID("log-run"))

	var started, completed bool
	var emitted []string
	for _, r := range h.records() {
		assert.Equal(t, "log-run", r["compile_id"])
		switch r["msg"] {
		case "strategy compile starting":
			started = true
			assert.EqualValues(t, 6, r["nodes"])
			assert.EqualValues(t, 9, r["connections"])
		case "strategy compile completed":
			completed = true
			assert.EqualValues(t, 5, r["nodes_emitted"])
		case "node emitted":
			emitted = append(emitted, r["node_id"].(string))
		}
	}

	assert.True(t, started, "expected 'strategy compile starting' log")
	assert.True(t, completed, "expected 'strategy compile completed' log")
	// Nested nodes are logged before the node that encloses them.
	assert.Equal(t, []string{"shortlist", "quote", "order", "cond", "loop"}, emitted)
}

func TestCompile_WithLogger_Error(t *testing.T) {
	h := newLogHandler()

	g := newTestGraph()
	root(t, g)
	_, err := Compile(context.Background(), g, WithLogger(slog.New(h)))
	require.ErrorIs(t, err, ErrEmptyChain)

	var failed bool
	for _, r := range h.records() {
		if r["msg"] == "strategy compile failed" {
			failed = true
			assert.Equal(t, "WARN", r["level"])
			assert.Equal(t, ErrEmptyChain.Error(), r["error"])
		}
		assert.NotEqual(t, "strategy compile completed", r["msg"])
	}
	assert.True(t, failed, "expected 'strategy compile failed' log")
}

// recorder captures metric and span calls.
type recorder struct {
	mu       sync.Mutex
	compiles []bool
	emitted  []string
	spans    []string
	errSpans int
}

func (r *recorder) RecordCompile(_ context.Context, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.compiles = append(r.compiles, success)
}

func (r *recorder) RecordNodeEmitted(_ context.Context, kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emitted = append(r.emitted, kind)
}

func (r *recorder) StartCompileSpan(ctx context.Context, compileID string) (context.Context, trace.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, "compile:"+compileID)
	return ctx, noop.Span{}
}

func (r *recorder) StartEmitSpan(ctx context.Context, nodeID, kind string) (context.Context, trace.Span) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spans = append(r.spans, "emit:"+kind+":"+nodeID)
	return ctx, noop.Span{}
}

func (r *recorder) EndSpanWithError(_ trace.Span, err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errSpans++
}

var (
	_ observability.MetricsRecorder = (*recorder)(nil)
	_ observability.SpanManager     = (*recorder)(nil)
)

// withRecorder routes metrics and spans to r.
func withRecorder(r *recorder) Option {
	return func(c *compileConfig) {
		c.metrics = r
		c.spans = r
	}
}

func TestCompile_MetricsAndSpans(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph()
	r := root(t, g)
	q := quoteNode(t, g, "q", "TCS")
	d := add(t, g, "d", FetchDates{})
	connect(t, g, r, "exec", q, "exec")
	connect(t, g, q, "exec", d, "exec")

	mustCompile(t, g, withRecorder(rec), WithCompileID("m-1"))

	assert.Equal(t, []bool{true}, rec.compiles)
	assert.Equal(t, []string{"FetchQuote", "FetchDates"}, rec.emitted)
	assert.Equal(t, []string{"compile:m-1", "emit:FetchQuote:q", "emit:FetchDates:d"}, rec.spans)
	assert.Zero(t, rec.errSpans)
}

func TestCompile_MetricsAndSpans_Cycle(t *testing.T) {
	rec := &recorder{}
	g := newTestGraph()
	r := root(t, g)
	loop := add(t, g, "loop", ForEach{})
	connect(t, g, r, "exec", loop, "exec")
	link(g, loop, "loopBody", loop, "exec")

	_, err := Compile(context.Background(), g, withRecorder(rec))
	require.ErrorIs(t, err, ErrControlCycle)

	assert.Equal(t, []bool{false}, rec.compiles)
	assert.Empty(t, rec.emitted)
	// Both nested emit spans and the compile span end with the error.
	assert.Equal(t, 3, rec.errSpans)
}

func TestOptions(t *testing.T) {
	cfg := defaultCompileConfig()
	assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
	assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)

	for _, opt := range []Option{WithMetrics(true), WithTracing(true), WithCompileID("x")} {
		opt(&cfg)
	}
	assert.NotEqual(t, observability.NoopMetrics{}, cfg.metrics)
	assert.NotEqual(t, observability.NoopSpanManager{}, cfg.spans)
	assert.Equal(t, "x", cfg.compileID)

	WithMetrics(false)(&cfg)
	WithTracing(false)(&cfg)
	assert.IsType(t, observability.NoopMetrics{}, cfg.metrics)
	assert.IsType(t, observability.NoopSpanManager{}, cfg.spans)
}
