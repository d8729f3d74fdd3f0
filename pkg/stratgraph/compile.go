package stratgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/expr"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/observability"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/template"
)

// Diagnostics returned by Generate in place of a program.
const (
	DiagnosticNoConfig   = "// Error: No Strategy Config node found. Add one to define your strategy."
	DiagnosticEmptyChain = "// No nodes connected to Strategy Config. Connect nodes to build your strategy."
)

// programTemplate is the skeleton every strategy is rendered into. The
// optional name and tags lines carry their own leading newline.
const programTemplate = `import { ganaka } from "@ganaka/sdk";

await ganaka({
  fn: async ({ ${capabilities} }) => {
${body}
  },
  startTime: ${startTime},
  endTime: ${endTime},
  intervalMinutes: ${intervalMinutes},${nameLine}${tagsLine}
});
`

var programExpander = template.NewExpander()

// Program is a compiled strategy.
type Program struct {
	// Source is the program text, ending in a newline.
	Source string
	// Capabilities are the SDK functions the body uses, in canonical order.
	Capabilities []Capability
	// ConfigNodeID is the StrategyConfig node the program was compiled from.
	ConfigNodeID string
	// Statements is the number of top-level statements in the body.
	Statements int
	// NodesEmitted counts nodes lowered to code, including nested ones.
	NodesEmitted int
	// CompileID identifies this compilation in logs and spans.
	CompileID string
}

// Compile lowers a graph snapshot to a program.
//
// The first StrategyConfig node in insertion order is the root; its Start
// output is walked and every reached node is emitted. Compile returns
// ErrNoConfigNode without a root, ErrEmptyChain when the walk emits nothing,
// and a *CycleError when control flow loops. The snapshot is never modified.
//
// Example:
//
//	prog, err := stratgraph.Compile(ctx, g, stratgraph.WithLogger(logger))
//	if err != nil {
//	    return stratgraph.Diagnostic(err)
//	}
//	fmt.Print(prog.Source)
func Compile(ctx context.Context, g Snapshot, opts ...Option) (prog *Program, err error) {
	cfg := defaultCompileConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.compileID == "" {
		cfg.compileID = uuid.New().String()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger := observability.EnrichLogger(cfg.logger, cfg.compileID)
	start := time.Now()
	elapsed := observability.TimedOperation()
	observability.LogCompileStart(logger, len(g.Nodes()), len(g.Connections()))

	ctx, span := cfg.spans.StartCompileSpan(ctx, cfg.compileID)
	defer func() {
		cfg.spans.EndSpanWithError(span, err)
		cfg.metrics.RecordCompile(ctx, err == nil, time.Since(start))
		if err != nil {
			observability.LogCompileError(logger, err, elapsed())
			return
		}
		names := make([]string, len(prog.Capabilities))
		for i, c := range prog.Capabilities {
			names[i] = string(c)
		}
		observability.LogCompileComplete(logger, elapsed(), prog.NodesEmitted, names)
	}()

	root, settings, ok := findRoot(g)
	if !ok {
		return nil, ErrNoConfigNode
	}

	c := newCompiler(ctx, g, &cfg, logger)
	c.ctx.RequireCapability(CapCurrentTimestamp)
	c.bind(root, "currentTimestamp", string(CapCurrentTimestamp))

	stmts, err := c.walk(root.ID, OutputExec)
	if err != nil {
		return nil, err
	}
	body := joinStatements(stmts)
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyChain
	}

	caps := c.ctx.Capabilities()
	source, err := render(settings, body, caps)
	if err != nil {
		return nil, err
	}

	return &Program{
		Source:       source,
		Capabilities: caps,
		ConfigNodeID: root.ID,
		Statements:   len(stmts),
		NodesEmitted: c.emitted,
		CompileID:    cfg.compileID,
	}, nil
}

// Generate compiles g and returns the program text, or a one-line comment
// explaining why no program could be produced. It never fails.
func Generate(g Snapshot, opts ...Option) string {
	prog, err := Compile(context.Background(), g, opts...)
	if err != nil {
		return Diagnostic(err)
	}
	return prog.Source
}

// Diagnostic renders a compile error as the comment Generate returns.
func Diagnostic(err error) string {
	var cycle *CycleError
	switch {
	case errors.Is(err, ErrNoConfigNode):
		return DiagnosticNoConfig
	case errors.Is(err, ErrEmptyChain):
		return DiagnosticEmptyChain
	case errors.As(err, &cycle):
		return fmt.Sprintf("// Error: control-flow cycle detected at node %s (output %q).", cycle.NodeID, cycle.Output)
	default:
		return "// Error: " + err.Error()
	}
}

// findRoot returns the first StrategyConfig node in insertion order.
func findRoot(g Snapshot) (*Node, StrategyConfig, bool) {
	for _, n := range g.Nodes() {
		if settings, ok := n.Config.(StrategyConfig); ok {
			return n, settings, true
		}
	}
	return nil, StrategyConfig{}, false
}

// render fills the program skeleton.
func render(settings StrategyConfig, body string, caps []Capability) (string, error) {
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = string(c)
	}

	var nameLine, tagsLine string
	if settings.Name != "" {
		nameLine = "\n  name: " + expr.String(settings.Name) + ","
	}
	if len(settings.Tags) > 0 {
		tagsLine = "\n  tags: " + expr.StringArray(settings.Tags) + ","
	}

	source, err := programExpander.Expand(programTemplate, map[string]any{
		"capabilities":    strings.Join(names, ", "),
		"body":            expr.Indent(body, 4),
		"startTime":       expr.String(settings.StartTime),
		"endTime":         expr.String(settings.EndTime),
		"intervalMinutes": expr.Int(settings.IntervalMinutes),
		"nameLine":        nameLine,
		"tagsLine":        tagsLine,
	})
	if err != nil {
		return "", fmt.Errorf("render program: %w", err)
	}
	return source, nil
}
