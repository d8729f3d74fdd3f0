package stratgraph

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// Test helpers shared across the package tests.

// seqIDs returns a generator yielding id1, id2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id" + strconv.Itoa(n)
	}
}

// newTestGraph returns a graph with deterministic IDs.
func newTestGraph() *Graph {
	return NewGraph(WithIDGenerator(seqIDs()))
}

// add inserts a node with the given ID and config.
func add(t *testing.T, g *Graph, id string, cfg NodeConfig) *Node {
	t.Helper()
	n := &Node{ID: id, Config: cfg}
	require.NoError(t, g.Insert(n))
	return n
}

// connect adds a checked connection.
func connect(t *testing.T, g *Graph, src *Node, out string, dst *Node, in string) Connection {
	t.Helper()
	c, err := g.Connect(src.ID, out, dst.ID, in)
	require.NoError(t, err)
	return c
}

// link adds a connection without socket or occupancy checks.
func link(g *Graph, src *Node, out string, dst *Node, in string) {
	g.addConnection(Connection{Source: src.ID, SourceOutput: out, Target: dst.ID, TargetInput: in})
}

// root inserts a StrategyConfig node with default settings.
func root(t *testing.T, g *Graph) *Node {
	t.Helper()
	cfg, err := DefaultConfig(KindStrategyConfig)
	require.NoError(t, err)
	return add(t, g, "config", cfg)
}

// quoteNode inserts a FetchQuote node for symbol.
func quoteNode(t *testing.T, g *Graph, id, symbol string) *Node {
	t.Helper()
	return add(t, g, id, FetchQuote{Symbol: symbol})
}

// defaultPlaceOrder returns the catalogue defaults for PlaceOrder.
func defaultPlaceOrder(t *testing.T) PlaceOrder {
	t.Helper()
	cfg, err := DefaultConfig(KindPlaceOrder)
	require.NoError(t, err)
	return cfg.(PlaceOrder)
}

// body compiles g and returns the walked body without the program wrapper.
func body(t *testing.T, g *Graph) string {
	t.Helper()
	r, _, ok := findRoot(g)
	require.True(t, ok, "graph has no StrategyConfig")

	cfg := defaultCompileConfig()
	c := newCompiler(context.Background(), g, &cfg, nil)
	c.ctx.RequireCapability(CapCurrentTimestamp)
	c.bind(r, "currentTimestamp", "currentTimestamp")

	code, err := c.walkCode(r.ID, OutputExec)
	require.NoError(t, err)
	return code
}

// mustCompile compiles g and fails the test on error.
func mustCompile(t *testing.T, g Snapshot, opts ...Option) *Program {
	t.Helper()
	prog, err := Compile(context.Background(), g, opts...)
	require.NoError(t, err)
	require.NotNil(t, prog)
	return prog
}
