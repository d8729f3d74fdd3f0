package stratgraph

import (
	"context"
	"log/slog"
	"strings"
)

// compiler lowers one snapshot. It is created per compilation.
type compiler struct {
	graph Snapshot
	// conns is the snapshot's connection list, read once.
	conns  []Connection
	ctx    *Context
	cfg    *compileConfig
	logger *slog.Logger
	// traceCtx carries the compile span for child emit spans.
	traceCtx context.Context

	// active holds the control outputs currently being followed on the
	// walk path. Entries are removed when the walk that added them returns,
	// so sibling branches may reach the same node independently.
	active  map[outputKey]bool
	emitted int
}

func newCompiler(traceCtx context.Context, g Snapshot, cfg *compileConfig, logger *slog.Logger) *compiler {
	return &compiler{
		graph:    g,
		conns:    g.Connections(),
		ctx:      NewContext(),
		cfg:      cfg,
		logger:   logger,
		traceCtx: traceCtx,
		active:   make(map[outputKey]bool),
	}
}

// walk lowers the control chain leaving the node's output and returns one
// statement per emitted node. It stops at the first output with no outgoing
// connection and after a Conditional, whose branches are lowered inside its
// own emitter.
func (c *compiler) walk(nodeID, output string) ([]string, error) {
	var (
		stmts  []string
		pushed []outputKey
	)
	defer func() {
		for _, k := range pushed {
			delete(c.active, k)
		}
	}()

	for {
		key := outputKey{nodeID, output}
		if c.active[key] {
			return nil, &CycleError{NodeID: nodeID, Output: output}
		}
		c.active[key] = true
		pushed = append(pushed, key)

		next, ok := c.next(nodeID, output)
		if !ok {
			return stmts, nil
		}

		code, err := c.emit(next)
		if err != nil {
			return nil, err
		}
		if code != "" {
			stmts = append(stmts, code)
		}

		cont, ok := continuation(next)
		if !ok {
			return stmts, nil
		}
		nodeID, output = next.ID, cont
	}
}

// walkCode is walk with the statements joined by blank lines.
func (c *compiler) walkCode(nodeID, output string) (string, error) {
	stmts, err := c.walk(nodeID, output)
	if err != nil {
		return "", err
	}
	return joinStatements(stmts), nil
}

// next returns the target of the first connection leaving the output.
// A connection to a node missing from the snapshot ends the chain.
func (c *compiler) next(nodeID, output string) (*Node, bool) {
	for _, conn := range c.conns {
		if conn.Source == nodeID && conn.SourceOutput == output {
			return c.graph.Node(conn.Target)
		}
	}
	return nil, false
}

// continuation returns the control output a chain follows after n.
func continuation(n *Node) (string, bool) {
	switch n.Config.(type) {
	case ForEach:
		return "done", true
	case Conditional:
		return "", false
	default:
		return OutputExec, true
	}
}

func joinStatements(stmts []string) string {
	return strings.Join(stmts, "\n\n")
}
