package stratgraph

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Connection is a directed edge from an output port to an input port.
// Edges between exec sockets carry control flow; all others carry data.
type Connection struct {
	ID           string
	Source       string
	SourceOutput string
	Target       string
	TargetInput  string
}

// Snapshot is the read-only view of a graph the compiler consumes.
// Nodes and Connections must return insertion order; lookups that find
// several candidates take the first one in that order.
type Snapshot interface {
	Nodes() []*Node
	Node(id string) (*Node, bool)
	Connections() []Connection
}

// Graph is the editable strategy graph: nodes in an arena keyed by ID plus a
// flat connection list.
//
// Edits and generation must be serialised by the caller. The lock only
// keeps individual calls consistent.
//
// Example:
//
//	g := stratgraph.NewGraph()
//	cfg, _ := g.AddNode(stratgraph.KindStrategyConfig, stratgraph.Position{})
//	quote, _ := g.AddNode(stratgraph.KindFetchQuote, stratgraph.Position{X: 300})
//	_, err := g.Connect(cfg.ID, "exec", quote.ID, "exec")
type Graph struct {
	mu          sync.RWMutex
	nodes       map[string]*Node
	order       []string
	connections []Connection
	newID       func() string
}

// Compile-time interface check.
var _ Snapshot = (*Graph)(nil)

// GraphOption configures a Graph.
type GraphOption func(*Graph)

// WithIDGenerator replaces the UUID generator used for new node and
// connection IDs.
func WithIDGenerator(fn func() string) GraphOption {
	return func(g *Graph) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// NewGraph creates an empty graph.
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		nodes: make(map[string]*Node),
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// AddNode creates a node of the given kind with default config at pos.
func (g *Graph) AddNode(kind Kind, pos Position) (*Node, error) {
	cfg, err := DefaultConfig(kind)
	if err != nil {
		return nil, err
	}
	n := &Node{ID: g.newID(), Position: pos, Config: cfg}
	if err := g.Insert(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Insert adds a fully built node.
func (g *Graph) Insert(n *Node) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("%w: node ID cannot be empty", ErrInvalidNode)
	}
	if n.Config == nil {
		return fmt.Errorf("%w: node %s has no config", ErrInvalidNode, n.ID)
	}
	if !sealed(n.Config) {
		return fmt.Errorf("%w: node %s has config of type %T", ErrInvalidNode, n.ID, n.Config)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return nil
}

// RemoveNode removes a node and every connection touching it.
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}

	kept := g.connections[:0]
	for _, c := range g.connections {
		if c.Source != id && c.Target != id {
			kept = append(kept, c)
		}
	}
	g.connections = kept

	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

// SetConfig replaces the config of a node. The kind cannot change.
func (g *Graph) SetConfig(id string, cfg NodeConfig) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	if cfg == nil || !sealed(cfg) || cfg.Kind() != n.Kind() {
		return fmt.Errorf("%w: node %s is a %s, got %T", ErrInvalidNode, id, n.Kind(), cfg)
	}
	n.Config = cfg
	return nil
}

// Clear removes every node and connection.
func (g *Graph) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[string]*Node)
	g.order = nil
	g.connections = nil
}

// Connect adds a connection after checking that both ports exist, that the
// sockets are compatible and that a single-connection input is still free.
// Rejections are *ConnectionError values wrapping the sentinel cause.
func (g *Graph) Connect(source, sourceOutput, target, targetInput string) (Connection, error) {
	return g.ConnectWithID("", source, sourceOutput, target, targetInput)
}

// ConnectWithID is Connect with a caller-chosen connection ID, used when
// restoring a saved graph. An empty id gets a generated one; an id already
// in use is rejected with ErrDuplicateConnection.
func (g *Graph) ConnectWithID(id, source, sourceOutput, target, targetInput string) (Connection, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	fail := func(err error) (Connection, error) {
		return Connection{}, &ConnectionError{
			Source:       source,
			SourceOutput: sourceOutput,
			Target:       target,
			TargetInput:  targetInput,
			Err:          err,
		}
	}

	src, ok := g.nodes[source]
	if !ok {
		return fail(fmt.Errorf("%w: %s", ErrNodeNotFound, source))
	}
	dst, ok := g.nodes[target]
	if !ok {
		return fail(fmt.Errorf("%w: %s", ErrNodeNotFound, target))
	}

	out, ok := src.Output(sourceOutput)
	if !ok {
		return fail(fmt.Errorf("%w: %s has no output %q", ErrPortNotFound, src.Kind(), sourceOutput))
	}
	in, ok := dst.Input(targetInput)
	if !ok {
		return fail(fmt.Errorf("%w: %s has no input %q", ErrPortNotFound, dst.Kind(), targetInput))
	}

	if !Compatible(out.Socket, in.Socket) {
		return fail(fmt.Errorf("%w: %s -> %s", ErrIncompatibleSockets, out.Socket, in.Socket))
	}

	if !in.Multiple {
		for _, c := range g.connections {
			if c.Target == target && c.TargetInput == targetInput {
				return fail(ErrInputOccupied)
			}
		}
	}

	if id == "" {
		id = g.newID()
	}
	for _, c := range g.connections {
		if c.ID == id {
			return fail(fmt.Errorf("%w: %s", ErrDuplicateConnection, id))
		}
	}

	c := Connection{
		ID:           id,
		Source:       source,
		SourceOutput: sourceOutput,
		Target:       target,
		TargetInput:  targetInput,
	}
	g.connections = append(g.connections, c)
	return c, nil
}

// addConnection appends a connection without any checks.
func (g *Graph) addConnection(c Connection) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if c.ID == "" {
		c.ID = g.newID()
	}
	g.connections = append(g.connections, c)
}

// Disconnect removes the connection with the given ID.
func (g *Graph) Disconnect(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, c := range g.connections {
		if c.ID == id {
			g.connections = append(g.connections[:i], g.connections[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
}

// Nodes returns the nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]*Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (*Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Connections returns the connections in insertion order.
func (g *Graph) Connections() []Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	conns := make([]Connection, len(g.connections))
	copy(conns, g.connections)
	return conns
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.order)
}
