package stratgraph

import (
	"errors"
	"fmt"
)

// Sentinel errors for graph editing.
var (
	// ErrUnknownKind indicates a node kind outside the catalogue.
	ErrUnknownKind = errors.New("unknown node kind")

	// ErrNodeNotFound indicates an operation referenced a node not in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidNode indicates a node without an ID or config was inserted.
	ErrInvalidNode = errors.New("invalid node")

	// ErrDuplicateNode indicates a node ID is already in use.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrPortNotFound indicates a connection named a port the node does not have.
	ErrPortNotFound = errors.New("port not found")

	// ErrIncompatibleSockets indicates the source socket cannot feed the target socket.
	ErrIncompatibleSockets = errors.New("incompatible sockets")

	// ErrInputOccupied indicates a single-connection input already has a connection.
	ErrInputOccupied = errors.New("input already connected")

	// ErrConnectionNotFound indicates Disconnect was called with an unknown connection ID.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrDuplicateConnection indicates a connection ID is already in use.
	ErrDuplicateConnection = errors.New("duplicate connection ID")
)

// Sentinel errors for compilation.
var (
	// ErrNoConfigNode indicates the graph has no StrategyConfig node.
	ErrNoConfigNode = errors.New("no strategy config node")

	// ErrEmptyChain indicates nothing is connected to the StrategyConfig start output.
	ErrEmptyChain = errors.New("no nodes connected to strategy config")

	// ErrControlCycle indicates control flow loops back onto itself.
	ErrControlCycle = errors.New("control-flow cycle")
)

// ConnectionError wraps a rejected connection with its endpoints.
type ConnectionError struct {
	Source       string
	SourceOutput string
	Target       string
	TargetInput  string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s.%s -> %s.%s: %v", e.Source, e.SourceOutput, e.Target, e.TargetInput, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// CycleError reports the control output whose edge closed a cycle.
type CycleError struct {
	// NodeID is the node whose control output was re-entered.
	NodeID string
	// Output is the control output key.
	Output string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("control-flow cycle at node %s (output %q)", e.NodeID, e.Output)
}

// Unwrap returns ErrControlCycle for errors.Is support.
func (e *CycleError) Unwrap() error {
	return ErrControlCycle
}
