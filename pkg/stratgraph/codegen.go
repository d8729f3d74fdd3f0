package stratgraph

import (
	"strconv"

	"github.com/moznion/go-optional"
)

// Capability is an SDK function made available to the strategy body.
type Capability string

// SDK capabilities in the order they are destructured in the program.
const (
	CapFetchShortlist            Capability = "fetchShortlist"
	CapFetchShortlistPersistence Capability = "fetchShortlistPersistence"
	CapFetchCandles              Capability = "fetchCandles"
	CapFetchQuote                Capability = "fetchQuote"
	CapFetchDates                Capability = "fetchDates"
	CapFetchHolidays             Capability = "fetchHolidays"
	CapPlaceOrder                Capability = "placeOrder"
	CapCurrentTimestamp          Capability = "currentTimestamp"
)

// Capabilities returns every capability in canonical order.
func Capabilities() []Capability {
	return []Capability{
		CapFetchShortlist,
		CapFetchShortlistPersistence,
		CapFetchCandles,
		CapFetchQuote,
		CapFetchDates,
		CapFetchHolidays,
		CapPlaceOrder,
		CapCurrentTimestamp,
	}
}

// Binding is the expression a node output evaluates to in the generated
// program, together with the shape of the value it produces.
type Binding struct {
	Expr  string
	Shape Shape
}

type outputKey struct {
	node   string
	output string
}

// Context is the mutable state of one compilation: variable counters,
// output bindings and the set of capabilities the body uses.
// A Context is never shared between compilations.
type Context struct {
	counters     map[string]int
	bindings     map[outputKey]Binding
	capabilities map[Capability]bool
}

// NewContext returns an empty Context.
func NewContext() *Context {
	return &Context{
		counters:     make(map[string]int),
		bindings:     make(map[outputKey]Binding),
		capabilities: make(map[Capability]bool),
	}
}

// AllocateVariable returns a fresh identifier for prefix: the prefix itself
// on first use, then prefix2, prefix3 and so on.
func (c *Context) AllocateVariable(prefix string) string {
	c.counters[prefix]++
	n := c.counters[prefix]
	if n == 1 {
		return prefix
	}
	return prefix + strconv.Itoa(n)
}

// BindOutput records the expression for a node output. A later binding for
// the same output replaces the earlier one.
func (c *Context) BindOutput(nodeID, output string, b Binding) {
	c.bindings[outputKey{nodeID, output}] = b
}

// ResolveOutput returns the binding for a node output, if one was recorded.
func (c *Context) ResolveOutput(nodeID, output string) optional.Option[Binding] {
	b, ok := c.bindings[outputKey{nodeID, output}]
	if !ok {
		return optional.None[Binding]()
	}
	return optional.Some(b)
}

// ResolveInput follows the first of conns into the node's input and
// returns the binding of the output it comes from. It is absent when the
// input is unconnected or the upstream output has not been bound yet.
func (c *Context) ResolveInput(conns []Connection, nodeID, input string) optional.Option[Binding] {
	for _, conn := range conns {
		if conn.Target == nodeID && conn.TargetInput == input {
			return c.ResolveOutput(conn.Source, conn.SourceOutput)
		}
	}
	return optional.None[Binding]()
}

// RequireCapability marks a capability as used by the body.
func (c *Context) RequireCapability(capability Capability) {
	c.capabilities[capability] = true
}

// Capabilities returns the used capabilities in canonical order.
func (c *Context) Capabilities() []Capability {
	var used []Capability
	for _, capability := range Capabilities() {
		if c.capabilities[capability] {
			used = append(used, capability)
		}
	}
	return used
}
