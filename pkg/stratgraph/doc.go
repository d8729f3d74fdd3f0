/*
Package stratgraph compiles visual trading-strategy graphs into strategy programs.

# Overview

A strategy is drawn as a directed graph of typed nodes: a StrategyConfig root,
data sources (shortlists, candles, quotes, dates, holidays), logic (ForEach,
Conditional) and actions (PlaceOrder). Control edges between exec sockets
define statement order; data edges carry values between nodes. The compiler
walks the control chain from the root and emits one linear program against
the strategy-runner SDK.

# Basic Usage

Build a graph through the editor operations, then generate:

	g := stratgraph.NewGraph()
	root, _ := g.AddNode(stratgraph.KindStrategyConfig, stratgraph.Position{})
	quote, _ := g.AddNode(stratgraph.KindFetchQuote, stratgraph.Position{X: 360})
	quote.Config = stratgraph.FetchQuote{Symbol: "RELIANCE"}

	if _, err := g.Connect(root.ID, "exec", quote.ID, "exec"); err != nil {
	    log.Fatal(err)
	}

	fmt.Print(stratgraph.Generate(g))

Generate never fails: a graph without a root, or with nothing connected to
it, yields a one-line comment instead of a program. Use Compile for the
error and the program metadata.

# Sockets

Connect rejects pairs whose sockets are not Compatible. Identical sockets
always connect; a shortlist item and a string convert both ways; exec only
connects to exec. Inputs accept a single connection.

# Control Flow

Ordinary nodes continue from their "exec" output. ForEach lowers its
"loopBody" chain inside a for-of loop and continues from "done". Conditional
lowers its "true" and "false" chains into if/else and ends the chain. A node
reached from both branches is emitted in both. Control flow that loops back
onto an output still being lowered is reported as a *CycleError.

# Value Shapes

Every output binding carries a Shape derived from its socket. A Conditional
reads quote values under payload, candle values from the last candle row,
and anything else directly.

# Observability

	prog, err := stratgraph.Compile(ctx, g,
	    stratgraph.WithLogger(logger),
	    stratgraph.WithMetrics(true),
	    stratgraph.WithTracing(true),
	)

Logging uses slog; metrics and spans use the global OpenTelemetry providers.
*/
package stratgraph
