package stratgraph

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph/expr"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/observability"
)

// datetimePlaceholder is emitted when a node needs a datetime but has
// neither a connection, the current timestamp, nor a configured value.
const datetimePlaceholder = "YYYY-MM-DDTHH:mm:ss"

// emit lowers one node to code, wrapped in its emit span.
func (c *compiler) emit(n *Node) (code string, err error) {
	kind := string(n.Kind())
	spanCtx, span := c.cfg.spans.StartEmitSpan(c.traceCtx, n.ID, kind)
	parent := c.traceCtx
	c.traceCtx = spanCtx
	defer func() {
		c.traceCtx = parent
		c.cfg.spans.EndSpanWithError(span, err)
	}()

	code, err = c.lower(n)
	if err != nil {
		return "", err
	}

	if code != "" {
		c.emitted++
		c.cfg.metrics.RecordNodeEmitted(spanCtx, kind)
		observability.LogNodeEmitted(c.logger, n.ID, kind, strings.Count(code, "\n")+1)
	}
	return code, nil
}

// lower dispatches on the node's config type.
func (c *compiler) lower(n *Node) (string, error) {
	switch cfg := n.Config.(type) {
	case StrategyConfig:
		// Only reachable through an illegal edge into the root; it has no code.
		return "", nil
	case FetchShortlist:
		return c.emitFetchShortlist(n, cfg), nil
	case FetchShortlistPersistence:
		return c.emitFetchShortlistPersistence(n, cfg), nil
	case FetchCandles:
		return c.emitFetchCandles(n, cfg), nil
	case FetchQuote:
		return c.emitFetchQuote(n, cfg), nil
	case FetchDates:
		return c.emitNoArgs(n, CapFetchDates, "dates"), nil
	case FetchHolidays:
		return c.emitNoArgs(n, CapFetchHolidays, "holidays"), nil
	case PlaceOrder:
		return c.emitPlaceOrder(n, cfg), nil
	case ForEach:
		return c.emitForEach(n)
	case Conditional:
		return c.emitConditional(n, cfg)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownKind, n.Config)
	}
}

// bind records the expression of a node output, taking the value shape from
// the output's socket.
func (c *compiler) bind(n *Node, output, expression string) {
	shape := ShapeGeneric
	if p, ok := n.Output(output); ok {
		shape = p.Socket.Shape()
	}
	c.ctx.BindOutput(n.ID, output, Binding{Expr: expression, Shape: shape})
}

// input returns the expression feeding the node's input, or fallback.
func (c *compiler) input(n *Node, input, fallback string) string {
	return c.ctx.ResolveInput(c.conns, n.ID, input).TakeOr(Binding{Expr: fallback}).Expr
}

// datetime picks a datetime expression: the connected input if any, then the
// current timestamp, then the configured value, then the placeholder.
func (c *compiler) datetime(n *Node, input string, useCurrent bool, configured string) string {
	if input != "" {
		if b, err := c.ctx.ResolveInput(c.conns, n.ID, input).Take(); err == nil {
			return b.Expr
		}
	}
	if useCurrent {
		c.ctx.RequireCapability(CapCurrentTimestamp)
		return string(CapCurrentTimestamp)
	}
	if configured != "" {
		return expr.String(configured)
	}
	return expr.String(datetimePlaceholder)
}

type arg struct {
	name    string
	value   string
	comment string
}

func field(name, value string) arg {
	return arg{name: name, value: value}
}

// call renders "head({\n  name: value,\n...\n});".
func call(head string, args ...arg) string {
	var b strings.Builder
	b.WriteString(head)
	b.WriteString("({\n")
	for _, a := range args {
		fmt.Fprintf(&b, "  %s: %s,", a.name, a.value)
		if a.comment != "" {
			b.WriteString(" // " + a.comment)
		}
		b.WriteString("\n")
	}
	b.WriteString("});")
	return b.String()
}

func (c *compiler) emitFetchShortlist(n *Node, cfg FetchShortlist) string {
	c.ctx.RequireCapability(CapFetchShortlist)
	v := c.ctx.AllocateVariable("shortlist")
	c.bind(n, "results", v)

	return call("const "+v+" = await fetchShortlist",
		field("type", expr.String(string(cfg.ShortlistType))),
		field("datetime", c.datetime(n, "datetime", cfg.UseCurrentTimestamp, cfg.Datetime)),
	)
}

func (c *compiler) emitFetchShortlistPersistence(n *Node, cfg FetchShortlistPersistence) string {
	c.ctx.RequireCapability(CapFetchShortlistPersistence)
	v := c.ctx.AllocateVariable("persistence")
	c.bind(n, "results", v+"?.instruments ?? []")

	return call("const "+v+" = await fetchShortlistPersistence",
		field("type", expr.String(string(cfg.ShortlistType))),
		field("start_datetime", expr.String(cfg.StartDatetime)),
		field("end_datetime", expr.String(cfg.EndDatetime)),
	)
}

func (c *compiler) emitFetchCandles(n *Node, cfg FetchCandles) string {
	c.ctx.RequireCapability(CapFetchCandles)
	v := c.ctx.AllocateVariable("candles")
	c.bind(n, "candles", v)

	end := expr.String(cfg.EndDatetime)
	if cfg.UseCurrentTimestampAsEnd {
		c.ctx.RequireCapability(CapCurrentTimestamp)
		end = string(CapCurrentTimestamp)
	}

	return call("const "+v+" = await fetchCandles",
		field("symbol", c.input(n, "symbol", expr.String(cfg.Symbol))),
		field("interval", expr.String(string(cfg.Interval))),
		field("start_datetime", expr.String(cfg.StartDatetime)),
		field("end_datetime", end),
	)
}

func (c *compiler) emitFetchQuote(n *Node, cfg FetchQuote) string {
	c.ctx.RequireCapability(CapFetchQuote)
	v := c.ctx.AllocateVariable("quote")
	c.bind(n, "quote", v)

	return call("const "+v+" = await fetchQuote",
		field("symbol", c.input(n, "symbol", expr.String(cfg.Symbol))),
	)
}

// emitNoArgs lowers the parameterless fetches; the variable and the output
// share a name.
func (c *compiler) emitNoArgs(n *Node, capability Capability, output string) string {
	c.ctx.RequireCapability(capability)
	v := c.ctx.AllocateVariable(output)
	c.bind(n, output, v)
	return fmt.Sprintf("const %s = await %s();", v, capability)
}

func (c *compiler) emitPlaceOrder(n *Node, cfg PlaceOrder) string {
	c.ctx.RequireCapability(CapPlaceOrder)

	symbol := c.input(n, "nseSymbol", expr.String(cfg.NSESymbol))
	entry, entryErr := c.ctx.ResolveInput(c.conns, n.ID, "entryPrice").Take()
	datetime := c.datetime(n, "", cfg.UseCurrentTimestamp, cfg.Datetime)

	switch {
	case cfg.PriceMode == PricePercentage && entryErr == nil:
		return call("await placeOrder",
			field("nseSymbol", symbol),
			field("entryPrice", entry.Expr),
			field("stopLossPrice", expr.Scale(entry.Expr, expr.PercentFactor(cfg.StopLossPercent, expr.Below))),
			field("takeProfitPrice", expr.Scale(entry.Expr, expr.PercentFactor(cfg.TakeProfitPercent, expr.Above))),
			field("datetime", datetime),
		)
	case cfg.PriceMode == PriceManual:
		return call("await placeOrder",
			field("nseSymbol", symbol),
			field("entryPrice", expr.Number(cfg.EntryPrice)),
			field("stopLossPrice", expr.Number(cfg.StopLossPrice)),
			field("takeProfitPrice", expr.Number(cfg.TakeProfitPrice)),
			field("datetime", datetime),
		)
	default:
		return "// TODO: connect an entry price input to PlaceOrder node\n" + call("await placeOrder",
			field("nseSymbol", symbol),
			arg{name: "entryPrice", value: "0", comment: "wire entry price from upstream node"},
			field("stopLossPrice", "0"),
			field("takeProfitPrice", "0"),
			field("datetime", datetime),
		)
	}
}

func (c *compiler) emitForEach(n *Node) (string, error) {
	array := c.input(n, "array", "[]")
	item := c.ctx.AllocateVariable("item")
	c.bind(n, "item", item+".nseSymbol")

	body, err := c.walkCode(n.ID, "loopBody")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("for (const %s of %s ?? []) {\n%s\n}", item, array, expr.Indent(body, 2)), nil
}

func (c *compiler) emitConditional(n *Node, cfg Conditional) (string, error) {
	value := c.ctx.ResolveInput(c.conns, n.ID, "value").TakeOr(Binding{Expr: "null", Shape: ShapeGeneric})

	var access string
	switch value.Shape {
	case ShapeQuote:
		access = expr.OptionalField(value.Expr, "payload", cfg.Field)
	case ShapeCandle:
		access = expr.LastCandleField(value.Expr, cfg.Field)
	default:
		access = expr.OptionalField(value.Expr, cfg.Field)
	}

	op := cfg.Operator
	if !op.Valid() {
		op = expr.OpGreater
	}
	condition := expr.Compare(access, op, expr.Number(cfg.CompareValue))

	trueCode, err := c.walkCode(n.ID, "true")
	if err != nil {
		return "", err
	}
	falseCode, err := c.walkCode(n.ID, "false")
	if err != nil {
		return "", err
	}

	code := fmt.Sprintf("if (%s) {\n%s\n}", condition, expr.Indent(trueCode, 2))
	if strings.TrimSpace(falseCode) != "" {
		code += fmt.Sprintf(" else {\n%s\n}", expr.Indent(falseCode, 2))
	}
	return code, nil
}
