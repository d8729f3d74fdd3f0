package document

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/config"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/expr"
)

// FieldError reports a node config value that could not be used.
type FieldError struct {
	NodeID string
	Field  string
	Err    error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("node %s: %v", e.NodeID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Build validates the document and replays it into a new graph: nodes are
// inserted in order and connections go through ConnectWithID, so the same
// socket and occupancy rules apply as in the editor.
//
// Every rejected node or connection is reported; the returned error joins
// them and the graph holds everything that was accepted.
func (d *Document) Build(opts ...stratgraph.GraphOption) (*stratgraph.Graph, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	g := stratgraph.NewGraph(opts...)
	var errs []error

	for _, n := range d.Nodes {
		base, err := stratgraph.DefaultConfig(stratgraph.Kind(n.Kind))
		if err != nil {
			errs = append(errs, fmt.Errorf("node %s: %w", n.ID, err))
			continue
		}
		cfg, err := DecodeConfig(n.ID, base, config.New(n.Config))
		if err != nil {
			errs = append(errs, err)
		}
		node := &stratgraph.Node{
			ID:       n.ID,
			Position: stratgraph.Position{X: n.Position.X, Y: n.Position.Y},
			Config:   cfg,
		}
		if err := g.Insert(node); err != nil {
			errs = append(errs, err)
		}
	}

	for _, c := range d.Connections {
		if _, err := g.ConnectWithID(c.ID, c.Source, c.SourceOutput, c.Target, c.TargetInput); err != nil {
			errs = append(errs, err)
		}
	}

	return g, errors.Join(errs...)
}

// FromGraph captures a graph snapshot as a document. Every config field is
// written, defaults included.
func FromGraph(g stratgraph.Snapshot) *Document {
	d := &Document{
		Version:     Version,
		Nodes:       []Node{},
		Connections: []Connection{},
	}
	for _, n := range g.Nodes() {
		d.Nodes = append(d.Nodes, Node{
			ID:       n.ID,
			Kind:     string(n.Kind()),
			Position: Position{X: n.Position.X, Y: n.Position.Y},
			Config:   EncodeConfig(n.Config),
		})
	}
	for _, c := range g.Connections() {
		d.Connections = append(d.Connections, Connection(c))
	}
	return d
}

// fields reads one node's config map, collecting enum errors.
type fields struct {
	nodeID string
	c      config.Config
	errs   []error
}

func (f *fields) enum(key, def string, allowed []string) string {
	v, err := f.c.Enum(key, def, allowed...)
	if err != nil {
		f.errs = append(f.errs, &FieldError{NodeID: f.nodeID, Field: key, Err: err})
	}
	return v
}

// DecodeConfig reads a config map on top of base, which supplies the value
// of every missing key. Enum values outside their set are reported as
// *FieldError and left at the base value.
func DecodeConfig(nodeID string, base stratgraph.NodeConfig, c config.Config) (stratgraph.NodeConfig, error) {
	f := &fields{nodeID: nodeID, c: c}

	var out stratgraph.NodeConfig
	switch b := base.(type) {
	case stratgraph.StrategyConfig:
		out = stratgraph.StrategyConfig{
			StartTime:       c.String("startTime", b.StartTime),
			EndTime:         c.String("endTime", b.EndTime),
			IntervalMinutes: c.Int("intervalMinutes", b.IntervalMinutes),
			Name:            c.String("strategyName", b.Name),
			Tags:            c.StringSlice("tags", b.Tags),
		}
	case stratgraph.FetchShortlist:
		out = stratgraph.FetchShortlist{
			ShortlistType:       stratgraph.ShortlistType(f.enum("shortlistType", string(b.ShortlistType), shortlistTypes())),
			UseCurrentTimestamp: c.Bool("useCurrentTimestamp", b.UseCurrentTimestamp),
			Datetime:            c.String("datetime", b.Datetime),
		}
	case stratgraph.FetchShortlistPersistence:
		out = stratgraph.FetchShortlistPersistence{
			ShortlistType: stratgraph.ShortlistType(f.enum("shortlistType", string(b.ShortlistType), shortlistTypes())),
			StartDatetime: c.String("startDatetime", b.StartDatetime),
			EndDatetime:   c.String("endDatetime", b.EndDatetime),
		}
	case stratgraph.FetchCandles:
		out = stratgraph.FetchCandles{
			Symbol:                   c.String("symbol", b.Symbol),
			Interval:                 stratgraph.CandleInterval(f.enum("interval", string(b.Interval), candleIntervals())),
			StartDatetime:            c.String("startDatetime", b.StartDatetime),
			EndDatetime:              c.String("endDatetime", b.EndDatetime),
			UseCurrentTimestampAsEnd: c.Bool("useCurrentTimestampAsEnd", b.UseCurrentTimestampAsEnd),
		}
	case stratgraph.FetchQuote:
		out = stratgraph.FetchQuote{Symbol: c.String("symbol", b.Symbol)}
	case stratgraph.PlaceOrder:
		out = stratgraph.PlaceOrder{
			NSESymbol:           c.String("nseSymbol", b.NSESymbol),
			EntryPrice:          c.Float("entryPrice", b.EntryPrice),
			StopLossPrice:       c.Float("stopLossPrice", b.StopLossPrice),
			TakeProfitPrice:     c.Float("takeProfitPrice", b.TakeProfitPrice),
			UseCurrentTimestamp: c.Bool("useCurrentTimestamp", b.UseCurrentTimestamp),
			Datetime:            c.String("datetime", b.Datetime),
			PriceMode:           stratgraph.PriceMode(f.enum("priceMode", string(b.PriceMode), priceModes())),
			StopLossPercent:     c.Float("stopLossPercent", b.StopLossPercent),
			TakeProfitPercent:   c.Float("takeProfitPercent", b.TakeProfitPercent),
		}
	case stratgraph.Conditional:
		out = stratgraph.Conditional{
			Field:        c.String("field", b.Field),
			Operator:     expr.Operator(f.enum("operator", string(b.Operator), operators())),
			CompareValue: c.Float("compareValue", b.CompareValue),
		}
	default:
		// FetchDates, FetchHolidays and ForEach have no settings.
		out = base
	}

	return out, errors.Join(f.errs...)
}

// EncodeConfig is the inverse of DecodeConfig.
func EncodeConfig(cfg stratgraph.NodeConfig) map[string]any {
	switch c := cfg.(type) {
	case stratgraph.StrategyConfig:
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		return map[string]any{
			"startTime":       c.StartTime,
			"endTime":         c.EndTime,
			"intervalMinutes": c.IntervalMinutes,
			"strategyName":    c.Name,
			"tags":            tags,
		}
	case stratgraph.FetchShortlist:
		return map[string]any{
			"shortlistType":       string(c.ShortlistType),
			"useCurrentTimestamp": c.UseCurrentTimestamp,
			"datetime":            c.Datetime,
		}
	case stratgraph.FetchShortlistPersistence:
		return map[string]any{
			"shortlistType": string(c.ShortlistType),
			"startDatetime": c.StartDatetime,
			"endDatetime":   c.EndDatetime,
		}
	case stratgraph.FetchCandles:
		return map[string]any{
			"symbol":                   c.Symbol,
			"interval":                 string(c.Interval),
			"startDatetime":            c.StartDatetime,
			"endDatetime":              c.EndDatetime,
			"useCurrentTimestampAsEnd": c.UseCurrentTimestampAsEnd,
		}
	case stratgraph.FetchQuote:
		return map[string]any{"symbol": c.Symbol}
	case stratgraph.PlaceOrder:
		return map[string]any{
			"nseSymbol":           c.NSESymbol,
			"entryPrice":          c.EntryPrice,
			"stopLossPrice":       c.StopLossPrice,
			"takeProfitPrice":     c.TakeProfitPrice,
			"useCurrentTimestamp": c.UseCurrentTimestamp,
			"datetime":            c.Datetime,
			"priceMode":           string(c.PriceMode),
			"stopLossPercent":     c.StopLossPercent,
			"takeProfitPercent":   c.TakeProfitPercent,
		}
	case stratgraph.Conditional:
		return map[string]any{
			"field":        c.Field,
			"operator":     string(c.Operator),
			"compareValue": c.CompareValue,
		}
	default:
		return nil
	}
}

func shortlistTypes() []string {
	return toStrings(stratgraph.ShortlistTypes())
}

func candleIntervals() []string {
	return toStrings(stratgraph.CandleIntervals())
}

func priceModes() []string {
	return toStrings(stratgraph.PriceModes())
}

func operators() []string {
	return toStrings(expr.Operators())
}

func toStrings[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}
