package stratgraph

import (
	"fmt"

	"github.com/randalmurphal/stratgraph/pkg/stratgraph/expr"
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/registry"
)

// Size is the rendered footprint of a node.
type Size struct {
	Width  float64
	Height float64
}

// Spec describes a node kind: its palette entry, ports and defaults.
type Spec struct {
	Kind        Kind
	Label       string
	Category    Category
	Description string
	Inputs      []Port
	Outputs     []Port
	Size        Size
	// Default returns a fresh config populated with the kind's defaults.
	Default func() NodeConfig
}

// Output keys shared by several kinds.
const (
	OutputExec = "exec"
	InputExec  = "exec"
)

var catalogue = registry.New[Kind, Spec]()

func execIn() Port { return Port{Key: InputExec, Label: "Exec", Socket: SocketExec} }

func nextOut() Port { return Port{Key: OutputExec, Label: "Next", Socket: SocketExec} }

func init() {
	catalogue.MustRegister(KindStrategyConfig, Spec{
		Kind:        KindStrategyConfig,
		Label:       "Strategy Config",
		Category:    CategoryConfig,
		Description: "Define start time, end time, and interval",
		Outputs: []Port{
			{Key: OutputExec, Label: "Start", Socket: SocketExec},
			{Key: "currentTimestamp", Label: "Current Timestamp", Socket: SocketString},
		},
		Size: Size{Width: 260, Height: 180},
		Default: func() NodeConfig {
			return StrategyConfig{
				StartTime:       "2026-01-05T09:15:00",
				EndTime:         "2026-01-05T15:30:00",
				IntervalMinutes: 1,
				Tags:            []string{},
			}
		},
	})

	catalogue.MustRegister(KindFetchShortlist, Spec{
		Kind:        KindFetchShortlist,
		Label:       "Fetch Shortlist",
		Category:    CategoryDataSource,
		Description: "Get top gainers or volume shockers",
		Inputs: []Port{
			execIn(),
			{Key: "datetime", Label: "Datetime", Socket: SocketString},
		},
		Outputs: []Port{
			nextOut(),
			{Key: "results", Label: "Results", Socket: SocketShortlistArray},
		},
		Size: Size{Width: 240, Height: 240},
		Default: func() NodeConfig {
			return FetchShortlist{ShortlistType: ShortlistTopGainers, UseCurrentTimestamp: true}
		},
	})

	catalogue.MustRegister(KindFetchShortlistPersistence, Spec{
		Kind:        KindFetchShortlistPersistence,
		Label:       "Fetch Shortlist Persistence",
		Category:    CategoryDataSource,
		Description: "Get stocks appearing frequently in shortlists",
		Inputs:      []Port{execIn()},
		Outputs: []Port{
			nextOut(),
			{Key: "results", Label: "Instruments", Socket: SocketShortlistArray},
		},
		Size: Size{Width: 280, Height: 260},
		Default: func() NodeConfig {
			return FetchShortlistPersistence{ShortlistType: ShortlistTopGainers}
		},
	})

	catalogue.MustRegister(KindFetchCandles, Spec{
		Kind:        KindFetchCandles,
		Label:       "Fetch Candles",
		Category:    CategoryDataSource,
		Description: "Get OHLC candle data for a symbol",
		Inputs: []Port{
			execIn(),
			{Key: "symbol", Label: "Symbol", Socket: SocketString},
		},
		Outputs: []Port{
			nextOut(),
			{Key: "candles", Label: "Candles", Socket: SocketCandleData},
		},
		Size: Size{Width: 260, Height: 300},
		Default: func() NodeConfig {
			return FetchCandles{Interval: Interval1Minute, UseCurrentTimestampAsEnd: true}
		},
	})

	catalogue.MustRegister(KindFetchQuote, Spec{
		Kind:        KindFetchQuote,
		Label:       "Fetch Quote",
		Category:    CategoryDataSource,
		Description: "Get live quote for a symbol",
		Inputs: []Port{
			execIn(),
			{Key: "symbol", Label: "Symbol", Socket: SocketString},
		},
		Outputs: []Port{
			nextOut(),
			{Key: "quote", Label: "Quote", Socket: SocketQuoteData},
		},
		Size:    Size{Width: 240, Height: 200},
		Default: func() NodeConfig { return FetchQuote{} },
	})

	catalogue.MustRegister(KindFetchDates, Spec{
		Kind:        KindFetchDates,
		Label:       "Fetch Dates",
		Category:    CategoryDataSource,
		Description: "Get dates with available data",
		Inputs:      []Port{execIn()},
		Outputs: []Port{
			nextOut(),
			{Key: "dates", Label: "Dates", Socket: SocketDatesArray},
		},
		Size:    Size{Width: 200, Height: 140},
		Default: func() NodeConfig { return FetchDates{} },
	})

	catalogue.MustRegister(KindFetchHolidays, Spec{
		Kind:        KindFetchHolidays,
		Label:       "Fetch Holidays",
		Category:    CategoryDataSource,
		Description: "Get market holidays",
		Inputs:      []Port{execIn()},
		Outputs: []Port{
			nextOut(),
			{Key: "holidays", Label: "Holidays", Socket: SocketHolidaysArray},
		},
		Size:    Size{Width: 200, Height: 140},
		Default: func() NodeConfig { return FetchHolidays{} },
	})

	catalogue.MustRegister(KindPlaceOrder, Spec{
		Kind:        KindPlaceOrder,
		Label:       "Place Order",
		Category:    CategoryAction,
		Description: "Place a trading order",
		Inputs: []Port{
			execIn(),
			{Key: "nseSymbol", Label: "Symbol", Socket: SocketString},
			{Key: "entryPrice", Label: "Entry Price", Socket: SocketNumber},
		},
		Outputs: []Port{nextOut()},
		Size:    Size{Width: 260, Height: 300},
		Default: func() NodeConfig {
			return PlaceOrder{
				UseCurrentTimestamp: true,
				PriceMode:           PricePercentage,
				StopLossPercent:     1.5,
				TakeProfitPercent:   2,
			}
		},
	})

	catalogue.MustRegister(KindForEach, Spec{
		Kind:        KindForEach,
		Label:       "For Each",
		Category:    CategoryLogic,
		Description: "Loop over array data",
		Inputs: []Port{
			execIn(),
			{Key: "array", Label: "Array", Socket: SocketShortlistArray},
		},
		Outputs: []Port{
			{Key: "loopBody", Label: "Loop Body", Socket: SocketExec},
			{Key: "item", Label: "Current Item", Socket: SocketShortlistItem},
			{Key: "done", Label: "Done", Socket: SocketExec},
		},
		Size:    Size{Width: 220, Height: 180},
		Default: func() NodeConfig { return ForEach{} },
	})

	catalogue.MustRegister(KindConditional, Spec{
		Kind:        KindConditional,
		Label:       "Conditional",
		Category:    CategoryLogic,
		Description: "Branch based on a condition",
		Inputs: []Port{
			execIn(),
			{Key: "value", Label: "Value", Socket: SocketQuoteData},
		},
		Outputs: []Port{
			{Key: "true", Label: "True", Socket: SocketExec},
			{Key: "false", Label: "False", Socket: SocketExec},
		},
		Size: Size{Width: 240, Height: 260},
		Default: func() NodeConfig {
			return Conditional{Field: "last_price", Operator: expr.OpGreater}
		},
	})
}

// Catalogue returns the spec of every node kind in palette order.
func Catalogue() []Spec {
	return catalogue.Values()
}

// Kinds returns every node kind in palette order.
func Kinds() []Kind {
	return catalogue.Keys()
}

// LookupSpec returns the spec for kind.
func LookupSpec(kind Kind) (Spec, bool) {
	return catalogue.Get(kind)
}

// MustSpec returns the spec for kind and panics on an unknown kind.
// Nodes can only carry configs of known kinds, so node accessors use it.
func MustSpec(kind Kind) Spec {
	return catalogue.MustGet(kind)
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return catalogue.Has(k)
}

// DefaultConfig returns the default config for kind.
func DefaultConfig(kind Kind) (NodeConfig, error) {
	spec, ok := catalogue.Get(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return spec.Default(), nil
}
