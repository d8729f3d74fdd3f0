package stratgraph

import (
	"github.com/randalmurphal/stratgraph/pkg/stratgraph/expr"
)

// Kind identifies the behaviour of a node.
type Kind string

// Node kinds. The set is closed; every kind has exactly one NodeConfig type.
const (
	KindStrategyConfig            Kind = "StrategyConfig"
	KindFetchShortlist            Kind = "FetchShortlist"
	KindFetchShortlistPersistence Kind = "FetchShortlistPersistence"
	KindFetchCandles              Kind = "FetchCandles"
	KindFetchQuote                Kind = "FetchQuote"
	KindFetchDates                Kind = "FetchDates"
	KindFetchHolidays             Kind = "FetchHolidays"
	KindPlaceOrder                Kind = "PlaceOrder"
	KindForEach                   Kind = "ForEach"
	KindConditional               Kind = "Conditional"
)

// Category groups kinds for display in the node palette.
type Category string

// Node categories.
const (
	CategoryConfig     Category = "config"
	CategoryDataSource Category = "dataSource"
	CategoryLogic      Category = "logic"
	CategoryAction     Category = "action"
)

// Position is a node's location on the canvas.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Port is a named attachment point on a node.
type Port struct {
	// Key is unique among the node's inputs or among its outputs.
	Key string
	// Label is shown on the canvas.
	Label string
	// Socket types the values flowing through the port.
	Socket Socket
	// Multiple allows more than one connection into an input.
	Multiple bool
}

// Node is a vertex of a strategy graph.
type Node struct {
	ID       string
	Position Position
	Config   NodeConfig
}

// Kind returns the node's kind, derived from its config.
func (n *Node) Kind() Kind {
	return n.Config.Kind()
}

// Label returns the display label of the node's kind.
func (n *Node) Label() string {
	return MustSpec(n.Kind()).Label
}

// Category returns the category of the node's kind.
func (n *Node) Category() Category {
	return MustSpec(n.Kind()).Category
}

// Inputs returns the node's input ports in display order.
func (n *Node) Inputs() []Port {
	return MustSpec(n.Kind()).Inputs
}

// Outputs returns the node's output ports in display order.
func (n *Node) Outputs() []Port {
	return MustSpec(n.Kind()).Outputs
}

// Input returns the input port with the given key.
func (n *Node) Input(key string) (Port, bool) {
	return findPort(n.Inputs(), key)
}

// Output returns the output port with the given key.
func (n *Node) Output(key string) (Port, bool) {
	return findPort(n.Outputs(), key)
}

func findPort(ports []Port, key string) (Port, bool) {
	for _, p := range ports {
		if p.Key == key {
			return p, true
		}
	}
	return Port{}, false
}

// NodeConfig is the kind-specific configuration of a node.
// It is implemented only by the config types in this package.
type NodeConfig interface {
	Kind() Kind
	isNodeConfig()
}

// ShortlistType selects which screener a shortlist is drawn from.
type ShortlistType string

// Shortlist types.
const (
	ShortlistTopGainers     ShortlistType = "TOP_GAINERS"
	ShortlistVolumeShockers ShortlistType = "VOLUME_SHOCKERS"
)

// ShortlistTypes returns every shortlist type.
func ShortlistTypes() []ShortlistType {
	return []ShortlistType{ShortlistTopGainers, ShortlistVolumeShockers}
}

// CandleInterval is the bar width of a candle request.
type CandleInterval string

// Candle intervals.
const (
	Interval1Minute  CandleInterval = "1minute"
	Interval2Minute  CandleInterval = "2minute"
	Interval3Minute  CandleInterval = "3minute"
	Interval5Minute  CandleInterval = "5minute"
	Interval10Minute CandleInterval = "10minute"
	Interval15Minute CandleInterval = "15minute"
	Interval30Minute CandleInterval = "30minute"
	Interval1Hour    CandleInterval = "1hour"
	Interval4Hour    CandleInterval = "4hour"
	Interval1Day     CandleInterval = "1day"
	Interval1Week    CandleInterval = "1week"
	Interval1Month   CandleInterval = "1month"
)

// CandleIntervals returns every candle interval, shortest first.
func CandleIntervals() []CandleInterval {
	return []CandleInterval{
		Interval1Minute, Interval2Minute, Interval3Minute, Interval5Minute,
		Interval10Minute, Interval15Minute, Interval30Minute,
		Interval1Hour, Interval4Hour,
		Interval1Day, Interval1Week, Interval1Month,
	}
}

// PriceMode selects how PlaceOrder derives stop-loss and take-profit prices.
type PriceMode string

// Price modes.
const (
	// PricePercentage derives SL/TP from the connected entry price.
	PricePercentage PriceMode = "percentage"
	// PriceManual uses the literal prices configured on the node.
	PriceManual PriceMode = "manual"
)

// PriceModes returns every price mode.
func PriceModes() []PriceMode {
	return []PriceMode{PricePercentage, PriceManual}
}

// StrategyConfig is the root of a strategy: its schedule and metadata.
type StrategyConfig struct {
	StartTime       string
	EndTime         string
	IntervalMinutes int
	Name            string
	Tags            []string
}

// FetchShortlist fetches a screener shortlist.
type FetchShortlist struct {
	ShortlistType       ShortlistType
	UseCurrentTimestamp bool
	// Datetime is used when UseCurrentTimestamp is off and no datetime input
	// is connected.
	Datetime string
}

// FetchShortlistPersistence fetches instruments that recur in a shortlist
// over a window.
type FetchShortlistPersistence struct {
	ShortlistType ShortlistType
	StartDatetime string
	EndDatetime   string
}

// FetchCandles fetches OHLCV candles for a symbol.
type FetchCandles struct {
	Symbol                   string
	Interval                 CandleInterval
	StartDatetime            string
	EndDatetime              string
	UseCurrentTimestampAsEnd bool
}

// FetchQuote fetches the live quote for a symbol.
type FetchQuote struct {
	Symbol string
}

// FetchDates fetches the dates with available market data.
type FetchDates struct{}

// FetchHolidays fetches market holidays.
type FetchHolidays struct{}

// PlaceOrder places an order with stop-loss and take-profit legs.
type PlaceOrder struct {
	NSESymbol           string
	EntryPrice          float64
	StopLossPrice       float64
	TakeProfitPrice     float64
	UseCurrentTimestamp bool
	Datetime            string
	PriceMode           PriceMode
	StopLossPercent     float64
	TakeProfitPercent   float64
}

// ForEach iterates over a shortlist.
type ForEach struct{}

// Conditional branches on a comparison of one field of its input value.
type Conditional struct {
	Field        string
	Operator     expr.Operator
	CompareValue float64
}

func (StrategyConfig) Kind() Kind            { return KindStrategyConfig }
func (FetchShortlist) Kind() Kind            { return KindFetchShortlist }
func (FetchShortlistPersistence) Kind() Kind { return KindFetchShortlistPersistence }
func (FetchCandles) Kind() Kind              { return KindFetchCandles }
func (FetchQuote) Kind() Kind                { return KindFetchQuote }
func (FetchDates) Kind() Kind                { return KindFetchDates }
func (FetchHolidays) Kind() Kind             { return KindFetchHolidays }
func (PlaceOrder) Kind() Kind                { return KindPlaceOrder }
func (ForEach) Kind() Kind                   { return KindForEach }
func (Conditional) Kind() Kind               { return KindConditional }

// sealed reports whether cfg is one of the value config types. Pointers to
// them satisfy NodeConfig too but are never dispatched.
func sealed(cfg NodeConfig) bool {
	switch cfg.(type) {
	case StrategyConfig, FetchShortlist, FetchShortlistPersistence, FetchCandles, FetchQuote,
		FetchDates, FetchHolidays, PlaceOrder, ForEach, Conditional:
		return true
	default:
		return false
	}
}

func (StrategyConfig) isNodeConfig()            {}
func (FetchShortlist) isNodeConfig()            {}
func (FetchShortlistPersistence) isNodeConfig() {}
func (FetchCandles) isNodeConfig()              {}
func (FetchQuote) isNodeConfig()                {}
func (FetchDates) isNodeConfig()                {}
func (FetchHolidays) isNodeConfig()             {}
func (PlaceOrder) isNodeConfig()                {}
func (ForEach) isNodeConfig()                   {}
func (Conditional) isNodeConfig()               {}
