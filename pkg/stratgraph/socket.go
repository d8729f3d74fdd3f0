package stratgraph

// Socket names the data or control type carried by a port.
// Two ports may be connected only when their sockets are compatible.
type Socket string

// Sockets known to the compiler. The set is closed.
const (
	SocketExec           Socket = "exec"
	SocketString         Socket = "string"
	SocketNumber         Socket = "number"
	SocketShortlistArray Socket = "shortlistArray"
	SocketShortlistItem  Socket = "shortlistItem"
	SocketCandleData     Socket = "candleData"
	SocketQuoteData      Socket = "quoteData"
	SocketDatesArray     Socket = "datesArray"
	SocketHolidaysArray  Socket = "holidaysArray"
)

// Sockets returns every known socket in declaration order.
func Sockets() []Socket {
	return []Socket{
		SocketExec,
		SocketString,
		SocketNumber,
		SocketShortlistArray,
		SocketShortlistItem,
		SocketCandleData,
		SocketQuoteData,
		SocketDatesArray,
		SocketHolidaysArray,
	}
}

// coercions lists the extra targets a source socket may feed besides itself.
// A shortlist item is consumed wherever a symbol string is expected and the
// other way round.
var coercions = map[Socket][]Socket{
	SocketShortlistItem: {SocketString},
	SocketString:        {SocketShortlistItem},
}

// Compatible reports whether an output of socket source may feed an input of
// socket target. Identical sockets are always compatible, exec included.
func Compatible(source, target Socket) bool {
	if source == target {
		return true
	}
	for _, s := range coercions[source] {
		if s == target {
			return true
		}
	}
	return false
}

// IsControl reports whether the socket carries control flow.
func (s Socket) IsControl() bool {
	return s == SocketExec
}

// Valid reports whether s is one of the known sockets.
func (s Socket) Valid() bool {
	for _, known := range Sockets() {
		if s == known {
			return true
		}
	}
	return false
}

// Shape returns the value shape produced by an output of this socket.
func (s Socket) Shape() Shape {
	switch s {
	case SocketQuoteData:
		return ShapeQuote
	case SocketCandleData:
		return ShapeCandle
	default:
		return ShapeGeneric
	}
}

// Shape describes how a bound value is laid out at runtime, which decides how
// a Conditional reads a field from it.
type Shape int

const (
	// ShapeGeneric is a plain object; fields are read directly.
	ShapeGeneric Shape = iota
	// ShapeQuote is a quote response; fields live under payload.
	ShapeQuote
	// ShapeCandle is a candle response; fields index into the last candle row.
	ShapeCandle
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeQuote:
		return "quote"
	case ShapeCandle:
		return "candle"
	default:
		return "generic"
	}
}
