package expr

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// String renders s as a double-quoted string literal.
func String(s string) string {
	return strings.TrimSuffix(encode(s), "\n")
}

// StringArray renders ss as a compact array literal of strings.
// A nil slice renders as [].
func StringArray(ss []string) string {
	if ss == nil {
		ss = []string{}
	}
	return strings.TrimSuffix(encode(ss), "\n")
}

// encode JSON-encodes v without HTML escaping. Strings and string slices
// cannot fail to encode.
func encode(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
	return buf.String()
}

// Number renders f the way the target language prints a number value.
func Number(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		// Covers negative zero.
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Int renders an integer literal.
func Int(i int) string {
	return strconv.Itoa(i)
}

// OptionalField renders base?.p1?.p2... for each path segment.
func OptionalField(base string, path ...string) string {
	var b strings.Builder
	b.WriteString(base)
	for _, p := range path {
		b.WriteString("?.")
		b.WriteString(p)
	}
	return b.String()
}

// candleColumns maps a candle field to its column in a candle row.
// Column 0 is the timestamp.
var candleColumns = map[string]int{
	"open":   1,
	"high":   2,
	"low":    3,
	"close":  4,
	"volume": 5,
}

// CandleColumn returns the row column for a candle field.
// Unknown fields read the close column.
func CandleColumn(field string) int {
	if i, ok := candleColumns[field]; ok {
		return i
	}
	return candleColumns["close"]
}

// LastCandleField renders a read of field from the most recent candle row.
func LastCandleField(base, field string) string {
	return OptionalField(base, "payload", "candles", "slice(-1)", "[0]", "["+Int(CandleColumn(field))+"]")
}

// Direction selects which side of the entry price a percentage factor lands on.
type Direction int

const (
	// Below yields 1 - pct/100.
	Below Direction = iota
	// Above yields 1 + pct/100.
	Above
)

var hundred = decimal.NewFromInt(100)

// PercentFactor returns the multiplier that moves a price pct percent in dir.
func PercentFactor(pct float64, dir Direction) decimal.Decimal {
	delta := decimal.NewFromFloat(pct).Div(hundred)
	if dir == Below {
		return decimal.NewFromInt(1).Sub(delta)
	}
	return decimal.NewFromInt(1).Add(delta)
}

// Scale renders "expr * factor" with the factor fixed to four decimals.
func Scale(expr string, factor decimal.Decimal) string {
	return expr + " * " + factor.StringFixed(4)
}

// Indent prefixes every non-blank line of code with spaces.
// Blank lines are left untouched.
func Indent(code string, spaces int) string {
	pad := strings.Repeat(" ", spaces)
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}
