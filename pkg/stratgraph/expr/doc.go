/*
Package expr builds target-language expressions for generated strategy programs.

# Overview

The code generator never concatenates user values into program text directly.
Every literal, field access and comparison goes through this package so that
quoting and number formatting are consistent across node emitters.

# Literals

	expr.String(`NSE:"X"`)          // "NSE:\"X\""
	expr.Number(1.5)                // 1.5
	expr.Number(100)                // 100
	expr.StringArray([]string{"a"}) // ["a"]

Strings are JSON-encoded without HTML escaping, which is valid JavaScript.
Numbers use the shortest representation that round-trips.

# Operators

	>    greater than
	<    less than
	>=   greater than or equal
	<=   less than or equal
	==   equal
	!=   not equal

ParseOperator rejects anything else with ErrUnknownOperator.

# Field Access

OptionalField chains optional property reads:

	expr.OptionalField("quote", "payload", "last_price") // quote?.payload?.last_price

LastCandleField reads a column of the most recent candle row:

	expr.LastCandleField("candles", "high") // candles?.payload?.candles?.slice(-1)?.[0]?.[2]

# Price Factors

PercentFactor folds a percentage into a multiplier with decimal arithmetic,
and Scale renders it with four fixed decimals:

	expr.Scale("quote", expr.PercentFactor(1.5, expr.Below)) // quote * 0.9850
*/
package expr
