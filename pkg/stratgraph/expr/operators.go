package expr

import (
	"errors"
	"fmt"
)

// ErrUnknownOperator is returned when parsing an operator outside the supported set.
var ErrUnknownOperator = errors.New("unknown operator")

// Operator is a binary comparison operator of the target language.
type Operator string

// Supported comparison operators.
const (
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
)

// Operators returns every supported operator in display order.
func Operators() []Operator {
	return []Operator{OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual}
}

// ParseOperator returns the operator spelled by s.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOperator, s)
	}
	return op, nil
}

// Valid reports whether o is a supported operator.
func (o Operator) Valid() bool {
	switch o {
	case OpGreater, OpLess, OpGreaterEqual, OpLessEqual, OpEqual, OpNotEqual:
		return true
	}
	return false
}

// String returns the operator spelling.
func (o Operator) String() string {
	return string(o)
}

// Compare renders "left op right".
func Compare(left string, op Operator, right string) string {
	return left + " " + string(op) + " " + right
}
