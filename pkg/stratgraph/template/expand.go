package template

import (
	"fmt"
	"regexp"
	"strings"
)

// placeholder matches ${name}.
var placeholder = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Expander fills ${name} placeholders from a map of values. Every
// placeholder must have a value. An Expander holds no state and is safe for
// concurrent use.
type Expander struct{}

// NewExpander returns an Expander.
func NewExpander() *Expander {
	return &Expander{}
}

// Expand substitutes vars into s in a single pass. Placeholders without a
// value are left in place and reported together in an
// *UndefinedVariableError alongside the partial result.
func (e *Expander) Expand(s string, vars map[string]any) (string, error) {
	var missing []string
	out := placeholder.ReplaceAllStringFunc(s, func(match string) string {
		name := match[2 : len(match)-1]
		val, ok := vars[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return fmt.Sprint(val)
	})
	if len(missing) > 0 {
		return out, &UndefinedVariableError{Names: missing}
	}
	return out, nil
}

// UndefinedVariableError lists the placeholders Expand found no value for,
// in order of appearance.
type UndefinedVariableError struct {
	Names []string
}

func (e *UndefinedVariableError) Error() string {
	if len(e.Names) == 1 {
		return "undefined variable: " + e.Names[0]
	}
	return "undefined variables: " + strings.Join(e.Names, ", ")
}
