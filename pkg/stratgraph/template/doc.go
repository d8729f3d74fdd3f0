/*
Package template fills ${name} placeholders in the program skeleton.

Expansion is a single pass: a value that itself contains "${...}" (a strategy
name, say) is inserted verbatim and never expanded again. A placeholder with
no value is an error, reported as *UndefinedVariableError.

	out, err := template.NewExpander().Expand("intervalMinutes: ${interval},", map[string]any{"interval": 5})
	// out: "intervalMinutes: 5,"
*/
package template
