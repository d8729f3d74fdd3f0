// Command stratgraph compiles strategy graph documents into programs for the
// ganaka SDK.
//
// Usage:
//
//	stratgraph generate --file momentum.yaml
//	stratgraph check --file momentum.yaml
//	stratgraph nodes
//	stratgraph schema
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	cmd := newCommand(os.Stdout, os.Stderr)
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "stratgraph:", err)
		os.Exit(1)
	}
}
