// Package document reads and writes strategy graphs as YAML or JSON files.
//
// A document lists nodes in insertion order with their kind, canvas position
// and a config map, followed by the connections between them. Build replays
// a document through the graph editing operations; FromGraph goes the other
// way.
//
//	doc, err := document.Load("momentum.yaml")
//	if err != nil {
//	    return err
//	}
//	g, err := doc.Build()
package document
