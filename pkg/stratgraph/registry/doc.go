// Package registry provides a generic thread-safe registry for values indexed by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. It keeps
// registration order, so Keys and Values are deterministic, which matters
// when a listing ends up in user-visible output such as a node palette.
//
// # Basic Usage
//
//	r := registry.New[string, int]()
//	r.MustRegister("one", 1)
//	if err := r.Register("one", 2); errors.Is(err, registry.ErrDuplicate) {
//	    // first registration wins
//	}
//
//	value, ok := r.Get("one") // 1, true
//
// # Catalogues
//
// Registries hold static catalogues built at package init:
//
//	var kinds = registry.New[Kind, Spec]()
//
//	func init() {
//	    kinds.MustRegister(KindFetchQuote, Spec{Label: "Fetch Quote"})
//	}
package registry
