package middleware

import "github.com/aretw0/pagecraft/pkg/ports"

// Middleware wraps a DocumentStore to add behavior (encryption, circuit breaking).
type Middleware func(ports.DocumentStore) ports.DocumentStore

// Chain applies middlewares so that the first one is the outermost.
func Chain(store ports.DocumentStore, mws ...Middleware) ports.DocumentStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
