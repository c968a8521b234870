package middleware

import "github.com/aretw0/workpad/pkg/ports"

// Middleware allows wrapping a WorkpadStore to add behavior.
type Middleware func(ports.WorkpadStore) ports.WorkpadStore

// Chain wraps store with mws so that the first middleware is the outermost.
func Chain(store ports.WorkpadStore, mws ...Middleware) ports.WorkpadStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
