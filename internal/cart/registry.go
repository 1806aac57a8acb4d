package cart

import "sync"

// Registry maps session IDs onto their in-memory carts. Carts are not
// persisted and do not sync across gateway instances; each session owns
// exactly one cart for the lifetime of the process.
type Registry struct {
	mu    sync.RWMutex
	carts map[string]*Store
}

// NewRegistry returns an empty cart registry.
func NewRegistry() *Registry {
	return &Registry{carts: map[string]*Store{}}
}

// ForSession returns the session's cart, creating it on first use.
func (r *Registry) ForSession(sessionID string) *Store {
	r.mu.RLock()
	store, ok := r.carts[sessionID]
	r.mu.RUnlock()
	if ok {
		return store
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.carts[sessionID]; ok {
		return store
	}
	store = NewStore()
	r.carts[sessionID] = store
	return store
}

// Drop discards the session's cart, typically on logout.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.carts, sessionID)
}
