package store

import "sync"

// Registry stores por sesión
// Cada sesión del portal tiene su propio historial en memoria
type Registry struct {
	mu     sync.Mutex
	max    int
	stores map[string]*Store
}

// NewRegistry crea el registro de stores
func NewRegistry(maxRecords int) *Registry {
	return &Registry{
		max:    maxRecords,
		stores: make(map[string]*Store),
	}
}

// Get devuelve el store de la sesión, creándolo si no existe
func (r *Registry) Get(sessionID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[sessionID]; ok {
		return s
	}
	s := New(r.max)
	r.stores[sessionID] = s
	return s
}

// Remove descarta el store de una sesión (logout o purga)
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, sessionID)
}

// Len cantidad de stores activos
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
