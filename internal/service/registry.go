package service

import "sync"

// Wildcard is the registry key for entries consulted when no exact
// entity-type match exists.
const Wildcard = "*"

type supporter interface {
	Supports(entityType string) bool
}

// registry holds pluggable behaviour keyed by entity type. Selection order
// is explicit: an exact entity-type match wins; otherwise wildcard entries
// are consulted in registration order and the first whose Supports accepts
// the type is chosen. Map iteration order never participates.
type registry[T supporter] struct {
	mu        sync.RWMutex
	exact     map[string]T
	wildcards []T
}

func newRegistry[T supporter]() *registry[T] {
	return &registry[T]{exact: make(map[string]T)}
}

func (r *registry[T]) register(entityType string, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entityType == Wildcard {
		r.wildcards = append(r.wildcards, v)
		return
	}
	r.exact[entityType] = v
}

func (r *registry[T]) lookup(entityType string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.exact[entityType]; ok {
		return v, true
	}
	for _, v := range r.wildcards {
		if v.Supports(entityType) {
			return v, true
		}
	}

	var zero T
	return zero, false
}
