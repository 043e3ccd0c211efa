// Package registry provides the name-keyed lookup table shared by pluggable
// sources and filters.
package registry

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

// Named is the one capability every registrable component must declare.
type Named interface {
	Name() string
}

var errEmptyName = errors.New("registry: component name must not be empty")

// Registry is an ordered name-to-component table. Registration is
// last-write-wins; a re-registered name keeps its original position in List.
// No validation beyond name non-emptiness happens at registration time, so a
// broken component is only discovered when invoked.
type Registry[T Named] struct {
	mu     sync.RWMutex
	kind   string
	byName map[string]T
	order  []string
	log    *zap.Logger
}

// New creates an empty registry. kind is only used for logging ("source",
// "filter").
func New[T Named](kind string, log *zap.Logger) *Registry[T] {
	return &Registry[T]{
		kind:   kind,
		byName: make(map[string]T),
		log:    log,
	}
}

// Register stores the component under its declared name, overwriting any
// prior registration. The registration is observable via Get/List/Count
// immediately.
func (r *Registry[T]) Register(c T) error {
	name := c.Name()
	if name == "" {
		return errEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; !exists {
		r.order = append(r.order, name)
	}
	r.byName[name] = c
	r.log.Info("registered component", zap.String("kind", r.kind), zap.String("name", name))
	return nil
}

// Get returns the component registered under name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// List returns all registered names in registration order.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of registered components.
func (r *Registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
