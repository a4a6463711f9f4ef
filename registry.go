package settings

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Handle is the type-erased view of a Store held by a Registry.
type Handle interface {
	Name() string
	Path() string
	Close() error
}

// Registry tracks the settings instances a composition root has built.
// It replaces any notion of an ambient global "current settings per
// type": the owner constructs one Registry and passes it to whatever
// needs lookup or shutdown.
type Registry struct {
	mu     sync.Mutex
	stores map[string]Handle
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]Handle)}
}

// Add registers a store under its instance name. Duplicate names are a
// configuration error.
func (r *Registry) Add(h Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := h.Name()
	if _, exists := r.stores[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.stores[name] = h
	return nil
}

// Get looks a store up by instance name.
func (r *Registry) Get(name string) (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.stores[name]
	return h, ok
}

// Names returns the registered instance names, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close shuts every registered store down and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for name, h := range r.stores {
		if err := h.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", name, err))
		}
	}
	r.stores = make(map[string]Handle)
	return errors.Join(errs...)
}
