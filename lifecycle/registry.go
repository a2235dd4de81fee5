package lifecycle

import (
	"fmt"
	"sync"
)

// Registry enumerates lifecycle components and their declared dependency
// edges. The Processor consumes this interface only; it never mutates the
// registry or the edges.
type Registry interface {
	// Components returns all registered entries in registration order.
	Components() []Entry
	// DependenciesOf returns the names the given component depends on.
	// Unknown names yield an empty result, not an error.
	DependenciesOf(name string) []string
	// DependentsOf returns the names that depend on the given component.
	// Unknown names yield an empty result, not an error.
	DependentsOf(name string) []string
}

// MapRegistry is an in-memory Registry. All methods are safe for concurrent
// use. The zero value is not usable; call NewRegistry.
type MapRegistry struct {
	mu         sync.RWMutex
	order      []string
	entries    map[string]Entry
	dependsOn  map[string][]string
	dependents map[string][]string
}

// NewRegistry creates an empty MapRegistry.
func NewRegistry() *MapRegistry {
	return &MapRegistry{
		entries:    make(map[string]Entry),
		dependsOn:  make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// Register adds a component under a unique name with its declared
// capabilities. Declaring WithAsyncStop for a component that does not
// implement AsyncComponent is a registration error, as is a duplicate name.
func (r *MapRegistry) Register(name string, c Component, opts ...Option) error {
	if name == "" {
		return fmt.Errorf("lifecycle: component name must not be empty")
	}
	if c == nil {
		return fmt.Errorf("lifecycle: component %q is nil", name)
	}

	var o Options
	for _, opt := range opts {
		opt(&o)
	}

	var async AsyncComponent
	if o.AsyncStop {
		ac, ok := c.(AsyncComponent)
		if !ok {
			return fmt.Errorf("lifecycle: component %q declares async stop but does not implement AsyncComponent", name)
		}
		async = ac
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.entries[name]; dup {
		return fmt.Errorf("lifecycle: duplicate component name %q", name)
	}
	r.order = append(r.order, name)
	r.entries[name] = Entry{
		Name:      name,
		Component: c,
		Async:     async,
		Phase:     o.Phase,
		AutoStart: o.AutoStart,
	}
	return nil
}

// DependsOn declares that name depends on each of deps. Edges are recorded
// in both directions: forward for start ordering, reverse for stop ordering.
// Dependencies may name components that are not (or not yet) registered;
// such edges are simply inert during a transition.
func (r *MapRegistry) DependsOn(name string, deps ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, dep := range deps {
		r.dependsOn[name] = append(r.dependsOn[name], dep)
		r.dependents[dep] = append(r.dependents[dep], name)
	}
}

// Components returns a snapshot of all entries in registration order.
func (r *MapRegistry) Components() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.entries[name])
	}
	return out
}

// DependenciesOf returns a copy of the declared dependencies of name.
func (r *MapRegistry) DependenciesOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.dependsOn[name]...)
}

// DependentsOf returns a copy of the declared dependents of name.
func (r *MapRegistry) DependentsOf(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.dependents[name]...)
}
