package dag

import (
	"sort"
	"sync"

	"github.com/kbukum/capdag/errors"
)

// Factory builds a node from its pipeline definition.
type Factory func(def NodeDef) (Node, error)

// Registry maps capability names to node factories for building graphs
// from pipeline definitions.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous one.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a factory by name.
func (r *Registry) Get(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Build creates the node described by def. An unknown capability fails
// with NOT_FOUND.
func (r *Registry) Build(def NodeDef) (Node, error) {
	factory, ok := r.Get(def.Capability)
	if !ok {
		return nil, errors.NotFound("capability", def.Capability).WithDetail("node", def.ID)
	}
	node, err := factory(def)
	if err != nil {
		return nil, err
	}
	if node.ID() != def.ID {
		return nil, errors.InvalidArgument(def.ID, "factory for "+def.Capability+" returned node "+node.ID())
	}
	return node, nil
}

// List returns sorted names of all registered capabilities.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
