package schema

import "sync"

// Registry tracks staging table descriptors that may be physically present
// in the database. Each merge invocation registers its staging table on
// creation and removes it once dropped, so orphan detection tooling can ask
// the registry what should not exist.
//
// The registry is caller-owned and safe for concurrent use. Two engines
// sharing one registry never corrupt each other's entries because staging
// names are unique per invocation.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{tables: make(map[string]*Table)}
}

// Register records a staging descriptor under its name.
func (r *Registry) Register(t *Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[t.Name] = t
}

// Remove deletes the descriptor with the given name. Removing a name that
// was never registered is a no-op, which keeps failure-path cleanup simple.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tables, name)
}

// Contains reports whether a descriptor with the given name is registered.
func (r *Registry) Contains(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tables[name]
	return ok
}

// Names returns the registered staging table names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	return names
}
