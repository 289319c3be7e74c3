package ecs

import "reflect"

// Registry tracks all component stores and supports bulk cleanup on entity destroy.
type Registry struct {
	columns map[reflect.Type]*column
	stores  []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		columns: make(map[reflect.Type]*column, 16),
		stores:  make([]Removable, 0, 16),
	}
}

// Register adds a store that is not backed by a component column, so it is
// still cleared when an entity is destroyed.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// column returns the column for t, creating it on first use.
func (r *Registry) column(t reflect.Type) *column {
	if c, ok := r.columns[t]; ok {
		return c
	}
	c := newColumn(t)
	r.columns[t] = c
	r.stores = append(r.stores, c)
	return c
}

// lookup returns the column for t without creating it.
func (r *Registry) lookup(t reflect.Type) (*column, bool) {
	c, ok := r.columns[t]
	return c, ok
}

// Types lists the component types present on id.
func (r *Registry) Types(id EntityID) []reflect.Type {
	var out []reflect.Type
	for t, c := range r.columns {
		if c.Has(id) {
			out = append(out, t)
		}
	}
	return out
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}
