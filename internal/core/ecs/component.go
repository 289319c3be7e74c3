package ecs

import "reflect"

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// column holds every component of one value type. Values are kept as *T so
// typed views can hand out pointers without copying.
type column struct {
	typ  reflect.Type
	data map[EntityID]any
}

func newColumn(t reflect.Type) *column {
	return &column{
		typ:  t,
		data: make(map[EntityID]any, 64),
	}
}

// set stores v, which must be a T or a *T of the column's type.
func (c *column) set(id EntityID, v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && rv.Type().Elem() == c.typ {
		if rv.IsNil() {
			return
		}
		c.data[id] = v
		return
	}
	p := reflect.New(c.typ)
	p.Elem().Set(rv)
	c.data[id] = p.Interface()
}

func (c *column) get(id EntityID) (any, bool) {
	v, ok := c.data[id]
	return v, ok
}

// value returns a copy of the stored component.
func (c *column) value(id EntityID) (any, bool) {
	v, ok := c.data[id]
	if !ok {
		return nil, false
	}
	return reflect.ValueOf(v).Elem().Interface(), true
}

func (c *column) Remove(id EntityID) {
	delete(c.data, id)
}

func (c *column) Has(id EntityID) bool {
	_, ok := c.data[id]
	return ok
}

func (c *column) Len() int {
	return len(c.data)
}

// Store is a typed view over the column holding components of type T.
// No reflect on the hot path: values are asserted back to *T.
type Store[T any] struct {
	col *column
}

func (s Store[T]) Set(id EntityID, c *T) {
	if c == nil {
		return
	}
	s.col.data[id] = c
}

func (s Store[T]) Get(id EntityID) (*T, bool) {
	v, ok := s.col.data[id]
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

func (s Store[T]) Remove(id EntityID) {
	s.col.Remove(id)
}

func (s Store[T]) Has(id EntityID) bool {
	return s.col.Has(id)
}

func (s Store[T]) Len() int {
	return s.col.Len()
}

func (s Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.col.data {
		fn(id, c.(*T))
	}
}

// componentType returns the value type a component is stored under: pointers
// are stored as the type they point to.
func componentType(v any) reflect.Type {
	t := reflect.TypeOf(v)
	if t != nil && t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}
