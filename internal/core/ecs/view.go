package ecs

import "reflect"

// EntityRef is a read-only, point-in-time view of one entity's components.
// It is only meaningful for the duration of the call it was handed to.
type EntityRef struct {
	w  *World
	id EntityID
}

func (e EntityRef) ID() EntityID { return e.id }

// Valid reports whether the ref was obtained from a world.
func (e EntityRef) Valid() bool { return e.w != nil }

// Contains reports whether the entity carries a component of type t.
func (e EntityRef) Contains(t reflect.Type) bool {
	if e.w == nil {
		return false
	}
	c, ok := e.w.registry.lookup(t)
	return ok && c.Has(e.id)
}

// Component returns a copy of the component of type t.
func (e EntityRef) Component(t reflect.Type) (any, bool) {
	if e.w == nil {
		return nil, false
	}
	c, ok := e.w.registry.lookup(t)
	if !ok {
		return nil, false
	}
	return c.value(e.id)
}

// Types lists the component types on the entity, in no particular order.
func (e EntityRef) Types() []reflect.Type {
	if e.w == nil {
		return nil
	}
	return e.w.registry.Types(e.id)
}

// Read returns a copy of the entity's T component, so the caller cannot
// mutate world state through a view.
func Read[T any](e EntityRef) (T, bool) {
	var zero T
	if e.w == nil {
		return zero, false
	}
	p, ok := Get[T](e.w, e.id)
	if !ok {
		return zero, false
	}
	return *p, true
}

// Contains reports whether the entity carries a T component.
func Contains[T any](e EntityRef) bool {
	return e.Contains(reflect.TypeOf((*T)(nil)).Elem())
}
