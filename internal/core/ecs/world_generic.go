package ecs

import "reflect"

// StoreOf returns the typed store for T, creating it on first use.
func StoreOf[T any](w *World) Store[T] {
	return Store[T]{col: w.registry.column(reflect.TypeOf((*T)(nil)).Elem())}
}

// Insert attaches c to id immediately. Systems iterating stores should queue
// through Commands instead.
func Insert[T any](w *World, id EntityID, c T) bool {
	if !w.pool.Alive(id) {
		return false
	}
	StoreOf[T](w).Set(id, &c)
	return true
}

func Get[T any](w *World, id EntityID) (*T, bool) {
	c, ok := w.registry.lookup(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return nil, false
	}
	v, ok := c.get(id)
	if !ok {
		return nil, false
	}
	return v.(*T), true
}

func Has[T any](w *World, id EntityID) bool {
	c, ok := w.registry.lookup(reflect.TypeOf((*T)(nil)).Elem())
	return ok && c.Has(id)
}

func Remove[T any](w *World, id EntityID) bool {
	return w.RemoveType(id, reflect.TypeOf((*T)(nil)).Elem())
}

// First returns any entity carrying T.
func First[T any](w *World) (EntityID, bool) {
	c, ok := w.registry.lookup(reflect.TypeOf((*T)(nil)).Elem())
	if !ok {
		return 0, false
	}
	for id := range c.data {
		return id, true
	}
	return 0, false
}
