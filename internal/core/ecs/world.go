package ecs

import "reflect"

// World is the top-level ECS container. It owns the entity pool, the component
// registry, the deferred command queue and a deferred destruction queue, both
// flushed at tick boundaries.
type World struct {
	pool         *EntityPool
	registry     *Registry
	commands     *CommandQueue
	destroyQueue []EntityID
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		commands:     NewCommandQueue(),
		destroyQueue: make([]EntityID, 0, 64),
	}
}

func (w *World) Pool() *EntityPool       { return w.pool }
func (w *World) Registry() *Registry     { return w.registry }
func (w *World) Commands() *CommandQueue { return w.commands }
func (w *World) Len() int                { return w.pool.Len() }
func (w *World) Alive(id EntityID) bool  { return w.pool.Alive(id) }
func (w *World) CreateEntity() EntityID  { return w.pool.Create() }

// Spawn creates an entity carrying the given components.
func (w *World) Spawn(components ...any) EntityID {
	id := w.pool.Create()
	w.Insert(id, components...)
	return id
}

// Insert attaches components to a live entity, replacing any component of the
// same type. It reports false when id is not alive.
func (w *World) Insert(id EntityID, components ...any) bool {
	if !w.pool.Alive(id) {
		return false
	}
	for _, c := range components {
		t := componentType(c)
		if t == nil {
			continue
		}
		w.registry.column(t).set(id, c)
	}
	return true
}

// RemoveType detaches the component of type t from id.
func (w *World) RemoveType(id EntityID, t reflect.Type) bool {
	c, ok := w.registry.lookup(t)
	if !ok || !c.Has(id) {
		return false
	}
	c.Remove(id)
	return true
}

// Despawn destroys id immediately and clears its components.
func (w *World) Despawn(id EntityID) bool {
	if !w.pool.Alive(id) {
		return false
	}
	w.registry.RemoveAll(id)
	return w.pool.Destroy(id)
}

// Entity returns a read-only view of id, or false if id is not alive.
func (w *World) Entity(id EntityID) (EntityRef, bool) {
	if !w.pool.Alive(id) {
		return EntityRef{}, false
	}
	return EntityRef{w: w, id: id}, true
}

// ApplyCommands runs every queued command against the world.
func (w *World) ApplyCommands() {
	w.commands.apply(w)
}

// MarkForDestruction queues an entity for end-of-tick cleanup.
func (w *World) MarkForDestruction(id EntityID) {
	w.destroyQueue = append(w.destroyQueue, id)
}

// FlushDestroyQueue destroys all queued entities and clears their components.
// Called by the flush system at the end of each tick.
func (w *World) FlushDestroyQueue() {
	for _, id := range w.destroyQueue {
		w.Despawn(id)
	}
	w.destroyQueue = w.destroyQueue[:0]
}

// Reader is the read-only slice of World handed to hooks.
type Reader interface {
	Alive(id EntityID) bool
	Entity(id EntityID) (EntityRef, bool)
}

var _ Reader = (*World)(nil)
