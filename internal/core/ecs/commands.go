package ecs

import (
	"reflect"
	"sync"
)

// Command is a structural change recorded during a system's Update and applied
// to the world at the next flush.
type Command interface {
	Apply(w *World)
}

// CommandFunc adapts a function to Command.
type CommandFunc func(w *World)

func (f CommandFunc) Apply(w *World) { f(w) }

// CommandQueue buffers commands so structural changes never happen while a
// system is iterating component stores. Safe for concurrent Push.
type CommandQueue struct {
	mu    sync.Mutex
	queue []Command
}

func NewCommandQueue() *CommandQueue {
	return &CommandQueue{queue: make([]Command, 0, 64)}
}

// Push queues c. A nil command is ignored.
func (q *CommandQueue) Push(c Command) {
	if c == nil {
		return
	}
	q.mu.Lock()
	q.queue = append(q.queue, c)
	q.mu.Unlock()
}

// Len returns the number of commands waiting for the next flush.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Entity returns a handle queuing commands against id.
func (q *CommandQueue) Entity(id EntityID) *EntityCommands {
	return &EntityCommands{id: id, queue: q}
}

// apply drains the queue in FIFO order. Commands queued by other commands
// run in the same flush.
func (q *CommandQueue) apply(w *World) {
	for {
		q.mu.Lock()
		batch := q.queue
		q.queue = make([]Command, 0, cap(batch))
		q.mu.Unlock()
		if len(batch) == 0 {
			return
		}
		for _, c := range batch {
			c.Apply(w)
		}
	}
}

// EntityCommands queues changes to a single entity. Every change targeting an
// entity that is no longer alive when the queue is flushed is dropped.
type EntityCommands struct {
	id    EntityID
	queue *CommandQueue
}

func (c *EntityCommands) ID() EntityID { return c.id }

// Insert queues components for insertion, replacing same-typed components.
func (c *EntityCommands) Insert(components ...any) *EntityCommands {
	if len(components) == 0 {
		return c
	}
	id := c.id
	c.queue.Push(CommandFunc(func(w *World) {
		w.Insert(id, components...)
	}))
	return c
}

// Remove queues removal of the components whose types match the given values,
// e.g. Remove(Selected{}).
func (c *EntityCommands) Remove(components ...any) *EntityCommands {
	types := make([]reflect.Type, 0, len(components))
	for _, v := range components {
		if t := componentType(v); t != nil {
			types = append(types, t)
		}
	}
	return c.removeTypes(types...)
}

func (c *EntityCommands) removeTypes(types ...reflect.Type) *EntityCommands {
	if len(types) == 0 {
		return c
	}
	id := c.id
	c.queue.Push(CommandFunc(func(w *World) {
		for _, t := range types {
			w.RemoveType(id, t)
		}
	}))
	return c
}

// Add queues an arbitrary change to this entity. fn is skipped if the entity
// is gone by flush time.
func (c *EntityCommands) Add(fn func(w *World, id EntityID)) *EntityCommands {
	if fn == nil {
		return c
	}
	id := c.id
	c.queue.Push(CommandFunc(func(w *World) {
		if w.Alive(id) {
			fn(w, id)
		}
	}))
	return c
}

// Despawn queues destruction of this entity only.
func (c *EntityCommands) Despawn() {
	id := c.id
	c.queue.Push(CommandFunc(func(w *World) {
		RemoveChild(w, id)
		w.Despawn(id)
	}))
}

// DespawnRecursive queues destruction of this entity and all its descendants.
func (c *EntityCommands) DespawnRecursive() {
	id := c.id
	c.queue.Push(CommandFunc(func(w *World) {
		DespawnRecursive(w, id)
	}))
}

// RemoveComponent queues removal of the T component.
func RemoveComponent[T any](c *EntityCommands) *EntityCommands {
	return c.removeTypes(reflect.TypeOf((*T)(nil)).Elem())
}
