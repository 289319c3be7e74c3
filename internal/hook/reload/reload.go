// Package reload is a scene hook that follows its scene through reloads. It
// walks the scene again whenever the asset the instance was built from
// changes, and lets user code ask for a reload or a delete.
package reload

import (
	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/scene"
)

// State is where a reload-aware hook is in its lifecycle.
type State int

const (
	Loading    State = iota // waiting for the instance to be ready
	Hooked                  // walked at the recorded version
	MustReload              // set by user code: rebuild from disk and hook again
	MustDelete              // set by user code: despawn the scene and its anchor
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Hooked:
		return "hooked"
	case MustReload:
		return "must_reload"
	case MustDelete:
		return "must_delete"
	default:
		return "unknown"
	}
}

// Func is called for every entity of the scene and for the anchor, each time
// the scene is (re)hooked. w is a read-only view of the world and anchor is
// the entity carrying the Hook.
type Func func(e ecs.EntityRef, cmds *ecs.EntityCommands, w ecs.Reader, anchor ecs.EntityID)

// Hook is the anchor component. User code may set State to MustReload or
// MustDelete; every other change belongs to the System.
type Hook struct {
	State   State
	version asset.Version
	fn      Func
}

func New(fn Func) Hook {
	return Hook{State: Loading, fn: fn}
}

// Version is the asset version the scene was last hooked at, zero while it
// never was.
func (h Hook) Version() asset.Version { return h.version }

// RequestReload queues a switch of anchor's hook to MustReload.
func RequestReload(q *ecs.CommandQueue, anchor ecs.EntityID) {
	q.Entity(anchor).Add(func(w *ecs.World, id ecs.EntityID) {
		if h, ok := ecs.Get[Hook](w, id); ok {
			h.State = MustReload
		}
	})
}

// RequestDelete queues a switch of anchor's hook to MustDelete.
func RequestDelete(q *ecs.CommandQueue, anchor ecs.EntityID) {
	q.Entity(anchor).Add(func(w *ecs.World, id ecs.EntityID) {
		if h, ok := ecs.Get[Hook](w, id); ok {
			h.State = MustDelete
		}
	})
}

func setState(q *ecs.CommandQueue, anchor ecs.EntityID, state State, version asset.Version) {
	q.Entity(anchor).Add(func(w *ecs.World, id ecs.EntityID) {
		if h, ok := ecs.Get[Hook](w, id); ok {
			h.State = state
			h.version = version
		}
	})
}

// SceneBundle pairs a scene with a reload-aware hook.
type SceneBundle struct {
	Scene  scene.Root
	Reload Hook
}

func (b SceneBundle) Components() []any {
	return []any{b.Scene, b.Reload}
}

func (b SceneBundle) Spawn(w *ecs.World, extra ...any) ecs.EntityID {
	return w.Spawn(append(b.Components(), extra...)...)
}

// IsHooked reports whether anchor's scene is hooked at its current version.
func IsHooked(w *ecs.World, anchor ecs.EntityID) bool {
	h, ok := ecs.Get[Hook](w, anchor)
	return ok && h.State == Hooked
}
