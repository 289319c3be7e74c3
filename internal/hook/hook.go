package hook

import (
	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/scene"
)

// Func inspects one entity of a scene instance and queues changes to it.
// e is only valid for the duration of the call. Funcs may be shared between
// hooks and must not keep state that is unsafe to use from other goroutines.
type Func func(e ecs.EntityRef, cmds *ecs.EntityCommands)

// SceneHook is the component holding the Func to run over a scene once it
// has been instantiated under the entity carrying it.
type SceneHook struct {
	fn Func
}

func New(fn Func) SceneHook {
	return SceneHook{fn: fn}
}

// NewComp builds a hook that only fires for entities carrying a C, handing it
// a copy of that component.
func NewComp[C any](fn func(c C, cmds *ecs.EntityCommands)) SceneHook {
	return New(func(e ecs.EntityRef, cmds *ecs.EntityCommands) {
		if c, ok := ecs.Read[C](e); ok {
			fn(c, cmds)
		}
	})
}

// Run invokes the hook for one entity.
func (h SceneHook) Run(e ecs.EntityRef, cmds *ecs.EntityCommands) {
	if h.fn != nil {
		h.fn(e, cmds)
	}
}

// SceneHooked marks an anchor whose scene has been walked.
type SceneHooked struct{}

// HookedSceneBundle is what user code spawns to get a scene with a hook.
type HookedSceneBundle struct {
	Scene scene.Root
	Hook  SceneHook
}

func (b HookedSceneBundle) Components() []any {
	return []any{b.Scene, b.Hook}
}

// Spawn creates the anchor entity carrying the bundle and any extra components.
func (b HookedSceneBundle) Spawn(w *ecs.World, extra ...any) ecs.EntityID {
	return w.Spawn(append(b.Components(), extra...)...)
}

// Walk calls fn for every live entity in entities and then for anchor. Each
// entity is visited at most once; dead ones are skipped. It returns how many
// entities fn saw.
func Walk(w ecs.Reader, q *ecs.CommandQueue, entities []ecs.EntityID, anchor ecs.EntityID, fn Func) int {
	seen := make(map[ecs.EntityID]struct{}, len(entities)+1)
	n := 0
	visit := func(id ecs.EntityID) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		e, ok := w.Entity(id)
		if !ok {
			return
		}
		fn(e, q.Entity(id))
		n++
	}
	for _, id := range entities {
		visit(id)
	}
	visit(anchor)
	return n
}
