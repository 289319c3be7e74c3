package hook

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/core/event"
	"github.com/scenehook/scenehook/internal/core/system"
	"github.com/scenehook/scenehook/internal/scene"
)

// Instances is what the hook system needs from the scene spawner.
type Instances interface {
	InstanceIsReady(id scene.InstanceID) bool
	IterInstanceEntities(id scene.InstanceID) []ecs.EntityID
}

// System runs each anchor's SceneHook once over its scene instance, the first
// tick the instance is ready. Phase 3 (SceneHook): after scenes are spawned,
// before game logic that waits on hooks.
//
// It only reads the world. The SceneHooked marker and everything the hooks do
// go through the command queue and land at the end of the phase.
type System struct {
	world     *ecs.World
	instances Instances
	bus       *event.Bus
	log       *zap.Logger
}

func NewSystem(w *ecs.World, instances Instances, bus *event.Bus, log *zap.Logger) *System {
	if log == nil {
		log = zap.NewNop()
	}
	return &System{world: w, instances: instances, bus: bus, log: log}
}

func (s *System) Phase() system.Phase { return system.PhaseSceneHook }

func (s *System) Update(_ time.Duration) {
	hooks := ecs.StoreOf[SceneHook](s.world)
	insts := ecs.StoreOf[scene.Instance](s.world)
	hooked := ecs.StoreOf[SceneHooked](s.world)

	var anchors []ecs.EntityID
	ecs.Each2(hooks, insts, func(id ecs.EntityID, _ *SceneHook, _ *scene.Instance) {
		if !hooked.Has(id) {
			anchors = append(anchors, id)
		}
	})
	sort.Slice(anchors, func(i, j int) bool { return anchors[i] < anchors[j] })

	q := s.world.Commands()
	for _, anchor := range anchors {
		h, _ := hooks.Get(anchor)
		inst, _ := insts.Get(anchor)
		if !s.instances.InstanceIsReady(inst.ID) {
			continue
		}
		q.Entity(anchor).Insert(SceneHooked{})
		n := Walk(s.world, q, s.instances.IterInstanceEntities(inst.ID), anchor, h.Run)

		s.log.Debug("scene hooked",
			zap.Stringer("anchor", anchor),
			zap.Stringer("instance", inst.ID),
			zap.Int("entities", n),
		)
		event.Emit(s.bus, event.SceneHooked{
			Anchor:   anchor,
			Instance: uint64(inst.ID),
			Entities: n,
		})
	}
}

// Register installs the hook system on r.
func Register(r *system.Runner, w *ecs.World, instances Instances, bus *event.Bus, log *zap.Logger) *System {
	s := NewSystem(w, instances, bus, log)
	r.Register(s)
	return s
}

// IsHooked reports whether anchor's scene has been walked by its hook.
func IsHooked(w *ecs.World, anchor ecs.EntityID) bool {
	return ecs.Has[SceneHooked](w, anchor)
}

// AnyHooked reports whether at least one scene has been hooked.
func AnyHooked(w *ecs.World) bool {
	return ecs.StoreOf[SceneHooked](w).Len() > 0
}

// HookedWith reports whether an anchor carrying an M component has been hooked.
func HookedWith[M any](w *ecs.World) bool {
	found := false
	ecs.Each2(ecs.StoreOf[M](w), ecs.StoreOf[SceneHooked](w), func(ecs.EntityID, *M, *SceneHooked) {
		found = true
	})
	return found
}

// WhenHooked gates a system on AnyHooked.
func WhenHooked(w *ecs.World) system.Condition {
	return func() bool { return AnyHooked(w) }
}

// WhenNotHooked gates a system on no scene having been hooked yet.
func WhenNotHooked(w *ecs.World) system.Condition {
	return func() bool { return !AnyHooked(w) }
}

// WhenHookedWith gates a system on HookedWith[M].
func WhenHookedWith[M any](w *ecs.World) system.Condition {
	return func() bool { return HookedWith[M](w) }
}
