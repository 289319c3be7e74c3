package reload

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/core/event"
	"github.com/scenehook/scenehook/internal/core/system"
	"github.com/scenehook/scenehook/internal/hook"
	"github.com/scenehook/scenehook/internal/scene"
)

// Instances is what the reload system needs from the scene spawner.
type Instances interface {
	hook.Instances
	InstanceVersion(id scene.InstanceID) (asset.Version, bool)
	Respawn(id scene.InstanceID)
	Despawn(id scene.InstanceID)
}

// System drives every reload Hook. Phase 3 (SceneHook). Like hook.System it
// only reads the world; state changes, hook output, respawns and deletes are
// all queued.
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
	hooks := ecs.StoreOf[Hook](s.world)
	insts := ecs.StoreOf[scene.Instance](s.world)

	var anchors []ecs.EntityID
	ecs.Each2(hooks, insts, func(id ecs.EntityID, _ *Hook, _ *scene.Instance) {
		anchors = append(anchors, id)
	})
	sort.Slice(anchors, func(i, j int) bool { return anchors[i] < anchors[j] })

	q := s.world.Commands()
	for _, anchor := range anchors {
		h, _ := hooks.Get(anchor)
		inst, _ := insts.Get(anchor)
		id := inst.ID
		ready := s.instances.InstanceIsReady(id)

		switch h.State {
		case Loading:
			if ready {
				s.hook(anchor, *h, id)
			}

		case Hooked:
			if !ready {
				s.log.Debug("hooked scene no longer ready", zap.Stringer("anchor", anchor))
				setState(q, anchor, Loading, asset.Version{})
				event.Emit(s.bus, event.SceneUnhooked{Anchor: anchor, Instance: uint64(id)})
				continue
			}
			v, _ := s.instances.InstanceVersion(id)
			if v == h.version {
				continue
			}
			s.log.Info("scene version changed, hooking again",
				zap.Stringer("anchor", anchor),
				zap.Stringer("old", h.version),
				zap.Stringer("new", v),
			)
			event.Emit(s.bus, event.SceneUnhooked{Anchor: anchor, Instance: uint64(id)})
			s.hook(anchor, *h, id)

		case MustReload:
			s.log.Info("reloading scene", zap.Stringer("anchor", anchor), zap.Stringer("instance", id))
			q.Push(ecs.CommandFunc(func(*ecs.World) { s.instances.Respawn(id) }))
			setState(q, anchor, Loading, asset.Version{})
			event.Emit(s.bus, event.SceneUnhooked{Anchor: anchor, Instance: uint64(id)})

		case MustDelete:
			s.log.Info("deleting scene", zap.Stringer("anchor", anchor), zap.Stringer("instance", id))
			q.Push(ecs.CommandFunc(func(*ecs.World) { s.instances.Despawn(id) }))
			q.Entity(anchor).DespawnRecursive()
			event.Emit(s.bus, event.SceneDeleted{Anchor: anchor})
		}
	}
}

func (s *System) hook(anchor ecs.EntityID, h Hook, id scene.InstanceID) {
	q := s.world.Commands()
	v, _ := s.instances.InstanceVersion(id)
	setState(q, anchor, Hooked, v)

	n := hook.Walk(s.world, q, s.instances.IterInstanceEntities(id), anchor, func(e ecs.EntityRef, cmds *ecs.EntityCommands) {
		if h.fn != nil {
			h.fn(e, cmds, s.world, anchor)
		}
	})
	s.log.Debug("scene hooked",
		zap.Stringer("anchor", anchor),
		zap.Stringer("instance", id),
		zap.Stringer("version", v),
		zap.Int("entities", n),
	)
	event.Emit(s.bus, event.SceneHooked{
		Anchor:   anchor,
		Instance: uint64(id),
		Entities: n,
		Version:  v.String(),
	})
}

// Register installs the reload system on r.
func Register(r *system.Runner, w *ecs.World, instances Instances, bus *event.Bus, log *zap.Logger) *System {
	s := NewSystem(w, instances, bus, log)
	r.Register(s)
	return s
}

// AnyHooked reports whether at least one reload hook is in the Hooked state.
func AnyHooked(w *ecs.World) bool {
	found := false
	ecs.StoreOf[Hook](w).Each(func(_ ecs.EntityID, h *Hook) {
		if h.State == Hooked {
			found = true
		}
	})
	return found
}

// WhenHooked gates a system on AnyHooked.
func WhenHooked(w *ecs.World) system.Condition {
	return func() bool { return AnyHooked(w) }
}
