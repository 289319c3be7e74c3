package scene

import (
	"sort"
	"time"

	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/core/system"
)

// SpawnSystem gives every Root entity a scene instance and keeps instances in
// step with their assets. Phase 2 (SpawnScene).
type SpawnSystem struct {
	world   *ecs.World
	spawner *Spawner
}

func NewSpawnSystem(w *ecs.World, sp *Spawner) *SpawnSystem {
	return &SpawnSystem{world: w, spawner: sp}
}

func (s *SpawnSystem) Phase() system.Phase { return system.PhaseSpawnScene }

func (s *SpawnSystem) Update(_ time.Duration) {
	var pending []ecs.EntityID
	roots := ecs.StoreOf[Root](s.world)
	roots.Each(ecs.Without(ecs.StoreOf[Instance](s.world), func(id ecs.EntityID, _ *Root) {
		pending = append(pending, id)
	}))
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })

	for _, id := range pending {
		root, _ := roots.Get(id)
		inst := s.spawner.SpawnAsChild(root.Handle, id)
		ecs.Insert(s.world, id, Instance{ID: inst})
	}
	s.spawner.reap()
	s.spawner.Update()
}
