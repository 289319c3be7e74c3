package system

import (
	"time"

	"github.com/scenehook/scenehook/internal/core/ecs"
	coresys "github.com/scenehook/scenehook/internal/core/system"
)

// CleanupSystem applies whatever is still queued on the world at tick end and
// flushes the deferred destruction queue. Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
}

func NewCleanupSystem(world *ecs.World) *CleanupSystem {
	return &CleanupSystem{world: world}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.world.ApplyCommands()
	s.world.FlushDestroyQueue()
}
