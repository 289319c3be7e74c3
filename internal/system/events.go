package system

import (
	"time"

	"github.com/scenehook/scenehook/internal/core/event"
	coresys "github.com/scenehook/scenehook/internal/core/system"
)

// EventDispatchSystem makes last tick's events readable and delivers them to
// subscribers. Phase 0 (First); register it before anything that emits.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseFirst }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
