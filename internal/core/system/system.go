package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseFirst      Phase = iota // 0: asset polling, event dispatch
	PhasePreUpdate               // 1: user code requesting scenes
	PhaseSpawnScene              // 2: scene instantiation
	PhaseSceneHook               // 3: hooks over freshly instantiated scenes
	PhaseUpdate                  // 4: game logic, may gate on hook completion
	PhasePostUpdate              // 5: reporting
	PhaseCleanup                 // 6: flush deferred commands and destroy queue
)

var phaseNames = [...]string{
	PhaseFirst:      "first",
	PhasePreUpdate:  "pre_update",
	PhaseSpawnScene: "spawn_scene",
	PhaseSceneHook:  "scene_hook",
	PhaseUpdate:     "update",
	PhasePostUpdate: "post_update",
	PhaseCleanup:    "cleanup",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}

// Condition gates a system for the current tick.
type Condition func() bool

type conditional struct {
	System
	cond Condition
}

func (c *conditional) Update(dt time.Duration) {
	if c.cond() {
		c.System.Update(dt)
	}
}

// RunIf wraps s so it only updates on ticks where cond holds.
func RunIf(s System, cond Condition) System {
	if cond == nil {
		return s
	}
	return &conditional{System: s, cond: cond}
}
