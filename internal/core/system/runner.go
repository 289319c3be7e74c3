package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick.
type Runner struct {
	systems []System
	sorted  bool
	sync    func()
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
	}
}

func (r *Runner) Register(s System) {
	if s == nil {
		return
	}
	r.systems = append(r.systems, s)
	r.sorted = false
}

// SetSyncPoint installs fn to run after every phase that had systems, so
// deferred world changes from one phase are visible to the next.
func (r *Runner) SetSyncPoint(fn func()) {
	r.sync = fn
}

// Systems returns the registered systems in execution order.
func (r *Runner) Systems() []System {
	r.ensureSorted()
	out := make([]System, len(r.systems))
	copy(out, r.systems)
	return out
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	for i, s := range r.systems {
		s.Update(dt)
		last := i == len(r.systems)-1
		if r.sync != nil && (last || r.systems[i+1].Phase() != s.Phase()) {
			r.sync()
		}
	}
}

// TickPhase runs only the systems of the given phase, followed by the sync point.
func (r *Runner) TickPhase(phase Phase, dt time.Duration) {
	r.ensureSorted()
	ran := false
	for _, s := range r.systems {
		if s.Phase() == phase {
			s.Update(dt)
			ran = true
		}
	}
	if ran && r.sync != nil {
		r.sync()
	}
}

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
