package system

import (
	"testing"
	"time"
)

type recorder struct {
	phase Phase
	name  string
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }

func (r recorder) Update(time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{PhaseCleanup, "cleanup", &log})
	r.Register(recorder{PhaseSceneHook, "hook", &log})
	r.Register(recorder{PhaseSpawnScene, "spawn", &log})
	r.Register(recorder{PhaseSceneHook, "hook2", &log})
	r.Register(nil)
	r.SetSyncPoint(func() { log = append(log, "|") })

	r.Tick(time.Millisecond)

	want := []string{"spawn", "|", "hook", "hook2", "|", "cleanup", "|"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("log = %v, want %v", log, want)
		}
	}
	if len(r.Systems()) != 4 {
		t.Errorf("Systems = %d", len(r.Systems()))
	}
}

func TestTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{PhaseFirst, "first", &log})
	r.Register(recorder{PhaseUpdate, "update", &log})
	r.SetSyncPoint(func() { log = append(log, "|") })

	r.TickPhase(PhaseUpdate, 0)
	r.TickPhase(PhasePostUpdate, 0)
	if len(log) != 2 || log[0] != "update" {
		t.Errorf("log = %v", log)
	}
}

func TestRunIf(t *testing.T) {
	var log []string
	on := false
	s := RunIf(recorder{PhaseUpdate, "gated", &log}, func() bool { return on })
	if s.Phase() != PhaseUpdate {
		t.Fatal("RunIf must keep the phase")
	}
	s.Update(0)
	on = true
	s.Update(0)
	if len(log) != 1 {
		t.Errorf("log = %v, want one run", log)
	}
	if RunIf(s, nil) != s {
		t.Error("nil condition should return the system unchanged")
	}
}

func TestPhaseString(t *testing.T) {
	if PhaseSceneHook.String() != "scene_hook" || Phase(42).String() != "unknown" {
		t.Error("phase names wrong")
	}
}
