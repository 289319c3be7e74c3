package main

import (
	"testing"

	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/hook"
	"github.com/scenehook/scenehook/internal/hook/reload"
	"github.com/scenehook/scenehook/internal/scene"
)

func TestNameTagger(t *testing.T) {
	w := ecs.NewWorld()
	card := w.Spawn(scene.NewName("Card"))
	pile := w.Spawn(scene.NewName("Pile"))
	plain := w.Spawn()

	calls := 0
	fn := chain(nameTagger([]string{"Card"}), func(ecs.EntityRef, *ecs.EntityCommands) { calls++ })
	for _, id := range []ecs.EntityID{card, pile, plain} {
		ref, _ := w.Entity(id)
		fn(ref, w.Commands().Entity(id))
	}
	w.ApplyCommands()

	if tg, ok := ecs.Get[Tagged](w, card); !ok || tg.Tag != "Card" {
		t.Errorf("card tag = %v", tg)
	}
	if ecs.Has[Tagged](w, pile) || ecs.Has[Tagged](w, plain) {
		t.Error("only Card should be tagged")
	}
	if calls != 3 {
		t.Errorf("chained hook ran %d times, want 3", calls)
	}
}

func TestDemoCatalog(t *testing.T) {
	c := demoCatalog()
	if got := c.Kinds(); len(got) != 3 {
		t.Fatalf("kinds = %v", got)
	}
}

func TestWhenAnyHooked(t *testing.T) {
	w := ecs.NewWorld()
	cond := whenAnyHooked(w)
	if cond() {
		t.Fatal("empty world reported hooked")
	}

	w.Spawn(reload.Hook{State: reload.Loading})
	if cond() {
		t.Fatal("loading reload hook reported hooked")
	}

	w.Spawn(reload.Hook{State: reload.Hooked})
	if !cond() {
		t.Fatal("hooked reload scene not seen")
	}

	plain := ecs.NewWorld()
	plain.Spawn(hook.SceneHooked{})
	if !whenAnyHooked(plain)() {
		t.Fatal("hooked plain scene not seen")
	}
}
