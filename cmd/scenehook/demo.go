package main

import (
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/scenehook/scenehook/internal/core/ecs"
	coresys "github.com/scenehook/scenehook/internal/core/system"
	"github.com/scenehook/scenehook/internal/hook"
	"github.com/scenehook/scenehook/internal/hook/reload"
	"github.com/scenehook/scenehook/internal/scene"
	"github.com/scenehook/scenehook/internal/scripting"
)

// Components the demo hooks attach.
type (
	// Tagged marks a node whose name matched a configured tag.
	Tagged struct{ Tag string }
	// Spinning is attached by scripts: {kind = "spinning", value = rpm}.
	Spinning struct{ RPM float64 }
	// Interactive is attached by scripts as a plain tag.
	Interactive struct{}
)

func demoCatalog() *scripting.Catalog {
	c := scripting.NewCatalog()
	scripting.Tag[Interactive](c, "interactive")
	scripting.Register(c, "spinning", func(v any) (Spinning, error) {
		rpm, ok := v.(float64)
		if !ok {
			return Spinning{}, fmt.Errorf("spinning wants a number, got %T", v)
		}
		return Spinning{RPM: rpm}, nil
	})
	scripting.Register(c, "tagged", func(v any) (Tagged, error) {
		s, ok := v.(string)
		if !ok {
			return Tagged{}, fmt.Errorf("tagged wants a string, got %T", v)
		}
		return Tagged{Tag: s}, nil
	})
	return c
}

// nameTagger tags every node whose name is one of names.
func nameTagger(names []string) hook.Func {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[scene.NewName(n).Value] = true
	}
	return func(e ecs.EntityRef, cmds *ecs.EntityCommands) {
		n, ok := ecs.Read[scene.Name](e)
		if ok && want[n.Value] {
			cmds.Insert(Tagged{Tag: n.Value})
		}
	}
}

func chain(fns ...hook.Func) hook.Func {
	return func(e ecs.EntityRef, cmds *ecs.EntityCommands) {
		for _, fn := range fns {
			fn(e, cmds)
		}
	}
}

func chainReload(fns ...reload.Func) reload.Func {
	return func(e ecs.EntityRef, cmds *ecs.EntityCommands, w ecs.Reader, anchor ecs.EntityID) {
		for _, fn := range fns {
			fn(e, cmds, w, anchor)
		}
	}
}

func asReload(fn hook.Func) reload.Func {
	return func(e ecs.EntityRef, cmds *ecs.EntityCommands, _ ecs.Reader, _ ecs.EntityID) {
		fn(e, cmds)
	}
}

// whenAnyHooked gates a system on a scene being hooked by either hook kind.
func whenAnyHooked(w *ecs.World) coresys.Condition {
	plain, reloading := hook.WhenHooked(w), reload.WhenHooked(w)
	return func() bool { return plain() || reloading() }
}

// reportSystem logs what the hooks attached whenever it changes. Phase 5
// (PostUpdate), gated on at least one scene being hooked.
type reportSystem struct {
	world *ecs.World
	log   *zap.Logger
	last  string
}

func (s *reportSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *reportSystem) Update(_ time.Duration) {
	var tags []string
	ecs.StoreOf[Tagged](s.world).Each(func(_ ecs.EntityID, t *Tagged) {
		tags = append(tags, t.Tag)
	})
	sort.Strings(tags)
	spinning := ecs.StoreOf[Spinning](s.world).Len()
	interactive := ecs.StoreOf[Interactive](s.world).Len()

	summary := fmt.Sprint(tags, spinning, interactive)
	if summary == s.last {
		return
	}
	s.last = summary
	s.log.Info("hooked components",
		zap.Strings("tagged", tags),
		zap.Int("spinning", spinning),
		zap.Int("interactive", interactive),
		zap.Int("entities", s.world.Len()),
	)
}
