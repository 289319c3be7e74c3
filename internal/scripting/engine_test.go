package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/core/event"
	"github.com/scenehook/scenehook/internal/hook"
	"github.com/scenehook/scenehook/internal/scene"
)

const cardScript = `
function hook(e)
  if e.name == "Card" then
    local hp = 3
    if e.extras.rarity == "legendary" then hp = 9 end
    return { "playable", { kind = "health", value = hp } }
  end
  if e.anchor then
    return nil, { "selected" }
  end
end
`

type (
	Playable struct{}
	Selected struct{}
	Health   struct{ HP int }
)

func testCatalog() *Catalog {
	c := NewCatalog()
	Tag[Playable](c, "playable")
	Tag[Selected](c, "selected")
	Register(c, "health", func(v any) (Health, error) {
		f, ok := v.(float64)
		if !ok {
			return Health{}, fmt.Errorf("health wants a number, got %T", v)
		}
		return Health{HP: int(f)}, nil
	})
	return c
}

func run(w *ecs.World, fn hook.Func, ids ...ecs.EntityID) {
	for _, id := range ids {
		if ref, ok := w.Entity(id); ok {
			fn(ref, w.Commands().Entity(id))
		}
	}
	w.ApplyCommands()
}

func TestScriptHook(t *testing.T) {
	e, err := NewEngine("cards.lua", []byte(cardScript), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	w := ecs.NewWorld()
	card := w.Spawn(scene.NewName("Card"))
	rare := w.Spawn(scene.NewName("Card"), scene.Extras{"rarity": "legendary"})
	pile := w.Spawn(scene.NewName("Pile"))
	fn := e.Hook(testCatalog())
	anchor := w.Spawn(hook.New(fn), Selected{})

	run(w, fn, card, rare, pile, anchor)

	if h, ok := ecs.Get[Health](w, card); !ok || h.HP != 3 || !ecs.Has[Playable](w, card) {
		t.Errorf("card: health=%v playable=%v", h, ecs.Has[Playable](w, card))
	}
	if h, ok := ecs.Get[Health](w, rare); !ok || h.HP != 9 {
		t.Errorf("legendary card health = %v", h)
	}
	if ecs.Has[Playable](w, pile) || ecs.Has[Health](w, pile) {
		t.Error("pile should be untouched")
	}
	if ecs.Has[Selected](w, anchor) {
		t.Error("anchor should have lost Selected")
	}
}

func TestScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		is   error
	}{
		{"no_hook", "x = 1", ErrNoHookFunction},
		{"syntax", "function hook(e", nil},
		{"runtime", "error('boom')", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.name+".lua", []byte(tt.code), zaptest.NewLogger(t))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("err = %v, want %v", err, tt.is)
			}
		})
	}
}

func TestHookErrorsAreLogged(t *testing.T) {
	code := `
function hook(e)
  if e.name == "bad" then error("nope") end
  if e.name == "odd" then return { "ghost", { value = 1 }, "playable" } end
  return { "ghost", "playable" }
end
`
	e, err := NewEngine("odd.lua", []byte(code), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	w := ecs.NewWorld()
	bad := w.Spawn(scene.NewName("bad"))
	odd := w.Spawn(scene.NewName("odd"))
	ok := w.Spawn(scene.NewName("fine"))
	run(w, e.Hook(testCatalog()), bad, odd, ok)

	if ecs.Has[Playable](w, bad) {
		t.Error("failing hook should not insert")
	}
	if ecs.Has[Playable](w, odd) {
		t.Error("malformed return should insert nothing")
	}
	if !ecs.Has[Playable](w, ok) {
		t.Error("unknown kinds should be skipped, known ones inserted")
	}
}

func TestLoadKeepsPreviousOnError(t *testing.T) {
	e, err := NewEngine("v1.lua", []byte(`function hook(e) return { "playable" } end`), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if err := e.Load("v2.lua", []byte("function hook(")); err == nil {
		t.Fatal("expected compile error")
	}
	if e.Name() != "v1.lua" {
		t.Errorf("name = %q, want v1.lua", e.Name())
	}
	specs, _, err := e.Call(Entity{})
	if err != nil || len(specs) != 1 || specs[0].Kind != "playable" {
		t.Errorf("specs = %v err = %v", specs, err)
	}

	e.Close()
	if _, _, err := e.Call(Entity{}); err == nil {
		t.Error("Call after Close should fail")
	}
}

func TestParseSpecs(t *testing.T) {
	e, err := NewEngine("specs.lua", []byte(`
function hook(e)
  return { "a", { "b", 2 }, { kind = "c", value = { x = 1 } }, { kind = "d", value = { 1, 2 } } }, { "e" }
end
`), zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	specs, removes, err := e.Call(Entity{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(specs) != 4 {
		t.Fatalf("specs = %v", specs)
	}
	if specs[0].Kind != "a" || specs[0].Value != nil {
		t.Errorf("specs[0] = %+v", specs[0])
	}
	if specs[1].Kind != "b" || specs[1].Value != 2.0 {
		t.Errorf("specs[1] = %+v", specs[1])
	}
	if m, ok := specs[2].Value.(map[string]any); !ok || m["x"] != 1.0 {
		t.Errorf("specs[2] = %+v", specs[2])
	}
	if l, ok := specs[3].Value.([]any); !ok || len(l) != 2 {
		t.Errorf("specs[3] = %+v", specs[3])
	}
	if len(removes) != 1 || removes[0] != "e" {
		t.Errorf("removes = %v", removes)
	}
}

func TestFollowReloadsScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hook.lua")
	if err := os.WriteFile(path, []byte(`function hook(e) return { "playable" } end`), 0o644); err != nil {
		t.Fatal(err)
	}
	log := zaptest.NewLogger(t)
	srv := asset.NewServer(dir, log)
	srv.RegisterLoader(Loader{})
	defer srv.Close()

	h := srv.Load("hook.lua")
	srv.Wait()
	srv.Poll()

	e, err := LoadFile(path, log)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	defer e.Close()
	bus := event.NewBus()
	e.Follow(bus, srv, h)

	if err := os.WriteFile(path, []byte(`function hook(e) return { "selected" } end`), 0o644); err != nil {
		t.Fatal(err)
	}
	srv.Reload(h)
	srv.Wait()
	for _, ev := range srv.Poll() {
		event.Emit(bus, ev)
	}
	bus.SwapBuffers()
	bus.DispatchAll()

	specs, _, err := e.Call(Entity{})
	if err != nil || len(specs) != 1 || specs[0].Kind != "selected" {
		t.Fatalf("after reload specs = %v err = %v", specs, err)
	}
}

func TestLoaderRejectsSyntaxErrors(t *testing.T) {
	if _, err := (Loader{}).Load("bad.lua", []byte("function (")); err == nil {
		t.Error("expected parse error")
	}
	v, err := (Loader{}).Load("ok.lua", []byte("function hook(e) end"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if src, ok := v.(*Source); !ok || src.Name != "ok.lua" {
		t.Errorf("value = %#v", v)
	}
}
