package reload

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/core/event"
	"github.com/scenehook/scenehook/internal/core/system"
	"github.com/scenehook/scenehook/internal/scene"
)

const boardV1 = `
nodes:
  - name: Board
    children:
      - name: Card
      - name: Pile
`

const boardV2 = `
nodes:
  - name: Board
    children:
      - name: Card
      - name: Card
      - name: Pile
`

type Marked struct{}

func TestWithSpawner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "board.yaml")
	write := func(body string) {
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write(boardV1)

	log := zaptest.NewLogger(t)
	srv := asset.NewServer(dir, log)
	srv.RegisterLoader(scene.Loader{})
	defer srv.Close()

	w := ecs.NewWorld()
	sp := scene.NewSpawner(w, srv, nil, log)
	r := system.NewRunner()
	r.SetSyncPoint(w.ApplyCommands)
	r.Register(scene.NewSpawnSystem(w, sp))
	Register(r, w, sp, event.NewBus(), log)

	hooks := 0
	h := srv.Load("board.yaml")
	a := SceneBundle{
		Scene: scene.Root{Handle: h},
		Reload: New(func(e ecs.EntityRef, cmds *ecs.EntityCommands, _ ecs.Reader, anchor ecs.EntityID) {
			if n, ok := ecs.Read[scene.Name](e); ok && n.Is("Card") {
				cmds.Insert(Marked{})
			}
			if e.ID() == anchor {
				hooks++
			}
		}),
	}.Spawn(w)
	marked := func() int { return ecs.StoreOf[Marked](w).Len() }

	settle := func() {
		srv.Wait()
		srv.Poll()
	}

	settle()
	r.Tick(0)
	if !IsHooked(w, a) || hooks != 1 || marked() != 1 {
		t.Fatalf("first load: hooked=%v hooks=%d marked=%d", IsHooked(w, a), hooks, marked())
	}

	write(boardV2)
	srv.Reload(h)
	settle()
	r.Tick(0)
	r.Tick(0)
	if hooks != 2 || marked() != 2 {
		t.Fatalf("after edit: hooks=%d marked=%d, want 2 and 2", hooks, marked())
	}

	RequestReload(w.Commands(), a)
	w.ApplyCommands()
	r.Tick(0)
	if marked() != 0 {
		t.Fatalf("respawn should clear the old entities, %d marked left", marked())
	}
	settle()
	r.Tick(0)
	if !IsHooked(w, a) || hooks != 3 || marked() != 2 {
		t.Fatalf("after respawn: hooked=%v hooks=%d marked=%d", IsHooked(w, a), hooks, marked())
	}

	RequestDelete(w.Commands(), a)
	w.ApplyCommands()
	r.Tick(0)
	if w.Alive(a) || sp.Len() != 0 || marked() != 0 {
		t.Fatalf("delete left anchor=%v instances=%d marked=%d", w.Alive(a), sp.Len(), marked())
	}
}
