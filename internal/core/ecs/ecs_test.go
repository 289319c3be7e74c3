package ecs

import (
	"reflect"
	"testing"
)

type Position struct{ X, Y float64 }
type Velocity struct{ DX, DY float64 }
type Frozen struct{}

func TestEntityPool(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	if a.IsZero() || a.Index() != 1 || a.Generation() != 0 {
		t.Fatalf("first id = %s", a)
	}
	if !p.Alive(a) || p.Alive(0) {
		t.Fatal("alive bookkeeping wrong")
	}
	if !p.Destroy(a) || p.Destroy(a) {
		t.Fatal("Destroy should succeed once")
	}
	b := p.Create()
	if b.Index() != a.Index() || b.Generation() != 1 {
		t.Fatalf("recycled id = %s, want index %d generation 1", b, a.Index())
	}
	if p.Alive(a) {
		t.Fatal("stale id reported alive")
	}
	if p.Len() != 1 {
		t.Errorf("Len = %d, want 1", p.Len())
	}
	if b.String() != "1v1" {
		t.Errorf("String = %q", b.String())
	}
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	id := w.Spawn(Position{1, 2}, &Velocity{3, 4})

	p, ok := Get[Position](w, id)
	if !ok || *p != (Position{1, 2}) {
		t.Fatalf("Position = %v", p)
	}
	p.X = 10
	if q, _ := Get[Position](w, id); q.X != 10 {
		t.Error("Get should return the stored pointer")
	}
	if !Has[Velocity](w, id) {
		t.Error("pointer components should be stored by value type")
	}

	w.Insert(id, Position{5, 5})
	if q, _ := Get[Position](w, id); *q != (Position{5, 5}) {
		t.Error("Insert should replace")
	}
	if !Remove[Velocity](w, id) || Has[Velocity](w, id) {
		t.Error("Remove failed")
	}

	w.Despawn(id)
	if Has[Position](w, id) || w.Insert(id, Frozen{}) {
		t.Error("components must not outlive or attach to a dead entity")
	}
}

func TestEntityRefIsReadOnly(t *testing.T) {
	w := NewWorld()
	id := w.Spawn(Position{1, 1})
	ref, ok := w.Entity(id)
	if !ok || ref.ID() != id || !ref.Valid() {
		t.Fatal("Entity should return a valid ref")
	}

	p, ok := Read[Position](ref)
	if !ok {
		t.Fatal("Read missed Position")
	}
	p.X = 99
	if q, _ := Get[Position](w, id); q.X != 1 {
		t.Error("mutating a Read copy changed the world")
	}
	if _, ok := Read[Velocity](ref); ok {
		t.Error("absent component should read as absent")
	}
	if !Contains[Position](ref) || Contains[Frozen](ref) {
		t.Error("Contains wrong")
	}
	if v, ok := ref.Component(reflect.TypeOf((*Position)(nil)).Elem()); !ok || v.(Position).X != 1 {
		t.Errorf("Component = %v", v)
	}
	if len(ref.Types()) != 1 {
		t.Errorf("Types = %v", ref.Types())
	}

	w.Despawn(id)
	if _, ok := w.Entity(id); ok {
		t.Error("dead entity should have no ref")
	}
}

func TestCommandsAreDeferred(t *testing.T) {
	w := NewWorld()
	id := w.Spawn()
	w.Commands().Entity(id).Insert(Position{1, 2}).Insert(Velocity{})
	if Has[Position](w, id) {
		t.Fatal("insert applied before flush")
	}
	w.ApplyCommands()
	if !Has[Position](w, id) || !Has[Velocity](w, id) {
		t.Fatal("insert not applied by flush")
	}

	c := w.Commands().Entity(id)
	c.Remove(Position{})
	RemoveComponent[Velocity](c)
	w.ApplyCommands()
	if Has[Position](w, id) || Has[Velocity](w, id) {
		t.Fatal("removes not applied")
	}
}

func TestCommandsOnDeadEntityDropped(t *testing.T) {
	w := NewWorld()
	id := w.Spawn()
	ran := false
	c := w.Commands().Entity(id)
	c.Despawn()
	c.Insert(Position{})
	c.Add(func(*World, EntityID) { ran = true })
	w.ApplyCommands()

	if w.Alive(id) || ran {
		t.Fatal("commands after despawn should be dropped")
	}
	if StoreOf[Position](w).Len() != 0 {
		t.Error("component attached to a dead entity")
	}
}

func TestCommandsQueuedDuringApply(t *testing.T) {
	w := NewWorld()
	id := w.Spawn()
	w.Commands().Push(CommandFunc(func(w *World) {
		w.Commands().Entity(id).Insert(Frozen{})
	}))
	w.ApplyCommands()
	if !Has[Frozen](w, id) || w.Commands().Len() != 0 {
		t.Fatal("nested command should run in the same flush")
	}
}

func TestHierarchy(t *testing.T) {
	w := NewWorld()
	root := w.Spawn()
	a := w.Spawn()
	b := w.Spawn()
	c := w.Spawn()
	SetParent(w, a, root)
	SetParent(w, b, root)
	SetParent(w, c, a)

	if got := Descendants(w, root); len(got) != 3 {
		t.Fatalf("Descendants = %v", got)
	}

	SetParent(w, c, b)
	if ch, _ := Get[Children](w, a); ch != nil {
		t.Errorf("a should have no children left, has %v", ch.IDs)
	}

	w.Commands().Entity(b).DespawnRecursive()
	w.ApplyCommands()
	if w.Alive(b) || w.Alive(c) || !w.Alive(a) {
		t.Fatal("recursive despawn wrong")
	}
	if ch, _ := Get[Children](w, root); len(ch.IDs) != 1 || ch.IDs[0] != a {
		t.Errorf("root children = %v", ch.IDs)
	}
}

func TestQueries(t *testing.T) {
	w := NewWorld()
	moving := w.Spawn(Position{}, Velocity{1, 0})
	w.Spawn(Position{})
	frozen := w.Spawn(Position{}, Velocity{0, 1}, Frozen{})

	seen := map[EntityID]bool{}
	Each2(StoreOf[Position](w), StoreOf[Velocity](w), func(id EntityID, _ *Position, _ *Velocity) {
		seen[id] = true
	})
	if len(seen) != 2 || !seen[moving] || !seen[frozen] {
		t.Errorf("Each2 = %v", seen)
	}

	n := 0
	Each3(StoreOf[Position](w), StoreOf[Velocity](w), StoreOf[Frozen](w), func(EntityID, *Position, *Velocity, *Frozen) { n++ })
	if n != 1 {
		t.Errorf("Each3 matched %d", n)
	}

	var unfrozen []EntityID
	StoreOf[Velocity](w).Each(Without(StoreOf[Frozen](w), func(id EntityID, _ *Velocity) {
		unfrozen = append(unfrozen, id)
	}))
	if len(unfrozen) != 1 || unfrozen[0] != moving {
		t.Errorf("Without = %v", unfrozen)
	}
}
