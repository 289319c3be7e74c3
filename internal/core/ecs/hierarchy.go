package ecs

import "slices"

// Parent points at the entity this one is attached under.
type Parent struct {
	ID EntityID
}

// Children lists the entities attached under this one, in attach order.
type Children struct {
	IDs []EntityID
}

// SetParent attaches child under parent, detaching it from any previous parent.
func SetParent(w *World, child, parent EntityID) bool {
	if !w.Alive(child) || !w.Alive(parent) || child == parent {
		return false
	}
	RemoveChild(w, child)
	Insert(w, child, Parent{ID: parent})
	if ch, ok := Get[Children](w, parent); ok {
		ch.IDs = append(ch.IDs, child)
	} else {
		Insert(w, parent, Children{IDs: []EntityID{child}})
	}
	return true
}

// RemoveChild detaches child from its parent, leaving both alive.
func RemoveChild(w *World, child EntityID) {
	p, ok := Get[Parent](w, child)
	if !ok {
		return
	}
	if ch, ok := Get[Children](w, p.ID); ok {
		ch.IDs = slices.DeleteFunc(ch.IDs, func(id EntityID) bool { return id == child })
		if len(ch.IDs) == 0 {
			Remove[Children](w, p.ID)
		}
	}
	Remove[Parent](w, child)
}

// Descendants returns every live entity below root, breadth first.
func Descendants(w *World, root EntityID) []EntityID {
	var out []EntityID
	queue := []EntityID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		ch, ok := Get[Children](w, id)
		if !ok {
			continue
		}
		for _, c := range ch.IDs {
			if w.Alive(c) {
				out = append(out, c)
				queue = append(queue, c)
			}
		}
	}
	return out
}

// DespawnRecursive destroys id and all of its descendants immediately.
func DespawnRecursive(w *World, id EntityID) {
	if !w.Alive(id) {
		return
	}
	RemoveChild(w, id)
	for _, d := range Descendants(w, id) {
		w.Despawn(d)
	}
	w.Despawn(id)
}
