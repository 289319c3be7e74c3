package ecs

// Each2 iterates over entities that have both component A and B.
// It iterates over the smaller store and checks the larger one.
func Each2[A, B any](sa Store[A], sb Store[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for id, a := range sa.col.data {
			if b, ok := sb.col.data[id]; ok {
				fn(id, a.(*A), b.(*B))
			}
		}
	} else {
		for id, b := range sb.col.data {
			if a, ok := sa.col.data[id]; ok {
				fn(id, a.(*A), b.(*B))
			}
		}
	}
}

// Each3 iterates over entities that have components A, B, and C.
func Each3[A, B, C any](sa Store[A], sb Store[B], sc Store[C], fn func(EntityID, *A, *B, *C)) {
	// Iterate the smallest store
	smallest := sa.Len()
	which := 0
	if sb.Len() < smallest {
		smallest = sb.Len()
		which = 1
	}
	if sc.Len() < smallest {
		which = 2
	}

	switch which {
	case 0:
		for id, a := range sa.col.data {
			if b, ok := sb.col.data[id]; ok {
				if c, ok := sc.col.data[id]; ok {
					fn(id, a.(*A), b.(*B), c.(*C))
				}
			}
		}
	case 1:
		for id, b := range sb.col.data {
			if a, ok := sa.col.data[id]; ok {
				if c, ok := sc.col.data[id]; ok {
					fn(id, a.(*A), b.(*B), c.(*C))
				}
			}
		}
	case 2:
		for id, c := range sc.col.data {
			if a, ok := sa.col.data[id]; ok {
				if b, ok := sb.col.data[id]; ok {
					fn(id, a.(*A), b.(*B), c.(*C))
				}
			}
		}
	}
}

// Without filters fn down to entities lacking a component in store.
func Without[T, X any](store Store[X], fn func(EntityID, *T)) func(EntityID, *T) {
	return func(id EntityID, c *T) {
		if !store.Has(id) {
			fn(id, c)
		}
	}
}
