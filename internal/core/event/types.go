package event

import "github.com/scenehook/scenehook/internal/core/ecs"

// SceneHooked is emitted when a hook finished walking a scene instance.
// Version is empty for hooks that do not track asset versions.
type SceneHooked struct {
	Anchor   ecs.EntityID
	Instance uint64
	Entities int
	Version  string
}

// SceneUnhooked is emitted when a reload-aware hook notices its scene went
// stale and will be walked again.
type SceneUnhooked struct {
	Anchor   ecs.EntityID
	Instance uint64
}

// SceneDeleted is emitted when a reload-aware hook despawned its scene and anchor.
type SceneDeleted struct {
	Anchor ecs.EntityID
}
