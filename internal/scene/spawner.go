package scene

import (
	"sort"

	"go.uber.org/zap"

	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/core/ecs"
)

type instance struct {
	id       InstanceID
	handle   asset.Handle
	parent   ecs.EntityID
	entities []ecs.EntityID
	version  asset.Version
	ready    bool
	waitGen  uint64 // asset generation the next instantiation needs
	stalled  bool
}

// Spawner turns loaded Scene assets into entities. It mutates the world
// directly and must only be driven from the game loop, outside any store
// iteration.
type Spawner struct {
	world     *ecs.World
	assets    *asset.Server
	decoders  *Decoders
	log       *zap.Logger
	instances map[InstanceID]*instance
	nextID    InstanceID
}

func NewSpawner(w *ecs.World, assets *asset.Server, decoders *Decoders, log *zap.Logger) *Spawner {
	if decoders == nil {
		decoders = NewDecoders()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Spawner{
		world:     w,
		assets:    assets,
		decoders:  decoders,
		log:       log,
		instances: make(map[InstanceID]*instance),
	}
}

func (s *Spawner) Decoders() *Decoders { return s.decoders }
func (s *Spawner) Len() int            { return len(s.instances) }

// SpawnAsChild requests an instance of the scene behind h. Its top-level
// nodes are attached under parent once the asset is loaded.
func (s *Spawner) SpawnAsChild(h asset.Handle, parent ecs.EntityID) InstanceID {
	s.nextID++
	s.instances[s.nextID] = &instance{
		id:      s.nextID,
		handle:  h,
		parent:  parent,
		waitGen: 1,
	}
	return s.nextID
}

// InstanceIsReady reports whether the instance's entities exist in the world.
func (s *Spawner) InstanceIsReady(id InstanceID) bool {
	inst, ok := s.instances[id]
	return ok && inst.ready
}

// IterInstanceEntities returns the entities spawned for the instance, parents
// before children. The anchor is not included. The slice is a copy.
func (s *Spawner) IterInstanceEntities(id InstanceID) []ecs.EntityID {
	inst, ok := s.instances[id]
	if !ok || !inst.ready {
		return nil
	}
	out := make([]ecs.EntityID, len(inst.entities))
	copy(out, inst.entities)
	return out
}

// InstanceVersion returns the asset version the instance was built from.
func (s *Spawner) InstanceVersion(id InstanceID) (asset.Version, bool) {
	inst, ok := s.instances[id]
	if !ok || !inst.ready {
		return asset.Version{}, false
	}
	return inst.version, true
}

func (s *Spawner) InstanceHandle(id InstanceID) (asset.Handle, bool) {
	inst, ok := s.instances[id]
	if !ok {
		return asset.Handle{}, false
	}
	return inst.handle, true
}

// Despawn destroys the instance's entities and forgets it. The anchor is left
// alone.
func (s *Spawner) Despawn(id InstanceID) {
	inst, ok := s.instances[id]
	if !ok {
		return
	}
	s.despawnEntities(inst)
	delete(s.instances, id)
}

// Respawn destroys the instance's entities, reloads its asset from disk and
// instantiates it again once that reload has landed.
func (s *Spawner) Respawn(id InstanceID) {
	inst, ok := s.instances[id]
	if !ok {
		return
	}
	s.despawnEntities(inst)
	inst.ready = false
	inst.stalled = false
	inst.version = asset.Version{}
	if gen := s.assets.Reload(inst.handle); gen > 0 {
		inst.waitGen = gen
	}
	s.log.Debug("scene respawn requested",
		zap.Stringer("instance", id),
		zap.String("path", inst.handle.Path()),
		zap.Uint64("wait_gen", inst.waitGen),
	)
}

// Update instantiates pending instances whose asset is available and rebuilds
// ready instances whose asset changed since they were built.
func (s *Spawner) Update() {
	ids := make([]InstanceID, 0, len(s.instances))
	for id := range s.instances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		inst := s.instances[id]
		if !inst.ready {
			s.tryInstantiate(inst)
			continue
		}
		v, ok := s.assets.Version(inst.handle)
		if !ok || v == inst.version {
			continue
		}
		s.log.Info("scene changed, re-instantiating",
			zap.Stringer("instance", id),
			zap.String("path", inst.handle.Path()),
			zap.Stringer("old", inst.version),
			zap.Stringer("new", v),
		)
		s.despawnEntities(inst)
		inst.ready = false
		s.tryInstantiate(inst)
	}
}

// reap forgets instances whose parent entity is gone, despawning what they
// spawned.
func (s *Spawner) reap() {
	for id, inst := range s.instances {
		if s.world.Alive(inst.parent) {
			continue
		}
		s.log.Debug("scene anchor gone, despawning instance", zap.Stringer("instance", id))
		s.despawnEntities(inst)
		delete(s.instances, id)
	}
}

func (s *Spawner) tryInstantiate(inst *instance) {
	if s.assets.Generation(inst.handle) < inst.waitGen {
		if !inst.stalled && s.assets.State(inst.handle) == asset.StateFailed {
			inst.stalled = true
			s.log.Warn("scene asset failed, instance stalled",
				zap.Stringer("instance", inst.id),
				zap.String("path", inst.handle.Path()),
				zap.Error(s.assets.Err(inst.handle)),
			)
		}
		return
	}
	sc, ok := asset.Get[*Scene](s.assets, inst.handle)
	if !ok {
		if !inst.stalled {
			inst.stalled = true
			s.log.Warn("asset is not a scene", zap.String("path", inst.handle.Path()))
		}
		return
	}
	if !s.world.Alive(inst.parent) {
		return
	}
	version, _ := s.assets.Version(inst.handle)

	inst.entities = inst.entities[:0]
	for i := range sc.Nodes {
		s.spawnNode(inst, &sc.Nodes[i], inst.parent)
	}
	inst.version = version
	inst.ready = true
	inst.stalled = false
	s.log.Debug("scene instantiated",
		zap.Stringer("instance", inst.id),
		zap.String("path", inst.handle.Path()),
		zap.Int("entities", len(inst.entities)),
		zap.Stringer("version", version),
	)
}

func (s *Spawner) spawnNode(inst *instance, n *Node, parent ecs.EntityID) {
	comps, errs := s.decoders.decodeNode(n)
	for kind, err := range errs {
		s.log.Warn("skipping malformed component",
			zap.String("path", inst.handle.Path()),
			zap.String("node", n.Name),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
	if n.Name != "" {
		comps = append(comps, NewName(n.Name))
	}
	id := s.world.Spawn(comps...)
	ecs.SetParent(s.world, id, parent)
	inst.entities = append(inst.entities, id)
	for i := range n.Children {
		s.spawnNode(inst, &n.Children[i], id)
	}
}

func (s *Spawner) despawnEntities(inst *instance) {
	for _, id := range inst.entities {
		ecs.DespawnRecursive(s.world, id)
	}
	inst.entities = nil
}
