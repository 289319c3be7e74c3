package scripting

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/hook"
	"github.com/scenehook/scenehook/internal/hook/reload"
)

// ErrUnknownKind is returned for component kinds missing from a Catalog.
var ErrUnknownKind = errors.New("scripting: unknown component kind")

// Spec is one component a script asked for: a kind from the Catalog and the
// value passed to its factory.
type Spec struct {
	Kind  string
	Value any
}

type factory struct {
	build func(value any) (any, error)
	zero  any
}

// Catalog maps the component kinds scripts may name to Go components.
type Catalog struct {
	mu    sync.RWMutex
	kinds map[string]factory
}

func NewCatalog() *Catalog {
	return &Catalog{kinds: make(map[string]factory)}
}

// Register makes kind build a T from the script's value.
func Register[T any](c *Catalog, kind string, build func(value any) (T, error)) {
	var zero T
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kinds[kind] = factory{
		build: func(v any) (any, error) { return build(v) },
		zero:  zero,
	}
}

// Tag registers kind as the zero value of T, ignoring any script value.
func Tag[T any](c *Catalog, kind string) {
	Register(c, kind, func(any) (T, error) {
		var zero T
		return zero, nil
	})
}

func (c *Catalog) Kinds() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.kinds))
	for k := range c.kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *Catalog) Build(s Spec) (any, error) {
	c.mu.RLock()
	f, ok := c.kinds[s.Kind]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, s.Kind)
	}
	v, err := f.build(s.Value)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", s.Kind, err)
	}
	return v, nil
}

func (c *Catalog) zeroOf(kind string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.kinds[kind]
	return f.zero, ok
}

// Hook adapts the script to a hook.Func building components from c.
func (e *Engine) Hook(c *Catalog) hook.Func {
	return func(ent ecs.EntityRef, cmds *ecs.EntityCommands) {
		e.apply(c, entityOf(ent, ecs.Contains[hook.SceneHook](ent)), cmds)
	}
}

// ReloadHook adapts the script to a reload.Func building components from c.
func (e *Engine) ReloadHook(c *Catalog) reload.Func {
	return func(ent ecs.EntityRef, cmds *ecs.EntityCommands, _ ecs.Reader, anchor ecs.EntityID) {
		e.apply(c, entityOf(ent, ent.ID() == anchor), cmds)
	}
}

func (e *Engine) apply(c *Catalog, ent Entity, cmds *ecs.EntityCommands) {
	specs, removes, err := e.Call(ent)
	if err != nil {
		e.log.Error("lua hook error", zap.String("entity", ent.ID), zap.Error(err))
		return
	}
	for _, s := range specs {
		comp, err := c.Build(s)
		if err != nil {
			e.log.Warn("lua hook component skipped", zap.String("entity", ent.ID), zap.Error(err))
			continue
		}
		cmds.Insert(comp)
	}
	for _, kind := range removes {
		zero, ok := c.zeroOf(kind)
		if !ok {
			e.log.Warn("lua hook removal skipped", zap.String("entity", ent.ID), zap.String("kind", kind))
			continue
		}
		cmds.Remove(zero)
	}
}

// parseSpecs reads the inserts a script returned: an array whose elements are
// either a kind string or a table {kind = ..., value = ...} / {kind, value}.
func parseSpecs(v lua.LValue) ([]Spec, error) {
	if v.Type() == lua.LTNil {
		return nil, nil
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected table, got %s", v.Type())
	}
	var out []Spec
	for i := 1; i <= t.Len(); i++ {
		el := t.RawGetInt(i)
		switch el.Type() {
		case lua.LTString:
			out = append(out, Spec{Kind: lua.LVAsString(el)})
		case lua.LTTable:
			et := el.(*lua.LTable)
			kind := et.RawGetString("kind")
			value := et.RawGetString("value")
			if kind == lua.LNil {
				kind = et.RawGetInt(1)
				value = et.RawGetInt(2)
			}
			if kind.Type() != lua.LTString {
				return nil, fmt.Errorf("element %d: missing kind", i)
			}
			out = append(out, Spec{Kind: lua.LVAsString(kind), Value: fromLua(value)})
		default:
			return nil, fmt.Errorf("element %d: unexpected %s", i, el.Type())
		}
	}
	return out, nil
}

func parseKinds(v lua.LValue) ([]string, error) {
	if v.Type() == lua.LTNil {
		return nil, nil
	}
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("expected table, got %s", v.Type())
	}
	out := make([]string, 0, t.Len())
	for i := 1; i <= t.Len(); i++ {
		el := t.RawGetInt(i)
		if el.Type() != lua.LTString {
			return nil, fmt.Errorf("element %d: expected string, got %s", i, el.Type())
		}
		out = append(out, lua.LVAsString(el))
	}
	return out, nil
}
