package scripting

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/scenehook/scenehook/internal/core/ecs"
	"github.com/scenehook/scenehook/internal/scene"
)

// Entity is the snapshot of an entity a script gets to see.
type Entity struct {
	ID     string
	Name   string
	Anchor bool
	Tags   []string
	Extras map[string]any
}

func entityOf(e ecs.EntityRef, anchor bool) Entity {
	ent := Entity{ID: e.ID().String(), Anchor: anchor}
	if n, ok := ecs.Read[scene.Name](e); ok {
		ent.Name = n.Value
	}
	if t, ok := ecs.Read[scene.Tags](e); ok {
		ent.Tags = t
	}
	if x, ok := ecs.Read[scene.Extras](e); ok {
		ent.Extras = x
	}
	return ent
}

func (ent Entity) table(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(ent.ID))
	t.RawSetString("name", lua.LString(ent.Name))
	t.RawSetString("anchor", lua.LBool(ent.Anchor))

	tags := L.NewTable()
	for _, tag := range ent.Tags {
		tags.Append(lua.LString(tag))
	}
	t.RawSetString("tags", tags)

	extras := L.NewTable()
	keys := make([]string, 0, len(ent.Extras))
	for k := range ent.Extras {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		extras.RawSetString(k, toLua(L, ent.Extras[k]))
	}
	t.RawSetString("extras", extras)
	return t
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case int64:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case []any:
		t := L.NewTable()
		for _, e := range x {
			t.Append(toLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		for k, e := range x {
			t.RawSetString(k, toLua(L, e))
		}
		return t
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

// fromLua converts a script value to Go. Numbers become float64, tables with
// an array part become []any and other tables map[string]any.
func fromLua(v lua.LValue) any {
	switch v.Type() {
	case lua.LTNil:
		return nil
	case lua.LTBool:
		return lua.LVAsBool(v)
	case lua.LTNumber:
		return float64(lua.LVAsNumber(v))
	case lua.LTString:
		return lua.LVAsString(v)
	case lua.LTTable:
		t := v.(*lua.LTable)
		if n := t.MaxN(); n > 0 {
			out := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				out = append(out, fromLua(t.RawGetInt(i)))
			}
			return out
		}
		out := make(map[string]any)
		t.ForEach(func(k, val lua.LValue) {
			out[k.String()] = fromLua(val)
		})
		return out
	default:
		return v.String()
	}
}
