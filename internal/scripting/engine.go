package scripting

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"
	"go.uber.org/zap"

	"github.com/scenehook/scenehook/internal/asset"
	"github.com/scenehook/scenehook/internal/core/event"
)

// ErrNoHookFunction is returned for scripts that do not define hook(entity).
var ErrNoHookFunction = errors.New("scripting: script defines no hook function")

var errClosed = errors.New("scripting: engine closed")

const hookFunction = "hook"

// Engine wraps a single gopher-lua VM running one hook script. The VM is not
// safe for concurrent use, so every call holds mu. Load swaps in a fresh VM.
type Engine struct {
	mu   sync.Mutex
	vm   *lua.LState
	name string
	log  *zap.Logger
}

// NewEngine compiles and runs code, which must define a global hook function.
func NewEngine(name string, code []byte, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{log: log}
	if err := e.Load(name, code); err != nil {
		return nil, err
	}
	return e, nil
}

// LoadFile is NewEngine over the contents of path.
func LoadFile(path string, log *zap.Logger) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return NewEngine(path, data, log)
}

func newVM(name string, code []byte) (*lua.LState, error) {
	vm := lua.NewState()
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	fn, err := vm.Load(bytes.NewReader(code), name)
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	vm.Push(fn)
	if err := vm.PCall(0, lua.MultRet, nil); err != nil {
		vm.Close()
		return nil, fmt.Errorf("run %s: %w", name, err)
	}
	if vm.GetGlobal(hookFunction).Type() != lua.LTFunction {
		vm.Close()
		return nil, fmt.Errorf("%s: %w", name, ErrNoHookFunction)
	}
	return vm, nil
}

// Load replaces the running script. On error the previous script stays.
func (e *Engine) Load(name string, code []byte) error {
	vm, err := newVM(name, code)
	if err != nil {
		return err
	}
	e.mu.Lock()
	old := e.vm
	e.vm = vm
	e.name = name
	e.mu.Unlock()
	if old != nil {
		old.Close()
	}
	e.log.Debug("loaded lua script", zap.String("file", name))
	return nil
}

func (e *Engine) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vm != nil {
		e.vm.Close()
		e.vm = nil
	}
}

// Call runs hook(entity). The script returns up to two arrays: components to
// insert and component kinds to remove.
func (e *Engine) Call(ent Entity) ([]Spec, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.vm == nil {
		return nil, nil, errClosed
	}
	vm := e.vm
	if err := vm.CallByParam(lua.P{
		Fn:      vm.GetGlobal(hookFunction),
		NRet:    2,
		Protect: true,
	}, ent.table(vm)); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", e.name, err)
	}
	inserts := vm.Get(-2)
	removes := vm.Get(-1)
	vm.Pop(2)

	specs, err := parseSpecs(inserts)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: inserts: %w", e.name, err)
	}
	kinds, err := parseKinds(removes)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: removes: %w", e.name, err)
	}
	return specs, kinds, nil
}

// Follow reloads the script whenever assets reports a new version of h.
// A failed reload is logged and the previous script keeps running.
func (e *Engine) Follow(bus *event.Bus, assets *asset.Server, h asset.Handle) {
	event.Subscribe(bus, func(ev asset.Event) {
		if ev.Handle != h || ev.Kind != asset.EventModified {
			return
		}
		src, ok := asset.Get[*Source](assets, h)
		if !ok {
			return
		}
		if err := e.Load(src.Name, src.Code); err != nil {
			e.log.Error("lua script reload failed", zap.String("file", src.Name), zap.Error(err))
			return
		}
		e.log.Info("lua script reloaded", zap.String("file", src.Name), zap.Stringer("version", ev.Version))
	})
}

// Source is a script held by the asset server.
type Source struct {
	Name string
	Code []byte
}

// Loader lets an asset.Server load .lua files. Scripts are only parsed here;
// they run when an Engine loads them.
type Loader struct{}

func (Loader) Extensions() []string { return []string{".lua"} }

func (Loader) Load(path string, data []byte) (any, error) {
	if _, err := parse.Parse(bytes.NewReader(data), path); err != nil {
		return nil, err
	}
	return &Source{Name: path, Code: data}, nil
}
