package asset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoLoader is returned for paths whose extension has no registered Loader.
var ErrNoLoader = errors.New("asset: no loader for extension")

// Loader turns file bytes into an asset value.
type Loader interface {
	Extensions() []string
	Load(path string, data []byte) (any, error)
}

// EventKind tells what happened to an asset during Poll.
type EventKind int

const (
	EventLoaded   EventKind = iota // first successful load
	EventModified                  // reload produced a new Version
	EventFailed                    // load or reload failed
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventModified:
		return "modified"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports one asset state change observed by Poll.
type Event struct {
	Kind    EventKind
	Handle  Handle
	Version Version
	Err     error
}

type entry struct {
	handle    Handle
	state     LoadState
	value     any
	version   Version
	err       error
	gen       uint64 // latest load request
	loadedGen uint64 // request that produced value; 0 = never loaded
}

type result struct {
	id      ID
	gen     uint64
	value   any
	version Version
	err     error
}

// Server loads assets from a root directory on background goroutines.
// Everything except the load goroutines runs on the game loop goroutine:
// results only become visible through Poll.
type Server struct {
	root    string
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	loaders map[string]Loader

	byPath  map[string]ID
	entries map[ID]*entry
	nextID  ID
	watcher *Watcher

	mu      sync.Mutex // guards results
	results []result
	wg      sync.WaitGroup
}

func NewServer(root string, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		root:    root,
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		loaders: make(map[string]Loader),
		byPath:  make(map[string]ID),
		entries: make(map[ID]*entry),
	}
}

func (s *Server) Root() string { return s.root }

// RegisterLoader makes l handle every extension it lists. Register loaders
// before the first Load or Watch.
func (s *Server) RegisterLoader(l Loader) {
	for _, ext := range l.Extensions() {
		s.loaders[strings.ToLower(ext)] = l
	}
}

// Load returns the handle for path and starts loading it if this is the first
// request for that path.
func (s *Server) Load(p string) Handle {
	clean := cleanPath(p)
	if id, ok := s.byPath[clean]; ok {
		return s.entries[id].handle
	}
	s.nextID++
	h := Handle{id: s.nextID, path: clean}
	e := &entry{handle: h}
	s.byPath[clean] = h.id
	s.entries[h.id] = e
	s.request(e)
	return h
}

// Reload reads the asset again and returns the generation that will hold the
// result. The previous value keeps being served until then.
func (s *Server) Reload(h Handle) uint64 {
	e, ok := s.entries[h.id]
	if !ok {
		return 0
	}
	return s.request(e)
}

func (s *Server) request(e *entry) uint64 {
	e.gen++
	if e.state != StateLoaded {
		e.state = StateLoading
	}
	loader, ok := s.loaders[strings.ToLower(path.Ext(e.handle.path))]
	s.wg.Add(1)
	go s.load(e.handle, e.gen, loader, ok)
	return e.gen
}

func (s *Server) load(h Handle, gen uint64, loader Loader, hasLoader bool) {
	defer s.wg.Done()
	res := result{id: h.id, gen: gen}
	switch {
	case s.ctx.Err() != nil:
		res.err = s.ctx.Err()
	case !hasLoader:
		res.err = fmt.Errorf("%w %q", ErrNoLoader, path.Ext(h.path))
	default:
		data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(h.path)))
		if err != nil {
			res.err = fmt.Errorf("read %s: %w", h.path, err)
			break
		}
		value, err := loader.Load(h.path, data)
		if err != nil {
			res.err = fmt.Errorf("load %s: %w", h.path, err)
			break
		}
		res.value = value
		res.version = VersionOf(h.path, data)
	}

	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
}

// Poll applies finished loads and file change notifications. Call it once per
// tick from the game loop.
func (s *Server) Poll() []Event {
	s.drainWatcher()

	s.mu.Lock()
	results := s.results
	s.results = nil
	s.mu.Unlock()

	var events []Event
	for _, r := range results {
		e, ok := s.entries[r.id]
		if !ok || r.gen != e.gen {
			continue // superseded by a newer request
		}
		if r.err != nil {
			e.state = StateFailed
			e.err = r.err
			s.log.Warn("asset load failed", zap.String("path", e.handle.path), zap.Error(r.err))
			events = append(events, Event{Kind: EventFailed, Handle: e.handle, Version: e.version, Err: r.err})
			continue
		}

		wasLoaded := e.loadedGen > 0
		e.state = StateLoaded
		e.err = nil
		e.loadedGen = r.gen
		if wasLoaded && e.version == r.version {
			s.log.Debug("asset unchanged", zap.String("path", e.handle.path), zap.Stringer("version", r.version))
			continue
		}
		e.value = r.value
		e.version = r.version

		kind := EventLoaded
		if wasLoaded {
			kind = EventModified
		}
		s.log.Debug("asset "+kind.String(), zap.String("path", e.handle.path), zap.Stringer("version", r.version))
		events = append(events, Event{Kind: kind, Handle: e.handle, Version: r.version})
	}
	return events
}

// Wait blocks until every load started so far has finished. The results still
// need a Poll to become visible.
func (s *Server) Wait() {
	s.wg.Wait()
}

func (s *Server) State(h Handle) LoadState {
	if e, ok := s.entries[h.id]; ok {
		return e.state
	}
	return StateNotLoaded
}

func (s *Server) Err(h Handle) error {
	if e, ok := s.entries[h.id]; ok {
		return e.err
	}
	return nil
}

// Get returns the most recently loaded value of h.
func (s *Server) Get(h Handle) (any, bool) {
	e, ok := s.entries[h.id]
	if !ok || e.loadedGen == 0 {
		return nil, false
	}
	return e.value, true
}

// Version returns the content identity of the value Get would return.
func (s *Server) Version(h Handle) (Version, bool) {
	e, ok := s.entries[h.id]
	if !ok || e.loadedGen == 0 {
		return Version{}, false
	}
	return e.version, true
}

// Generation returns the load request whose result is currently held, 0 if
// the asset never loaded.
func (s *Server) Generation(h Handle) uint64 {
	if e, ok := s.entries[h.id]; ok {
		return e.loadedGen
	}
	return 0
}

// Lookup returns the handle of an already requested path.
func (s *Server) Lookup(p string) (Handle, bool) {
	id, ok := s.byPath[cleanPath(p)]
	if !ok {
		return Handle{}, false
	}
	return s.entries[id].handle, true
}

// Get returns h's value asserted to T.
func Get[T any](s *Server, h Handle) (T, bool) {
	var zero T
	v, ok := s.Get(h)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

// Watch reloads requested assets whenever their file changes under the root.
func (s *Server) Watch(debounce time.Duration) error {
	if s.watcher != nil {
		return nil
	}
	exts := make(map[string]Loader, len(s.loaders))
	for k, v := range s.loaders {
		exts[k] = v
	}
	w, err := NewWatcher(s.root, debounce, func(p string) bool { return hasExt(p, exts) })
	if err != nil {
		return fmt.Errorf("watch %s: %w", s.root, err)
	}
	s.watcher = w
	s.log.Info("watching assets", zap.String("root", s.root), zap.Duration("debounce", debounce))
	return nil
}

func (s *Server) drainWatcher() {
	if s.watcher == nil {
		return
	}
	for {
		select {
		case name, ok := <-s.watcher.Events:
			if !ok {
				s.watcher = nil
				return
			}
			s.fileChanged(name)
		case err, ok := <-s.watcher.Errors:
			if !ok {
				s.watcher = nil
				return
			}
			s.log.Warn("asset watcher error", zap.Error(err))
		default:
			return
		}
	}
}

func (s *Server) fileChanged(name string) {
	rel, err := filepath.Rel(s.root, name)
	if err != nil {
		return
	}
	id, ok := s.byPath[cleanPath(rel)]
	if !ok {
		return
	}
	e := s.entries[id]
	s.log.Info("asset changed on disk", zap.String("path", e.handle.path))
	s.request(e)
}

// Close stops the watcher and waits for in-flight loads.
func (s *Server) Close() error {
	s.cancel()
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
		s.watcher = nil
	}
	s.wg.Wait()
	return err
}

func cleanPath(p string) string {
	return strings.TrimPrefix(path.Clean(filepath.ToSlash(p)), "./")
}
