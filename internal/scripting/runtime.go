package scripting

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	lua "github.com/yuin/gopher-lua"
)

// ReloadOutcome describes what a reload request did.
type ReloadOutcome int

const (
	OutcomeUnchanged ReloadOutcome = iota // content identical, nothing executed
	OutcomeLoaded                         // first load of the name
	OutcomeReloaded                       // new content executed
	OutcomeFailed                         // load failed, previous state kept
)

func (o ReloadOutcome) String() string {
	switch o {
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeLoaded:
		return "loaded"
	case OutcomeReloaded:
		return "reloaded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Runtime wraps a single gopher-lua VM with the host functions installed.
// It is not safe for concurrent use; every call must come from the host's
// simulation goroutine.
type Runtime struct {
	vm      *lua.LState
	tracker *Tracker
	logger  *log.Logger
	closed  bool
}

// NewRuntime creates an interpreter wired to b. Script log() output goes to
// logger under a "lua" prefix.
func NewRuntime(b *Bridge, logger *log.Logger) (rt *Runtime, err error) {
	if b == nil {
		return nil, fmt.Errorf("scripting: nil bridge")
	}
	if logger == nil {
		logger = log.Default()
	}

	defer func() {
		if r := recover(); r != nil {
			rt, err = nil, fmt.Errorf("scripting: create interpreter: %v", r)
		}
	}()

	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	registerHostFunctions(vm, b, logger.WithPrefix("lua"))

	return &Runtime{
		vm:      vm,
		tracker: NewTracker(),
		logger:  logger,
	}, nil
}

// Tracker exposes the loaded-source records.
func (r *Runtime) Tracker() *Tracker {
	return r.tracker
}

// Close releases the interpreter. Later calls return ErrClosed.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.vm.Close()
}

// Load parses and executes source under name. Global bindings the chunk
// creates are staged and committed only when it completes, so a failing
// load leaves previously loaded definitions callable and unchanged.
func (r *Runtime) Load(name, source string) error {
	if r.closed {
		return ErrClosed
	}
	fn, err := r.vm.Load(strings.NewReader(source), name)
	if err != nil {
		return &LoadError{Name: name, Phase: PhaseSyntax, Err: err}
	}

	env := newStagingEnv(r.vm)
	fn.Env = env.table
	if err := r.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return &LoadError{Name: name, Phase: PhaseRuntime, Err: err}
	}
	env.commit(r.vm)

	rec := r.tracker.Record(name, source)
	r.logger.Debug("loaded script", "script", name, "hash", rec.Hash[:12])
	return nil
}

// LoadFile reads path and loads it under name.
func (r *Runtime) LoadFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &LoadError{Name: name, Phase: PhaseRead, Err: err}
	}
	return r.Load(name, string(data))
}

// Reload loads source under name unless it is identical to what is
// already loaded.
func (r *Runtime) Reload(name, source string) (ReloadOutcome, error) {
	if r.tracker.Unchanged(name, source) {
		return OutcomeUnchanged, nil
	}
	_, existed := r.tracker.Get(name)
	if err := r.Load(name, source); err != nil {
		return OutcomeFailed, err
	}
	if !existed {
		return OutcomeLoaded, nil
	}
	return OutcomeReloaded, nil
}

// HasFunction reports whether name is a callable global.
func (r *Runtime) HasFunction(name string) bool {
	_, err := r.function(name)
	return err == nil
}

func (r *Runtime) function(name string) (*lua.LFunction, error) {
	if r.closed {
		return nil, ErrClosed
	}
	v := r.vm.GetGlobal(name)
	if v == lua.LNil {
		return nil, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
	}
	fn, ok := v.(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotFunction, name, v.Type())
	}
	return fn, nil
}

// Call invokes a zero-argument global function.
func (r *Runtime) Call(name string) error {
	fn, err := r.function(name)
	if err != nil {
		return err
	}
	if err := r.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
		return &CallError{Func: name, Err: err}
	}
	return nil
}

// CallSpawn invokes a zero-argument global function that returns an entity id.
func (r *Runtime) CallSpawn(name string) (ScriptID, error) {
	fn, err := r.function(name)
	if err != nil {
		return 0, err
	}
	if err := r.vm.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}); err != nil {
		return 0, &CallError{Func: name, Err: err}
	}
	ret := r.vm.Get(-1)
	r.vm.Pop(1)

	n, ok := ret.(lua.LNumber)
	v := float64(n)
	if !ok || v < 0 || v > math.MaxUint32 || v != math.Trunc(v) {
		return 0, fmt.Errorf("%w: %s returned %s, expected entity id", ErrReturnType, name, ret.Type())
	}
	return ScriptID(v), nil
}

// CallUpdate invokes a global function with an entity id and a delta.
func (r *Runtime) CallUpdate(name string, id ScriptID, dt float64) error {
	fn, err := r.function(name)
	if err != nil {
		return err
	}
	if err := r.vm.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, lua.LNumber(id), lua.LNumber(dt)); err != nil {
		return &CallError{Func: name, Err: err}
	}
	return nil
}

// stagingEnv is the environment a chunk runs in while it loads. Writes to
// globals are buffered; reads see the buffer first, then the real globals.
// After commit the table forwards reads and writes straight to the real
// globals, so functions defined by the chunk behave as ordinary globals.
type stagingEnv struct {
	table     *lua.LTable
	globals   *lua.LTable
	pending   map[lua.LValue]lua.LValue
	order     []lua.LValue
	committed bool
}

func newStagingEnv(L *lua.LState) *stagingEnv {
	s := &stagingEnv{
		globals: L.G.Global,
		pending: make(map[lua.LValue]lua.LValue),
	}
	mt := L.NewTable()
	mt.RawSetString("__index", L.NewFunction(s.index))
	mt.RawSetString("__newindex", L.NewFunction(s.newIndex))
	s.table = L.NewTable()
	L.SetMetatable(s.table, mt)
	return s
}

func (s *stagingEnv) index(L *lua.LState) int {
	key := L.Get(2)
	if !s.committed {
		if v, ok := s.pending[key]; ok {
			L.Push(v)
			return 1
		}
	}
	L.Push(L.GetTable(s.globals, key))
	return 1
}

func (s *stagingEnv) newIndex(L *lua.LState) int {
	key, val := L.Get(2), L.Get(3)
	if s.committed {
		L.SetTable(s.globals, key, val)
		return 0
	}
	if _, seen := s.pending[key]; !seen {
		s.order = append(s.order, key)
	}
	s.pending[key] = val
	return 0
}

func (s *stagingEnv) commit(L *lua.LState) {
	for _, key := range s.order {
		L.SetTable(s.globals, key, s.pending[key])
	}
	s.committed = true
	s.pending = nil
	s.order = nil
}
