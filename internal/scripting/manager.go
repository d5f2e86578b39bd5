package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cultivation/internal/game/character"
	"github.com/cory-johannsen/cultivation/internal/game/dice"
	"github.com/cory-johannsen/cultivation/internal/game/message"
)

// Hook names looked up as Lua globals.
const (
	HookOnDay          = "on_day"
	HookOnBreakthrough = "on_breakthrough"
)

// Manager owns one sandboxed LState and dispatches hooks into it.
//
// Manager is safe for concurrent use; hook calls are serialised because the
// LState is single-threaded and a call binds the progression it operates on.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	limit  int
	roller *dice.Roller
	sink   message.Sink
	logger *zap.Logger

	// bound is the progression visible to cultivator.* during a hook call.
	bound *character.Progression
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager; hook calls are no-ops until Load.
func NewManager(roller *dice.Roller, sink message.Sink, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: NewManager called with nil roller")
	}
	if logger == nil {
		panic("scripting: NewManager called with nil logger")
	}
	return &Manager{
		roller: roller,
		sink:   message.OrDiscard(sink),
		logger: logger,
	}
}

// Load creates a sandboxed VM, registers the engine.* and cultivator.*
// modules, then executes every *.lua file in scriptDir in lexicographic
// order. A previously loaded VM is replaced only when loading succeeds.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: returns an error on a read or Lua load failure.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	return m.install(instLimit, func(L *lua.LState) error {
		for _, path := range luaFiles {
			if err := L.DoFile(path); err != nil {
				return fmt.Errorf("scripting: loading %q: %w", path, err)
			}
		}
		return nil
	})
}

// LoadString is Load for a single in-memory chunk.
func (m *Manager) LoadString(src string, instLimit int) error {
	return m.install(instLimit, func(L *lua.LState) error {
		if err := L.DoString(src); err != nil {
			return fmt.Errorf("scripting: loading chunk: %w", err)
		}
		return nil
	})
}

func (m *Manager) install(instLimit int, load func(*lua.LState) error) error {
	L, release := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	err := load(L)
	release()
	if err != nil {
		L.Close()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
	}
	m.state = L
	m.limit = instLimit
	return nil
}

// Loaded reports whether a VM is installed.
func (m *Manager) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state != nil
}

// CallHook calls the named Lua global with p bound to cultivator.*. It
// returns (LNil, nil) if no VM is loaded or the hook is not defined. Lua
// runtime errors, including an exhausted instruction budget, are logged at
// Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(p *character.Progression, hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return lua.LNil, nil
	}
	L := m.state
	fn := L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return lua.LNil, nil
	}

	m.bound = p
	release := withBudget(L, m.limit)
	defer func() {
		release()
		m.bound = nil
	}()

	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// OnDay runs the on_day hook for p's current day.
func (m *Manager) OnDay(p *character.Progression) {
	m.CallHook(p, HookOnDay, lua.LNumber(p.Day)) //nolint:errcheck
}

// OnBreakthrough runs the on_breakthrough hook with the realm just reached.
func (m *Manager) OnBreakthrough(p *character.Progression, realm character.Realm) {
	m.CallHook(p, HookOnBreakthrough, lua.LString(realm.String())) //nolint:errcheck
}

// Close releases the VM. Subsequent hook calls are no-ops.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.state.Close()
		m.state = nil
	}
}
