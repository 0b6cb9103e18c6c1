package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/knight/internal/game/creature"
	"github.com/cory-johannsen/knight/internal/game/derive"
)

// hookGlobals maps Lua global function names to the phase they run in.
var hookGlobals = []struct {
	name  string
	phase derive.Phase
}{
	{"base_data", derive.PhaseBaseData},
	{"embedded_documents", derive.PhaseEmbeddedDocuments},
}

// Manager owns one sandboxed Lua state holding the ruleset scripts.
//
// The Lua state is single-threaded; Manager serializes every load and hook
// call, so its hooks are safe for concurrent record preparation.
type Manager struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	logger *zap.Logger
}

// NewManager creates a Manager with an empty sandboxed state.
//
// Precondition: logger must be non-nil; instLimit >= 0 (0 uses DefaultInstructionLimit).
// Postcondition: Returns a Manager the caller must Close.
func NewManager(logger *zap.Logger, instLimit int) *Manager {
	return &Manager{L: NewSandboxedState(), limit: instLimit, logger: logger}
}

// Close releases the Lua state.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.L.Close()
}

// Load executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns an error naming the first file that fails to load.
func (m *Manager) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range files {
		if err := runLimited(context.Background(), m.L, m.limit, func() error { return m.L.DoFile(path) }); err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
		m.logger.Debug("scripting: loaded script", zap.String("path", path))
	}
	return nil
}

// LoadString executes src as a script named name.
func (m *Manager) LoadString(name, src string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := runLimited(context.Background(), m.L, m.limit, func() error { return m.L.DoString(src) }); err != nil {
		return fmt.Errorf("scripting: loading %q: %w", name, err)
	}
	return nil
}

// Hooks returns a phase hook for every hook function the loaded scripts define.
//
// Postcondition: hooks are ordered base_data before embedded_documents.
func (m *Manager) Hooks() []derive.PhaseHook {
	m.mu.Lock()
	defer m.mu.Unlock()
	var hooks []derive.PhaseHook
	for _, g := range hookGlobals {
		if m.L.GetGlobal(g.name).Type() != lua.LTFunction {
			continue
		}
		name := g.name
		hooks = append(hooks, derive.PhaseHook{
			Name:  "lua:" + name,
			Phase: g.phase,
			Run: func(ctx context.Context, rec creature.Record) error {
				return m.call(ctx, name, rec)
			},
		})
	}
	return hooks
}

// call invokes the Lua global hook with a creature table for rec.
// Lua errors are returned rather than logged and dropped, since a failed hook
// leaves the record's base data incomplete.
func (m *Manager) call(ctx context.Context, hook string, rec creature.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn := m.L.GetGlobal(hook)
	if fn.Type() != lua.LTFunction {
		return nil
	}
	err := runLimited(ctx, m.L, m.limit, func() error {
		return m.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, creatureTable(m.L, rec))
	})
	if err != nil {
		m.logger.Warn("scripting: Lua hook failed",
			zap.String("hook", hook),
			zap.String("record", rec.ID()),
			zap.Error(err),
		)
		return fmt.Errorf("scripting: %s: %w", hook, err)
	}
	return nil
}
