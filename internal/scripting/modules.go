package scripting

import (
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/knight/internal/game/creature"
)

// creatureTable exposes rec to Lua as a table:
//
//	creature.id, creature.name, creature.kind
//	creature.level (characters with a level), creature.cr (npcs)
//	creature.get(key)        -> ability value or nil
//	creature.set(key, value) -> sets an integer ability value
//	creature.has(key)        -> bool
//	creature.keys()          -> sorted ability keys
func creatureTable(L *lua.LState, rec creature.Record) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(rec.ID()))
	t.RawSetString("name", lua.LString(rec.Name()))
	t.RawSetString("kind", lua.LString(rec.Kind()))
	switch r := rec.(type) {
	case *creature.Character:
		if r.Level != nil && r.Level.Value != nil {
			t.RawSetString("level", lua.LNumber(*r.Level.Value))
		}
	case *creature.NPC:
		t.RawSetString("cr", lua.LNumber(r.ChallengeRating))
	}

	abilities := rec.Abilities()
	t.RawSetString("get", L.NewFunction(func(L *lua.LState) int {
		a, ok := abilities[L.CheckString(1)]
		if !ok || a.Value == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(*a.Value))
		return 1
	}))
	t.RawSetString("set", L.NewFunction(func(L *lua.LState) int {
		key := L.CheckString(1)
		n := float64(L.CheckNumber(2))
		a, ok := abilities[key]
		if !ok {
			L.ArgError(1, "unknown ability "+key)
			return 0
		}
		if math.IsNaN(n) || n != math.Trunc(n) {
			L.ArgError(2, "ability value must be an integer")
			return 0
		}
		// float64(math.MinInt) is exact; -float64(math.MinInt) is the first value past MaxInt.
		if n < float64(math.MinInt) || n >= -float64(math.MinInt) {
			L.ArgError(2, "ability value is out of range")
			return 0
		}
		v := int(n)
		a.Value = &v
		abilities[key] = a
		return 0
	}))
	t.RawSetString("has", L.NewFunction(func(L *lua.LState) int {
		_, ok := abilities[L.CheckString(1)]
		L.Push(lua.LBool(ok))
		return 1
	}))
	t.RawSetString("keys", L.NewFunction(func(L *lua.LState) int {
		keys := L.NewTable()
		for _, k := range abilities.Keys() {
			keys.Append(lua.LString(k))
		}
		L.Push(keys)
		return 1
	}))
	return t
}
