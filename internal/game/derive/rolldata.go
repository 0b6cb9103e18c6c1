package derive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/knight/internal/game/creature"
)

// AbilityData is the roll-data view of one ability.
type AbilityData struct {
	Value int
	Mod   int
}

func (a AbilityData) toMap() map[string]any {
	return map[string]any{"value": float64(a.Value), "mod": float64(a.Mod)}
}

// RollData is the flattened, formula-friendly view of a creature record.
//
// A RollData shares no memory with the record it was built from.
type RollData struct {
	// Abilities is present for every kind.
	Abilities map[string]AbilityData
	// Level mirrors attributes.level.value; set only for characters that carry one.
	Level *int
	// Shortcuts copies each ability to the top level; characters only.
	Shortcuts map[string]AbilityData
	// Lvl is the level alias, defaulting to 0; characters only.
	Lvl *int
	// CR and XP are set only for NPCs.
	CR *float64
	XP *float64
}

// DeriveRollDataOverlay builds the roll-data overlay for rec.
//
// Modifiers are recomputed from ability values, so the overlay is correct even
// when rec has not been through a derived-data pass.
//
// Precondition: rec must be non-nil.
// Postcondition: Returns an independent RollData, or a *creature.ValidationError
// when an ability has no value.
func DeriveRollDataOverlay(rec creature.Record) (RollData, error) {
	rd := RollData{Abilities: make(map[string]AbilityData, len(rec.Abilities()))}
	for _, k := range rec.Abilities().Keys() {
		a := rec.Abilities()[k]
		if a.Value == nil {
			return RollData{}, creature.Invalid(rec.ID(), "abilities."+k+".value", "is required")
		}
		rd.Abilities[k] = AbilityData{Value: *a.Value, Mod: AbilityModifier(*a.Value)}
	}

	switch r := rec.(type) {
	case *creature.Character:
		lvl := 0
		if r.Level != nil && r.Level.Value != nil {
			lvl = *r.Level.Value
			level := lvl
			rd.Level = &level
		}
		rd.Lvl = &lvl
		rd.Shortcuts = make(map[string]AbilityData, len(rd.Abilities))
		for k, a := range rd.Abilities {
			rd.Shortcuts[k] = a
		}
	case *creature.NPC:
		cr := r.ChallengeRating
		rd.CR = &cr
		xp, err := DeriveExperience(cr)
		if err != nil {
			return RollData{}, withRecord(err, rec)
		}
		rd.XP = &xp
	}
	return rd, nil
}

// GetRollData is the read-only roll-data export used by formula evaluation.
// It always returns the overlay, never the raw record.
func GetRollData(rec creature.Record) (RollData, error) {
	return DeriveRollDataOverlay(rec)
}

// Map renders rd as a fresh nested map with float64 leaves.
//
// Shortcut keys are written after the base fields and lvl after the shortcuts,
// so a shortcut never hides lvl.
func (rd RollData) Map() map[string]any {
	m := make(map[string]any)
	abilities := make(map[string]any, len(rd.Abilities))
	for k, a := range rd.Abilities {
		abilities[k] = a.toMap()
	}
	m["abilities"] = abilities
	if rd.Level != nil {
		m["attributes"] = map[string]any{
			"level": map[string]any{"value": float64(*rd.Level)},
		}
	}
	if rd.CR != nil {
		m["cr"] = *rd.CR
	}
	if rd.XP != nil {
		m["xp"] = *rd.XP
	}
	for k, a := range rd.Shortcuts {
		m[k] = a.toMap()
	}
	if rd.Lvl != nil {
		m["lvl"] = float64(*rd.Lvl)
	}
	return m
}

// Keys returns the top-level keys of Map in lexicographic order.
func (rd RollData) Keys() []string {
	m := rd.Map()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Resolve looks up a dotted path such as "abilities.Masques.mod" or "lvl".
//
// Postcondition: Returns the numeric leaf, or an error when the path is
// missing or does not end at a number.
func (rd RollData) Resolve(path string) (float64, error) {
	if path == "" {
		return 0, fmt.Errorf("roll data: empty path")
	}
	var cur any = rd.Map()
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return 0, fmt.Errorf("roll data: %q: %q is not an object", path, part)
		}
		cur, ok = m[part]
		if !ok {
			return 0, fmt.Errorf("roll data: %q: no field %q", path, part)
		}
	}
	v, ok := cur.(float64)
	if !ok {
		return 0, fmt.Errorf("roll data: %q is not a number", path)
	}
	return v, nil
}
