// Package derive computes the derived statistics of creature records:
// ability modifiers, NPC experience, and the roll-data overlay consumed by
// formula evaluation. It also drives the ordered preparation phases that
// lead up to derivation.
//
// Every function here is synchronous and touches only the record it is
// given, so independent records may be derived concurrently.
package derive

import (
	"errors"

	"github.com/cory-johannsen/knight/internal/game/creature"
)

// AbilityModifier returns the d20 ability modifier floor((value - 10) / 2),
// rounding toward negative infinity. It is exact over the whole int range.
func AbilityModifier(value int) int {
	// An arithmetic shift floors, and value>>1 - 5 cannot overflow.
	return value>>1 - 5
}

// DeriveAbilityModifiers recomputes Mod for every entry of abilities from its Value.
//
// Precondition: every entry must carry a Value.
// Postcondition: on success every entry's Mod == AbilityModifier(*Value); on
// error a *creature.ValidationError names the first offending key (in key order)
// and no entry is modified.
func DeriveAbilityModifiers(abilities creature.Abilities) error {
	keys := abilities.Keys()
	for _, k := range keys {
		if abilities[k].Value == nil {
			return creature.Invalid("", "abilities."+k+".value", "is required")
		}
	}
	for _, k := range keys {
		a := abilities[k]
		a.Mod = AbilityModifier(*a.Value)
		abilities[k] = a
	}
	return nil
}

// DeriveExperience returns the experience value cr * cr * 100.
//
// Precondition: cr must be finite and >= 0.
// Postcondition: Returns cr*cr*100, or a *creature.ValidationError.
func DeriveExperience(cr float64) (float64, error) {
	if err := creature.ValidateChallengeRating("", cr); err != nil {
		return 0, err
	}
	return cr * cr * 100, nil
}

// DeriveNPC sets XP on NPC records. Any other kind is left untouched.
func DeriveNPC(rec creature.Record) error {
	n, ok := rec.(*creature.NPC)
	if !ok {
		return nil
	}
	xp, err := DeriveExperience(n.ChallengeRating)
	if err != nil {
		return withRecord(err, rec)
	}
	n.XP = &xp
	return nil
}

// Derive runs the derived-data pass on rec in place: ability modifiers for
// every kind, then the NPC-only experience value.
//
// Precondition: rec must be non-nil with base data and embedded documents final.
// Postcondition: derived fields are populated, or a *creature.ValidationError
// carrying rec's ID is returned.
func Derive(rec creature.Record) error {
	if err := DeriveAbilityModifiers(rec.Abilities()); err != nil {
		return withRecord(err, rec)
	}
	return DeriveNPC(rec)
}

func withRecord(err error, rec creature.Record) error {
	var ve *creature.ValidationError
	if errors.As(err, &ve) && ve.Record == "" {
		ve.Record = rec.ID()
	}
	return err
}
