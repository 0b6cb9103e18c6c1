package derive_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/knight/internal/game/creature"
	"github.com/cory-johannsen/knight/internal/game/derive"
)

func intPtr(v int) *int { return &v }

func newCharacter(t *testing.T, abilities creature.Abilities, level *creature.Level) *creature.Character {
	t.Helper()
	c, err := creature.NewCharacter("hero", "Hero", abilities, level, nil)
	require.NoError(t, err)
	return c
}

func newNPC(t *testing.T, abilities creature.Abilities, cr float64) *creature.NPC {
	t.Helper()
	n, err := creature.NewNPC("beast", "Beast", abilities, cr, nil)
	require.NoError(t, err)
	return n
}

func TestAbilityModifier_KnownValues(t *testing.T) {
	cases := map[int]int{
		10: 0, 11: 0, 12: 1, 9: -1, 8: -1, 7: -2, 1: -5, 20: 5, 30: 10, 0: -5, -1: -6,
		math.MinInt:     math.MinInt/2 - 5,
		math.MinInt + 5: math.MinInt/2 - 3,
		math.MaxInt:     math.MaxInt/2 - 5,
	}
	for value, want := range cases {
		assert.Equal(t, want, derive.AbilityModifier(value), "value=%d", value)
	}
}

// Property: the modifier is floor((value-10)/2) for every score.
func TestProperty_AbilityModifier_MatchesFloor(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		v := rapid.IntRange(-100, 100).Draw(rt, "value")
		want := int(math.Floor(float64(v-10) / 2))
		if got := derive.AbilityModifier(v); got != want {
			rt.Fatalf("AbilityModifier(%d) = %d, want %d", v, got, want)
		}
	})
}

func TestDeriveAbilityModifiers_PopulatesEveryKey(t *testing.T) {
	abilities := creature.Abilities{
		"Chair":   creature.Score(10),
		"Bete":    creature.Score(11),
		"Machine": creature.Score(12),
		"Dame":    creature.Score(9),
		"Masques": creature.Score(1),
		"Force":   creature.Score(20),
	}
	require.NoError(t, derive.DeriveAbilityModifiers(abilities))

	want := map[string]int{"Chair": 0, "Bete": 0, "Machine": 1, "Dame": -1, "Masques": -5, "Force": 5}
	for k, mod := range want {
		assert.Equal(t, mod, abilities[k].Mod, k)
	}
}

func TestDeriveAbilityModifiers_MissingValueFailsWithoutMutation(t *testing.T) {
	abilities := creature.Abilities{
		"Chair":   creature.Score(14),
		"Masques": {Mod: 99},
	}
	err := derive.DeriveAbilityModifiers(abilities)

	var ve *creature.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "abilities.Masques.value", ve.Field)
	assert.Equal(t, 0, abilities["Chair"].Mod, "no entry may be written on error")
	assert.Equal(t, 99, abilities["Masques"].Mod)
}

func TestDeriveAbilityModifiers_EmptyMap(t *testing.T) {
	assert.NoError(t, derive.DeriveAbilityModifiers(creature.Abilities{}))
	assert.NoError(t, derive.DeriveAbilityModifiers(nil))
}

// Property: deriving twice yields the same modifiers as deriving once.
func TestProperty_DeriveAbilityModifiers_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		scores := rapid.MapOf(rapid.StringMatching(`[a-z]{1,6}`), rapid.IntRange(1, 30)).Draw(rt, "scores")
		abilities := make(creature.Abilities, len(scores))
		for k, v := range scores {
			abilities[k] = creature.Score(v)
		}
		require.NoError(rt, derive.DeriveAbilityModifiers(abilities))
		once := abilities.Clone()
		require.NoError(rt, derive.DeriveAbilityModifiers(abilities))
		assert.Equal(rt, once, abilities)
	})
}

func TestDeriveExperience_KnownValues(t *testing.T) {
	cases := map[float64]float64{0: 0, 1: 100, 5: 2500, 0.5: 25}
	for cr, want := range cases {
		got, err := derive.DeriveExperience(cr)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-9, "cr=%v", cr)
	}
}

func TestDeriveExperience_RejectsInvalid(t *testing.T) {
	for _, cr := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := derive.DeriveExperience(cr)
		var ve *creature.ValidationError
		assert.True(t, errors.As(err, &ve), "cr=%v", cr)
	}
}

// Property: xp == cr*cr*100 for every non-negative cr.
func TestProperty_DeriveExperience_Square(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cr := rapid.Float64Range(0, 30).Draw(rt, "cr")
		got, err := derive.DeriveExperience(cr)
		require.NoError(rt, err)
		assert.Equal(rt, cr*cr*100, got)
	})
}

func TestDeriveNPC_SetsXP(t *testing.T) {
	n := newNPC(t, nil, 5)
	require.NoError(t, derive.DeriveNPC(n))
	require.NotNil(t, n.XP)
	assert.Equal(t, 2500.0, *n.XP)
}

func TestDeriveNPC_CharacterIsNoOp(t *testing.T) {
	c := newCharacter(t, creature.Abilities{"Chair": creature.Score(13)}, &creature.Level{Value: intPtr(2)})
	before := c.Clone()

	require.NoError(t, derive.DeriveNPC(c))
	assert.Equal(t, before, creature.Record(c))
}

func TestDerive_CharacterHasNoXP(t *testing.T) {
	c := newCharacter(t, creature.Abilities{"Chair": creature.Score(15)}, nil)
	require.NoError(t, derive.Derive(c))
	assert.Equal(t, 2, c.Abilities()["Chair"].Mod)
}

func TestDerive_NPCGetsModifiersAndXP(t *testing.T) {
	n := newNPC(t, creature.Abilities{"Chair": creature.Score(8)}, 1)
	require.NoError(t, derive.Derive(n))
	assert.Equal(t, -1, n.Abilities()["Chair"].Mod)
	require.NotNil(t, n.XP)
	assert.Equal(t, 100.0, *n.XP)
}

func TestDerive_ErrorCarriesRecordID(t *testing.T) {
	c := newCharacter(t, creature.Abilities{"Chair": {}}, nil)
	err := derive.Derive(c)
	var ve *creature.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "hero", ve.Record)
}
