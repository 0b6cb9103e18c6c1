package creature_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/knight/internal/game/creature"
)

func intPtr(v int) *int { return &v }

func TestNewCharacter_EmptyNameError(t *testing.T) {
	_, err := creature.NewCharacter("c1", "", nil, nil, nil)
	var ve *creature.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "name", ve.Field)
	assert.Equal(t, "validation: c1: name: must not be empty", ve.Error())
}

func TestNewCharacter_NilAbilitiesBecomeEmpty(t *testing.T) {
	c, err := creature.NewCharacter("c1", "Hero", nil, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, c.Abilities())
	assert.Empty(t, c.Abilities())
}

func TestNewNPC_RejectsNonFiniteChallengeRating(t *testing.T) {
	for _, cr := range []float64{math.NaN(), math.Inf(1), -0.25} {
		_, err := creature.NewNPC("n1", "Beast", nil, cr, nil)
		var ve *creature.ValidationError
		require.True(t, errors.As(err, &ve), "cr=%v", cr)
		assert.Equal(t, "cr", ve.Field)
	}
}

func TestCharacter_CloneIsDeep(t *testing.T) {
	c, err := creature.NewCharacter("c1", "Hero",
		creature.Abilities{"Chair": creature.Score(12)},
		&creature.Level{Value: intPtr(3)},
		[]creature.Item{{Name: "Sword", Effects: []creature.Effect{{Ability: "Chair", Delta: 1}}}},
	)
	require.NoError(t, err)

	cp := c.Clone().(*creature.Character)
	*cp.Abilities()["Chair"].Value = 20
	*cp.Level.Value = 9
	cp.Items()[0].Effects[0].Delta = 5
	cp.Abilities()["New"] = creature.Score(1)

	assert.Equal(t, 12, *c.Abilities()["Chair"].Value)
	assert.Equal(t, 3, *c.Level.Value)
	assert.Equal(t, 1, c.Items()[0].Effects[0].Delta)
	assert.NotContains(t, c.Abilities(), "New")
}

func TestNPC_CloneIsDeep(t *testing.T) {
	n, err := creature.NewNPC("n1", "Beast", creature.Abilities{"Chair": creature.Score(8)}, 2, nil)
	require.NoError(t, err)
	xp := 400.0
	n.XP = &xp

	cp := n.Clone().(*creature.NPC)
	*cp.XP = 1
	cp.ChallengeRating = 7

	assert.Equal(t, 400.0, *n.XP)
	assert.Equal(t, 2.0, n.ChallengeRating)
	assert.Equal(t, "n1", cp.ID())
}

func TestAbilities_KeysSorted(t *testing.T) {
	a := creature.Abilities{"b": creature.Score(1), "a": creature.Score(2), "c": {}}
	assert.Equal(t, []string{"a", "b", "c"}, a.Keys())
}

func TestParseKind(t *testing.T) {
	k, err := creature.ParseKind("npc")
	require.NoError(t, err)
	assert.Equal(t, creature.KindNPC, k)
	assert.Equal(t, "npc", k.String())

	_, err = creature.ParseKind("")
	require.Error(t, err)
}
