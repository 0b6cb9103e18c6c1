package creature

import (
	"math"

	"github.com/google/uuid"
)

// Record is a creature record: one of *Character or *NPC.
//
// The interface is sealed; each variant carries only the fields that apply to
// it, so variant rules are enforced at construction rather than per method.
type Record interface {
	// ID returns the stable record identifier.
	ID() string
	// Name returns the display name.
	Name() string
	// Kind returns the record variant.
	Kind() Kind
	// Abilities returns the live ability map. Derivation writes Mod in place.
	Abilities() Abilities
	// Items returns the embedded items.
	Items() []Item
	// Clone returns a deep copy sharing no memory with the receiver.
	Clone() Record

	sealed()
}

type base struct {
	id        string
	name      string
	abilities Abilities
	items     []Item
}

func (b *base) ID() string           { return b.id }
func (b *base) Name() string         { return b.name }
func (b *base) Abilities() Abilities { return b.abilities }
func (b *base) Items() []Item        { return b.items }
func (b *base) sealed()              {}

func (b *base) clone() base {
	return base{
		id:        b.id,
		name:      b.name,
		abilities: b.abilities.Clone(),
		items:     cloneItems(b.items),
	}
}

func newBase(id, name string, abilities Abilities, items []Item) (base, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if name == "" {
		return base{}, Invalid(id, "name", "must not be empty")
	}
	for k := range abilities {
		if k == "" {
			return base{}, Invalid(id, "abilities", "ability key must not be empty")
		}
	}
	if abilities == nil {
		abilities = Abilities{}
	}
	if err := validateItems(id, items, abilities); err != nil {
		return base{}, err
	}
	return base{id: id, name: name, abilities: abilities, items: items}, nil
}

// Level is the character level attribute (attributes.level).
type Level struct {
	Value *int
}

// Character is a player character record.
type Character struct {
	base
	// Level is nil when the document carries no attributes.level.
	Level *Level
}

// NewCharacter builds a validated Character. An empty id is replaced with a
// fresh UUID.
//
// Precondition: name must be non-empty; every item effect must target a key in abilities.
// Postcondition: Returns a *Character owning abilities and items, or a *ValidationError.
func NewCharacter(id, name string, abilities Abilities, level *Level, items []Item) (*Character, error) {
	b, err := newBase(id, name, abilities, items)
	if err != nil {
		return nil, err
	}
	return &Character{base: b, Level: level}, nil
}

// Kind implements Record.
func (c *Character) Kind() Kind { return KindCharacter }

// Clone implements Record.
func (c *Character) Clone() Record {
	out := &Character{base: c.base.clone()}
	if c.Level != nil {
		lvl := &Level{}
		if c.Level.Value != nil {
			v := *c.Level.Value
			lvl.Value = &v
		}
		out.Level = lvl
	}
	return out
}

// NPC is a non-player creature record.
type NPC struct {
	base
	// ChallengeRating is the persisted cr; always finite and >= 0.
	ChallengeRating float64
	// XP is derived from ChallengeRating; nil until derivation runs.
	XP *float64
}

// NewNPC builds a validated NPC. An empty id is replaced with a fresh UUID.
//
// Precondition: name must be non-empty; cr must be finite and >= 0.
// Postcondition: Returns an *NPC with XP unset, or a *ValidationError.
func NewNPC(id, name string, abilities Abilities, cr float64, items []Item) (*NPC, error) {
	b, err := newBase(id, name, abilities, items)
	if err != nil {
		return nil, err
	}
	if err := ValidateChallengeRating(b.id, cr); err != nil {
		return nil, err
	}
	return &NPC{base: b, ChallengeRating: cr}, nil
}

// Kind implements Record.
func (n *NPC) Kind() Kind { return KindNPC }

// Clone implements Record.
func (n *NPC) Clone() Record {
	out := &NPC{base: n.base.clone(), ChallengeRating: n.ChallengeRating}
	if n.XP != nil {
		xp := *n.XP
		out.XP = &xp
	}
	return out
}

// ValidateChallengeRating reports whether cr is usable for experience derivation.
//
// Postcondition: Returns nil iff cr is finite and >= 0.
func ValidateChallengeRating(record string, cr float64) error {
	switch {
	case math.IsNaN(cr), math.IsInf(cr, 0):
		return Invalid(record, "cr", "must be a finite number, got %v", cr)
	case cr < 0:
		return Invalid(record, "cr", "must be >= 0, got %v", cr)
	}
	return nil
}
