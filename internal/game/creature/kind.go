// Package creature defines the creature record model for the Knight ruleset:
// player characters and NPCs, their ability scores, and their embedded items.
package creature

// Kind identifies the record variant.
type Kind string

const (
	// KindCharacter is a player character.
	KindCharacter Kind = "character"
	// KindNPC is a non-player creature rated by challenge rating.
	KindNPC Kind = "npc"
)

// ParseKind converts a document kind string to a Kind.
//
// Postcondition: Returns a known Kind, or a *ValidationError for any other value.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCharacter, KindNPC:
		return Kind(s), nil
	}
	return "", Invalid("", "kind", "must be one of [character, npc], got %q", s)
}

// String implements fmt.Stringer.
func (k Kind) String() string { return string(k) }
