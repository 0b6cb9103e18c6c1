package creature

import "sort"

// Ability is a single ability score on a creature record.
//
// Value is the persisted raw score; nil means the document carried no value.
// Mod is derived from Value and is never read from persisted input.
type Ability struct {
	Value *int
	Mod   int
}

// Score returns an Ability carrying value v and no derived modifier.
func Score(v int) Ability {
	return Ability{Value: &v}
}

// Clone returns a copy of a that shares no memory with it.
func (a Ability) Clone() Ability {
	if a.Value != nil {
		v := *a.Value
		a.Value = &v
	}
	return a
}

// MarshalYAML emits the ability as {value, mod}.
func (a Ability) MarshalYAML() (any, error) {
	return struct {
		Value *int `yaml:"value,omitempty"`
		Mod   int  `yaml:"mod"`
	}{Value: a.Value, Mod: a.Mod}, nil
}

// Abilities maps ability keys (e.g. "Masques", "str") to scores.
type Abilities map[string]Ability

// Clone returns a deep copy of a. A nil map clones to an empty map.
func (a Abilities) Clone() Abilities {
	out := make(Abilities, len(a))
	for k, v := range a {
		out[k] = v.Clone()
	}
	return out
}

// Keys returns the ability keys in lexicographic order.
func (a Abilities) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
