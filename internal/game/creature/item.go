package creature

import "fmt"

// Effect is an active effect carried by an embedded item. When enabled it
// adds Delta to the named ability's value during the embedded-document phase.
type Effect struct {
	Ability  string `yaml:"ability"`
	Delta    int    `yaml:"delta"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

// Item is an embedded item document owned by a creature record.
type Item struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type,omitempty"`
	Effects []Effect `yaml:"effects,omitempty"`
}

func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = it
		if it.Effects != nil {
			out[i].Effects = append([]Effect(nil), it.Effects...)
		}
	}
	return out
}

func validateItems(record string, items []Item, abilities Abilities) error {
	for i, it := range items {
		if it.Name == "" {
			return Invalid(record, fmt.Sprintf("items[%d].name", i), "must not be empty")
		}
		for j, eff := range it.Effects {
			if _, ok := abilities[eff.Ability]; !ok {
				return Invalid(record, fmt.Sprintf("items[%d].effects[%d].ability", i, j), "unknown ability %q", eff.Ability)
			}
		}
	}
	return nil
}
