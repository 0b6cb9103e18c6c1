package creature

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// document is the persisted YAML layout of a creature record.
//
// Numeric fields are captured as raw nodes so that a non-numeric value is
// reported as a *ValidationError instead of a generic decode failure.
type document struct {
	ID         string                     `yaml:"id"`
	Kind       string                     `yaml:"kind"`
	Name       string                     `yaml:"name"`
	Abilities  map[string]abilityDocument `yaml:"abilities"`
	Attributes *attributesDocument        `yaml:"attributes"`
	CR         yaml.Node                  `yaml:"cr"`
	Items      []Item                     `yaml:"items"`
}

type abilityDocument struct {
	Value yaml.Node `yaml:"value"`
}

type attributesDocument struct {
	Level *levelDocument `yaml:"level"`
}

type levelDocument struct {
	Value yaml.Node `yaml:"value"`
}

// present reports whether n carries a non-null value.
func present(n yaml.Node) bool {
	return n.Kind != 0 && n.Tag != "!!null"
}

func decodeInt(record, field string, n yaml.Node) (*int, error) {
	if !present(n) {
		return nil, nil
	}
	if n.Kind != yaml.ScalarNode || n.Tag != "!!int" {
		return nil, Invalid(record, field, "must be an integer, got %q", n.Value)
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return nil, Invalid(record, field, "must be an integer: %v", err)
	}
	return &v, nil
}

func decodeNumber(record, field string, n yaml.Node) (float64, error) {
	if n.Kind != yaml.ScalarNode || (n.Tag != "!!int" && n.Tag != "!!float") {
		return 0, Invalid(record, field, "must be a number, got %q", n.Value)
	}
	var v float64
	if err := n.Decode(&v); err != nil {
		return 0, Invalid(record, field, "must be a number: %v", err)
	}
	return v, nil
}

func (d *document) record() (Record, error) {
	kind, err := ParseKind(d.Kind)
	if err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			ve.Record = d.ID
		}
		return nil, err
	}

	keys := make([]string, 0, len(d.Abilities))
	for key := range d.Abilities {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	abilities := make(Abilities, len(d.Abilities))
	for _, key := range keys {
		v, err := decodeInt(d.ID, "abilities."+key+".value", d.Abilities[key].Value)
		if err != nil {
			return nil, err
		}
		abilities[key] = Ability{Value: v}
	}

	switch kind {
	case KindCharacter:
		if present(d.CR) {
			return nil, Invalid(d.ID, "cr", "only npc records carry a challenge rating")
		}
		var level *Level
		if d.Attributes != nil && d.Attributes.Level != nil {
			v, err := decodeInt(d.ID, "attributes.level.value", d.Attributes.Level.Value)
			if err != nil {
				return nil, err
			}
			level = &Level{Value: v}
		}
		c, err := NewCharacter(d.ID, d.Name, abilities, level, d.Items)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		if d.Attributes != nil {
			return nil, Invalid(d.ID, "attributes", "only character records carry attributes")
		}
		if !present(d.CR) {
			return nil, Invalid(d.ID, "cr", "is required for npc records")
		}
		cr, err := decodeNumber(d.ID, "cr", d.CR)
		if err != nil {
			return nil, err
		}
		n, err := NewNPC(d.ID, d.Name, abilities, cr, d.Items)
		if err != nil {
			return nil, err
		}
		return n, nil
	}
}

// LoadRecordFromBytes parses a single creature record from raw YAML bytes.
//
// Precondition: data must be a YAML document in the creature record layout.
// Postcondition: Returns a validated Record with no derived fields set, or an error.
// Malformed fields produce a *ValidationError.
func LoadRecordFromBytes(data []byte) (Record, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing creature YAML: %w", err)
	}
	return doc.record()
}

// LoadRecords reads all *.yaml files in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all records, or an error on the first parse or validation
// failure or on a duplicate record ID.
func LoadRecords(dir string) ([]Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading creature dir %q: %w", dir, err)
	}

	var records []Record
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		rec, err := LoadRecordFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if prev, ok := seen[rec.ID()]; ok {
			return nil, fmt.Errorf("loading %q: duplicate record id %q (first defined in %q)", path, rec.ID(), prev)
		}
		seen[rec.ID()] = path
		records = append(records, rec)
	}
	return records, nil
}

type outputDocument struct {
	ID         string            `yaml:"id"`
	Kind       Kind              `yaml:"kind"`
	Name       string            `yaml:"name"`
	Abilities  Abilities         `yaml:"abilities"`
	Attributes *outputAttributes `yaml:"attributes,omitempty"`
	CR         *float64          `yaml:"cr,omitempty"`
	XP         *float64          `yaml:"xp,omitempty"`
	Items      []Item            `yaml:"items,omitempty"`
}

type outputAttributes struct {
	Level struct {
		Value *int `yaml:"value,omitempty"`
	} `yaml:"level"`
}

// MarshalRecord renders rec as YAML including derived fields (mod, xp).
//
// Postcondition: Returns the YAML bytes or a marshalling error.
func MarshalRecord(rec Record) ([]byte, error) {
	out := outputDocument{
		ID:        rec.ID(),
		Kind:      rec.Kind(),
		Name:      rec.Name(),
		Abilities: rec.Abilities(),
		Items:     rec.Items(),
	}
	switch r := rec.(type) {
	case *Character:
		if r.Level != nil {
			out.Attributes = &outputAttributes{}
			out.Attributes.Level.Value = r.Level.Value
		}
	case *NPC:
		cr := r.ChallengeRating
		out.CR = &cr
		out.XP = r.XP
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshalling record %q: %w", rec.ID(), err)
	}
	return data, nil
}
