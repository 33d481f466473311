package data

import (
	"errors"
	"fmt"
)

// ErrUnknownDebrisKind is returned for debris kinds missing from the kind table.
var ErrUnknownDebrisKind = errors.New("unknown debris kind")

// DebrisKind maps a generation kind to the prototype the spawner builds.
type DebrisKind struct {
	ID         string  `yaml:"id"`
	Prototype  string  `yaml:"prototype"`
	Radius     float64 `yaml:"radius"`
	DriftSpeed float64 `yaml:"drift_speed"` // world units per second, 0 = static
}

type debrisKindFile struct {
	Kinds []DebrisKind `yaml:"kinds"`
}

// DebrisKindTable holds debris kinds indexed by id.
type DebrisKindTable struct {
	kinds map[string]*DebrisKind
}

// Lookup returns the kind or an ErrUnknownDebrisKind error.
func (t *DebrisKindTable) Lookup(id string) (*DebrisKind, error) {
	k, ok := t.kinds[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDebrisKind, id)
	}
	return k, nil
}

// Count returns the number of kinds loaded.
func (t *DebrisKindTable) Count() int { return len(t.kinds) }

// LoadDebrisKindTable loads debris_kinds.yaml.
func LoadDebrisKindTable(path string) (*DebrisKindTable, error) {
	var f debrisKindFile
	if err := loadTable(path, "debris_kinds.json", &f); err != nil {
		return nil, err
	}
	return NewDebrisKindTable(f.Kinds)
}

// NewDebrisKindTable builds a table from in-memory kinds.
func NewDebrisKindTable(kinds []DebrisKind) (*DebrisKindTable, error) {
	t := &DebrisKindTable{kinds: make(map[string]*DebrisKind, len(kinds))}
	for i := range kinds {
		k := &kinds[i]
		if _, dup := t.kinds[k.ID]; dup {
			return nil, fmt.Errorf("duplicate debris kind %q", k.ID)
		}
		t.kinds[k.ID] = k
	}
	return t, nil
}
