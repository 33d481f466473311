package data

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// ErrUnknownBiome is returned for biome ids missing from the biome table.
var ErrUnknownBiome = errors.New("unknown biome")

// DebrisWeight is one row of a biome's debris layout. An empty Kind is the
// "nothing here" outcome of the weighted roll.
type DebrisWeight struct {
	Kind   string  `yaml:"kind"`
	Weight float64 `yaml:"weight"`
}

// Biome is a generation parameter bundle selected per chunk from a noise value.
type Biome struct {
	ID           string         `yaml:"id"`
	NoiseMin     float64        `yaml:"noise_min"`
	NoiseMax     float64        `yaml:"noise_max"`
	DebrisLayout []DebrisWeight `yaml:"debris_layout"`

	totalWeight float64
}

// Contains reports whether a noise sample falls in [NoiseMin, NoiseMax).
func (b *Biome) Contains(v float64) bool {
	return v >= b.NoiseMin && v < b.NoiseMax
}

// PickDebris rolls the weighted layout. It returns "" when the roll lands on
// an empty row or the layout is empty.
func (b *Biome) PickDebris(r *rand.Rand) string {
	if b.totalWeight <= 0 {
		return ""
	}
	roll := r.Float64() * b.totalWeight
	for _, w := range b.DebrisLayout {
		if roll < w.Weight {
			return w.Kind
		}
		roll -= w.Weight
	}
	return b.DebrisLayout[len(b.DebrisLayout)-1].Kind
}

type biomeListFile struct {
	Biomes []Biome `yaml:"biomes"`
}

// BiomeTable holds all biomes indexed by id, ordered by NoiseMin for selection.
type BiomeTable struct {
	byID    map[string]*Biome
	ordered []*Biome
}

// Lookup returns the biome with id or an ErrUnknownBiome error.
func (t *BiomeTable) Lookup(id string) (*Biome, error) {
	b, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownBiome, id)
	}
	return b, nil
}

// Ordered returns biomes sorted by ascending NoiseMin.
func (t *BiomeTable) Ordered() []*Biome { return t.ordered }

// Count returns the number of biomes loaded.
func (t *BiomeTable) Count() int { return len(t.ordered) }

// LoadBiomeTable loads biomes.yaml.
func LoadBiomeTable(path string) (*BiomeTable, error) {
	var f biomeListFile
	if err := loadTable(path, "biomes.json", &f); err != nil {
		return nil, err
	}
	return newBiomeTable(f.Biomes)
}

// ParseBiomeTable decodes biome YAML already in memory.
func ParseBiomeTable(raw []byte) (*BiomeTable, error) {
	var f biomeListFile
	if err := decodeTable(raw, "biomes", "biomes.json", &f); err != nil {
		return nil, err
	}
	return newBiomeTable(f.Biomes)
}

// NewBiomeTable builds a table from in-memory biomes.
func NewBiomeTable(biomes []Biome) (*BiomeTable, error) {
	return newBiomeTable(biomes)
}

func newBiomeTable(biomes []Biome) (*BiomeTable, error) {
	t := &BiomeTable{
		byID:    make(map[string]*Biome, len(biomes)),
		ordered: make([]*Biome, 0, len(biomes)),
	}
	for i := range biomes {
		b := &biomes[i]
		if _, dup := t.byID[b.ID]; dup {
			return nil, fmt.Errorf("duplicate biome %q", b.ID)
		}
		if b.NoiseMax < b.NoiseMin {
			return nil, fmt.Errorf("biome %q: noise_max %v below noise_min %v", b.ID, b.NoiseMax, b.NoiseMin)
		}
		for _, w := range b.DebrisLayout {
			b.totalWeight += w.Weight
		}
		t.byID[b.ID] = b
		t.ordered = append(t.ordered, b)
	}
	sort.SliceStable(t.ordered, func(i, j int) bool {
		return t.ordered[i].NoiseMin < t.ordered[j].NoiseMin
	})
	return t, nil
}
