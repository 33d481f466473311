package data

import (
	"fmt"
	"path/filepath"
)

// Content bundles every read-only table the streaming core consumes.
type Content struct {
	Biomes *BiomeTable
	Debris *DebrisKindTable
	POIs   *POITable
}

// LoadContent loads biomes.yaml, debris_kinds.yaml and poi.yaml from dir and
// cross-checks them. Any unknown reference is a load error.
func LoadContent(dir string) (*Content, error) {
	biomes, err := LoadBiomeTable(filepath.Join(dir, "biomes.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load biomes: %w", err)
	}
	kinds, err := LoadDebrisKindTable(filepath.Join(dir, "debris_kinds.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load debris kinds: %w", err)
	}
	pois, err := LoadPOITable(filepath.Join(dir, "poi.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load poi: %w", err)
	}
	c := &Content{Biomes: biomes, Debris: kinds, POIs: pois}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that every debris layout row names a known kind.
func (c *Content) Validate() error {
	for _, b := range c.Biomes.Ordered() {
		for _, w := range b.DebrisLayout {
			if w.Kind == "" {
				continue
			}
			if _, err := c.Debris.Lookup(w.Kind); err != nil {
				return fmt.Errorf("biome %q layout: %w", b.ID, err)
			}
		}
	}
	return nil
}
