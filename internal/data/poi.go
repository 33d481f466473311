package data

import (
	"fmt"
	"math/rand"
)

// POILayout is an authored point of interest. Script names the Lua function
// that lays out the region; Structures lists the prototypes it may place.
type POILayout struct {
	ID         string   `yaml:"id"`
	Weight     float64  `yaml:"weight"`
	Script     string   `yaml:"script"`
	Structures []string `yaml:"structures"`
}

// Allows reports whether the layout may place prototype.
func (l *POILayout) Allows(prototype string) bool {
	for _, s := range l.Structures {
		if s == prototype {
			return true
		}
	}
	return false
}

type poiListFile struct {
	POIs []POILayout `yaml:"points_of_interest"`
}

// POITable holds the weighted POI layouts.
type POITable struct {
	layouts []*POILayout
	total   float64
}

// Pick rolls a layout by weight; nil when the table is empty.
func (t *POITable) Pick(r *rand.Rand) *POILayout {
	if len(t.layouts) == 0 {
		return nil
	}
	roll := r.Float64() * t.total
	for _, l := range t.layouts {
		if roll < l.Weight {
			return l
		}
		roll -= l.Weight
	}
	return t.layouts[len(t.layouts)-1]
}

// Layouts returns every layout in file order.
func (t *POITable) Layouts() []*POILayout { return t.layouts }

// Count returns the number of layouts loaded.
func (t *POITable) Count() int { return len(t.layouts) }

// LoadPOITable loads poi.yaml.
func LoadPOITable(path string) (*POITable, error) {
	var f poiListFile
	if err := loadTable(path, "poi.json", &f); err != nil {
		return nil, err
	}
	return NewPOITable(f.POIs)
}

// NewPOITable builds a table from in-memory layouts.
func NewPOITable(layouts []POILayout) (*POITable, error) {
	t := &POITable{layouts: make([]*POILayout, 0, len(layouts))}
	seen := make(map[string]struct{}, len(layouts))
	for i := range layouts {
		l := &layouts[i]
		if _, dup := seen[l.ID]; dup {
			return nil, fmt.Errorf("duplicate poi %q", l.ID)
		}
		seen[l.ID] = struct{}{}
		t.layouts = append(t.layouts, l)
		t.total += l.Weight
	}
	return t, nil
}
