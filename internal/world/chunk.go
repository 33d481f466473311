package world

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/data"
)

// ChunkSize is the edge length of a chunk in world units.
const ChunkSize = 128.0

// ChunkCoord identifies a chunk. Chunk (0,0) covers [0,ChunkSize) on both axes.
type ChunkCoord struct {
	X int32
	Y int32
}

func (c ChunkCoord) Add(o ChunkCoord) ChunkCoord {
	return ChunkCoord{X: c.X + o.X, Y: c.Y + o.Y}
}

// Origin is the world position of the chunk's top-left corner.
func (c ChunkCoord) Origin() mgl64.Vec2 {
	return mgl64.Vec2{float64(c.X) * ChunkSize, float64(c.Y) * ChunkSize}
}

// Bounds returns the chunk's local rectangle in world coordinates.
func (c ChunkCoord) Bounds() (topLeft, bottomRight mgl64.Vec2) {
	topLeft = c.Origin()
	return topLeft, topLeft.Add(mgl64.Vec2{ChunkSize, ChunkSize})
}

// Center is the world position of the chunk's midpoint.
func (c ChunkCoord) Center() mgl64.Vec2 {
	return c.Origin().Add(mgl64.Vec2{ChunkSize / 2, ChunkSize / 2})
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// ChunkAt returns the chunk containing a world position.
func ChunkAt(pos mgl64.Vec2) ChunkCoord {
	return ChunkCoord{
		X: int32(math.Floor(pos.X() / ChunkSize)),
		Y: int32(math.Floor(pos.Y() / ChunkSize)),
	}
}

// ChunkOutcome records how a chunk was generated on its first visit.
type ChunkOutcome uint8

const (
	OutcomeGenerated   ChunkOutcome = iota // organic debris field
	OutcomeClipped                         // outside the playable bound
	OutcomePOI                             // authored point of interest
	OutcomeForcedEmpty                     // bootstrap safe chunk
)

func (o ChunkOutcome) String() string {
	switch o {
	case OutcomeGenerated:
		return "generated"
	case OutcomeClipped:
		return "clipped"
	case OutcomePOI:
		return "poi"
	case OutcomeForcedEmpty:
		return "forced_empty"
	}
	return fmt.Sprintf("outcome(%d)", uint8(o))
}

// DebrisEntry is a debris definition. Entity is zero while not materialized.
// Chunk is the coordinate of the owning chunk and changes only through
// WorldChunk.AddDebris.
type DebrisEntry struct {
	Kind   string
	Pos    mgl64.Vec2
	Chunk  ChunkCoord
	Entity ecs.EntityID
}

func (e *DebrisEntry) Materialized() bool { return !e.Entity.IsZero() }

// WorldChunk is the per-coordinate record kept in the ChunkIndex for the
// whole round. Only Loaded and the Debris set change after generation.
type WorldChunk struct {
	Coord   ChunkCoord
	Outcome ChunkOutcome
	Biome   *data.Biome
	POI     string // layout id when Outcome == OutcomePOI
	Debris  map[*DebrisEntry]struct{}
	Loaded  bool
}

func NewWorldChunk(coord ChunkCoord, outcome ChunkOutcome, biome *data.Biome) *WorldChunk {
	return &WorldChunk{
		Coord:   coord,
		Outcome: outcome,
		Biome:   biome,
		Debris:  make(map[*DebrisEntry]struct{}),
	}
}

// AddDebris takes ownership of e.
func (c *WorldChunk) AddDebris(e *DebrisEntry) {
	e.Chunk = c.Coord
	c.Debris[e] = struct{}{}
}

// RemoveDebris drops e from the set; it reports whether e was owned here.
func (c *WorldChunk) RemoveDebris(e *DebrisEntry) bool {
	if _, ok := c.Debris[e]; !ok {
		return false
	}
	delete(c.Debris, e)
	return true
}

func (c *WorldChunk) Owns(e *DebrisEntry) bool {
	_, ok := c.Debris[e]
	return ok
}

// DebrisList returns the entries in a stable order (Y, X, Kind) so queueing
// a chunk is reproducible.
func (c *WorldChunk) DebrisList() []*DebrisEntry {
	out := make([]*DebrisEntry, 0, len(c.Debris))
	for e := range c.Debris {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Pos.Y() != b.Pos.Y() {
			return a.Pos.Y() < b.Pos.Y()
		}
		if a.Pos.X() != b.Pos.X() {
			return a.Pos.X() < b.Pos.X()
		}
		return a.Kind < b.Kind
	})
	return out
}

// BiomeID returns the biome id or "" for chunks without one.
func (c *WorldChunk) BiomeID() string {
	if c.Biome == nil {
		return ""
	}
	return c.Biome.ID
}
