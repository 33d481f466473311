package world

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/driftworks/chunkstream/internal/config"
	"github.com/driftworks/chunkstream/internal/data"
)

// Sampler produces candidate debris positions inside a rectangle with at
// least minDist between any two points. Implementations must be pure.
type Sampler interface {
	SampleRectangle(topLeft, bottomRight mgl64.Vec2, minDist float64) []mgl64.Vec2
}

// POIGenerator lays out authored content for one chunk synchronously and
// returns the id of the layout it used.
type POIGenerator interface {
	GeneratePOI(c ChunkCoord, seed int64) (string, error)
}

type reseeder interface {
	Reseed(seed int64)
}

// ChunkGenerator decides a chunk's content on its first visit. It never
// touches the ChunkIndex; callers insert the returned chunk.
type ChunkGenerator struct {
	biomes   *data.BiomeTable
	selector *BiomeSelector
	sampler  Sampler
	poi      POIGenerator
	cfg      *config.Store
	seed     int64
	log      *zap.Logger
}

type GeneratorDeps struct {
	Biomes   *data.BiomeTable
	Selector *BiomeSelector
	Sampler  Sampler
	POI      POIGenerator // nil disables points of interest
	Config   *config.Store
	Log      *zap.Logger
}

func NewChunkGenerator(d GeneratorDeps) *ChunkGenerator {
	return &ChunkGenerator{
		biomes:   d.Biomes,
		selector: d.Selector,
		sampler:  d.Sampler,
		poi:      d.POI,
		cfg:      d.Config,
		log:      d.Log,
	}
}

// Reset reseeds the generator, its biome layer and the sampler for a new round.
func (g *ChunkGenerator) Reset(seed int64) {
	g.seed = seed
	g.selector.Reset(seed)
	if r, ok := g.sampler.(reseeder); ok {
		r.Reseed(seed)
	}
}

func (g *ChunkGenerator) Seed() int64 { return g.seed }

// Clipped reports whether c lies outside the playable bound.
func Clipped(c ChunkCoord, bound int32) bool {
	return c.X > bound || c.X < -bound || c.Y > bound || c.Y < -bound
}

// Spacing is the poisson distance for a chunk at dist from the origin:
// max_spacing at the origin falling linearly to min_spacing at falloff_radius.
// Larger spacing means fewer debris, so space near the origin stays sparse.
func Spacing(dist float64, gen config.GenerationConfig) float64 {
	t := 1 - dist/gen.FalloffRadius
	if t < 0 {
		t = 0
	}
	return gen.MinSpacing + (gen.MaxSpacing-gen.MinSpacing)*t
}

// Generate runs the first-visit decision: clipped, point of interest or organic.
func (g *ChunkGenerator) Generate(c ChunkCoord) (*WorldChunk, error) {
	st := g.cfg.Streaming()
	if Clipped(c, st.WorldBoundChunks) {
		return g.Empty(c, OutcomeClipped)
	}

	r := rand.New(rand.NewSource(chunkSeed(g.seed, c)))
	if g.poi != nil && st.POIProbability > 0 && r.Float64() < st.POIProbability {
		ch, err := g.Empty(c, OutcomePOI)
		if err != nil {
			return nil, err
		}
		id, err := g.poi.GeneratePOI(c, r.Int63())
		if err != nil {
			return nil, fmt.Errorf("point of interest at %s: %w", c, err)
		}
		ch.POI = id
		g.log.Debug("poi chunk generated", zap.Stringer("chunk", c), zap.String("poi", id))
		return ch, nil
	}
	return g.organic(c, r)
}

// GenerateOrganic skips the clip and POI checks and always lays out debris.
func (g *ChunkGenerator) GenerateOrganic(c ChunkCoord) (*WorldChunk, error) {
	return g.organic(c, rand.New(rand.NewSource(chunkSeed(g.seed, c))))
}

// Empty builds a debris-free chunk with the configured default biome.
func (g *ChunkGenerator) Empty(c ChunkCoord, outcome ChunkOutcome) (*WorldChunk, error) {
	def, err := g.biomes.Lookup(g.cfg.Streaming().DefaultBiome)
	if err != nil {
		return nil, fmt.Errorf("default biome: %w", err)
	}
	return NewWorldChunk(c, outcome, def), nil
}

func (g *ChunkGenerator) organic(c ChunkCoord, r *rand.Rand) (*WorldChunk, error) {
	gen := g.cfg.Generation()
	g.selector.SetScale(gen.BiomeScale)

	biome, ok := g.selector.Select(c)
	if !ok {
		def, err := g.biomes.Lookup(g.cfg.Streaming().DefaultBiome)
		if err != nil {
			return nil, fmt.Errorf("default biome: %w", err)
		}
		biome = def
	}

	ch := NewWorldChunk(c, OutcomeGenerated, biome)
	topLeft, bottomRight := c.Bounds()
	spacing := Spacing(c.Center().Len(), gen)
	for _, p := range g.sampler.SampleRectangle(topLeft, bottomRight, spacing) {
		kind := biome.PickDebris(r)
		if kind == "" {
			continue
		}
		ch.AddDebris(&DebrisEntry{Kind: kind, Pos: p})
	}
	return ch, nil
}
