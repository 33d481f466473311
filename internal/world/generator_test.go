package world

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/driftworks/chunkstream/internal/config"
	"github.com/driftworks/chunkstream/internal/data"
)

type gridSampler struct {
	step    float64
	lastMin float64
}

// SampleRectangle returns a regular grid, ignoring minDist beyond recording it.
func (s *gridSampler) SampleRectangle(tl, br mgl64.Vec2, minDist float64) []mgl64.Vec2 {
	s.lastMin = minDist
	var pts []mgl64.Vec2
	for y := tl.Y(); y < br.Y(); y += s.step {
		for x := tl.X(); x < br.X(); x += s.step {
			pts = append(pts, mgl64.Vec2{x, y})
		}
	}
	return pts
}

type fakePOI struct {
	calls []ChunkCoord
	err   error
}

func (f *fakePOI) GeneratePOI(c ChunkCoord, _ int64) (string, error) {
	f.calls = append(f.calls, c)
	return "wreck", f.err
}

func testBiomes(t *testing.T) *data.BiomeTable {
	t.Helper()
	tbl, err := data.NewBiomeTable([]data.Biome{
		{ID: "void", NoiseMin: 2, NoiseMax: 3}, // never matches
		{ID: "rocks", NoiseMin: -1, NoiseMax: 1, DebrisLayout: []data.DebrisWeight{{Kind: "rock", Weight: 1}}},
	})
	require.NoError(t, err)
	return tbl
}

func newTestGenerator(t *testing.T, mutate func(*config.Config), poi POIGenerator) (*ChunkGenerator, *gridSampler) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Streaming.DefaultBiome = "void"
	cfg.Streaming.POIProbability = 0
	cfg.Streaming.WorldBoundChunks = 10
	if mutate != nil {
		mutate(cfg)
	}
	biomes := testBiomes(t)
	sampler := &gridSampler{step: 32}
	g := NewChunkGenerator(GeneratorDeps{
		Biomes:   biomes,
		Selector: NewBiomeSelector(biomes, cfg.Generation.BiomeScale),
		Sampler:  sampler,
		POI:      poi,
		Config:   config.NewStaticStore(cfg),
		Log:      zap.NewNop(),
	})
	g.Reset(42)
	return g, sampler
}

func TestGenerateOrganicPlacesDebrisInsideChunk(t *testing.T) {
	g, _ := newTestGenerator(t, nil, nil)
	c := ChunkCoord{X: 3, Y: -2}

	ch, err := g.Generate(c)
	require.NoError(t, err)
	assert.Equal(t, OutcomeGenerated, ch.Outcome)
	assert.Equal(t, "rocks", ch.BiomeID())
	require.Len(t, ch.Debris, 16)
	for e := range ch.Debris {
		assert.Equal(t, "rock", e.Kind)
		assert.Equal(t, c, ChunkAt(e.Pos), "absolute coordinates inside the chunk")
		assert.Equal(t, c, e.Chunk)
		assert.False(t, e.Materialized())
	}
}

func TestGenerateClippedIsEmpty(t *testing.T) {
	poi := &fakePOI{}
	g, _ := newTestGenerator(t, func(c *config.Config) { c.Streaming.POIProbability = 1 }, poi)

	ch, err := g.Generate(ChunkCoord{X: 11, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, OutcomeClipped, ch.Outcome)
	assert.Equal(t, "void", ch.BiomeID())
	assert.Empty(t, ch.Debris)
	assert.Empty(t, poi.calls, "clipping wins over the poi roll")
}

func TestGeneratePOIDelegates(t *testing.T) {
	poi := &fakePOI{}
	g, _ := newTestGenerator(t, func(c *config.Config) { c.Streaming.POIProbability = 1 }, poi)

	ch, err := g.Generate(ChunkCoord{X: 1, Y: 1})
	require.NoError(t, err)
	assert.Equal(t, OutcomePOI, ch.Outcome)
	assert.Equal(t, "wreck", ch.POI)
	assert.Empty(t, ch.Debris)
	assert.Equal(t, []ChunkCoord{{1, 1}}, poi.calls)
}

func TestGeneratePOIErrorPropagates(t *testing.T) {
	boom := errors.New("bad layout")
	g, _ := newTestGenerator(t, func(c *config.Config) { c.Streaming.POIProbability = 1 }, &fakePOI{err: boom})

	_, err := g.Generate(ChunkCoord{})
	assert.ErrorIs(t, err, boom)
}

func TestUnknownDefaultBiomeIsHardError(t *testing.T) {
	g, _ := newTestGenerator(t, func(c *config.Config) { c.Streaming.DefaultBiome = "missing" }, nil)
	_, err := g.Generate(ChunkCoord{X: 99})
	assert.ErrorIs(t, err, data.ErrUnknownBiome)
}

func TestGenerateIsDeterministicPerSeed(t *testing.T) {
	biomes, err := data.NewBiomeTable([]data.Biome{{
		ID: "mix", NoiseMin: -1, NoiseMax: 1,
		DebrisLayout: []data.DebrisWeight{{Kind: "a", Weight: 1}, {Kind: "b", Weight: 1}, {Kind: "", Weight: 1}},
	}})
	require.NoError(t, err)
	build := func(seed int64) []string {
		cfg := config.Defaults()
		cfg.Streaming.DefaultBiome = "mix"
		cfg.Streaming.POIProbability = 0
		g := NewChunkGenerator(GeneratorDeps{
			Biomes:   biomes,
			Selector: NewBiomeSelector(biomes, 0.1),
			Sampler:  NewPoissonSampler(0),
			Config:   config.NewStaticStore(cfg),
			Log:      zap.NewNop(),
		})
		g.Reset(seed)
		ch, err := g.Generate(ChunkCoord{X: 4, Y: 4})
		require.NoError(t, err)
		var kinds []string
		for _, e := range ch.DebrisList() {
			kinds = append(kinds, e.Kind)
		}
		return kinds
	}
	assert.Equal(t, build(9), build(9))
	assert.NotEmpty(t, build(9))
}

func TestSpacingFallsOffWithDistance(t *testing.T) {
	gen := config.GenerationConfig{MinSpacing: 10, MaxSpacing: 50, FalloffRadius: 1000}
	assert.Equal(t, 50.0, Spacing(0, gen))
	assert.Equal(t, 30.0, Spacing(500, gen))
	assert.Equal(t, 10.0, Spacing(1000, gen))
	assert.Equal(t, 10.0, Spacing(5000, gen))
}

func TestGenerateUsesDistanceSpacing(t *testing.T) {
	g, sampler := newTestGenerator(t, nil, nil)
	_, err := g.Generate(ChunkCoord{})
	require.NoError(t, err)
	near := sampler.lastMin
	_, err = g.Generate(ChunkCoord{X: 9, Y: 9})
	require.NoError(t, err)
	assert.Greater(t, near, sampler.lastMin, "chunks near the origin are sparser")
}
