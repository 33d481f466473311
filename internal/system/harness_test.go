package system

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/config"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/core/event"
	"github.com/driftworks/chunkstream/internal/data"
	"github.com/driftworks/chunkstream/internal/world"
)

const scan = 100 * time.Millisecond

// gridSampler places one point every step units, ignoring minDist.
type gridSampler struct{ step float64 }

func (s gridSampler) SampleRectangle(tl, br mgl64.Vec2, _ float64) []mgl64.Vec2 {
	var pts []mgl64.Vec2
	for y := tl.Y(); y < br.Y(); y += s.step {
		for x := tl.X(); x < br.X(); x += s.step {
			pts = append(pts, mgl64.Vec2{x + 1, y + 1})
		}
	}
	return pts
}

// stepClock advances by step on every reading.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

// orderSpawner records spawn order before delegating.
type orderSpawner struct {
	inner DebrisSpawner
	order []mgl64.Vec2
}

func (s *orderSpawner) SpawnDebris(kind string, pos mgl64.Vec2) (ecs.EntityID, error) {
	s.order = append(s.order, pos)
	return s.inner.SpawnDebris(kind, pos)
}

type harness struct {
	store     *config.Store
	ecs       *ecs.World
	stores    *component.Stores
	bus       *event.Bus
	index     *world.ChunkIndex
	observers *world.ObserverRegistry
	spawner   *orderSpawner
	loader    *DebrisLoader
	stream    *StreamingSystem
	clock     *stepClock
	logs      *observer.ObservedLogs
}

type harnessOpts struct {
	kinds  []data.DebrisKind
	mutate func(*config.Config)
}

func newHarness(t *testing.T, opts harnessOpts) *harness {
	t.Helper()
	cfg := config.Defaults()
	cfg.Streaming.DefaultBiome = "void"
	cfg.Streaming.POIProbability = 0
	cfg.Streaming.LoadRadius = 0 // division 1
	cfg.Streaming.ScanInterval = scan
	cfg.Streaming.DebrisLoadBudgetMs = 1e6
	cfg.Streaming.WorldBoundChunks = 1000
	if opts.mutate != nil {
		opts.mutate(cfg)
	}
	store := config.NewStaticStore(cfg)

	biomes, err := data.NewBiomeTable([]data.Biome{
		{ID: "void", NoiseMin: 2, NoiseMax: 3},
		{ID: "field", NoiseMin: -1, NoiseMax: 1.01, DebrisLayout: []data.DebrisWeight{{Kind: "rock", Weight: 1}}},
	})
	require.NoError(t, err)
	if opts.kinds == nil {
		opts.kinds = []data.DebrisKind{{ID: "rock", Prototype: "Rock", Radius: 2}}
	}
	kinds, err := data.NewDebrisKindTable(opts.kinds)
	require.NoError(t, err)

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	w := ecs.NewWorld()
	stores := component.NewStores(w)
	bus := event.NewBus()
	index := world.NewChunkIndex()
	clock := &stepClock{t: time.Unix(0, 0)}
	spawner := &orderSpawner{inner: NewEntitySpawner(w, stores, kinds, 1)}

	gen := world.NewChunkGenerator(world.GeneratorDeps{
		Biomes:   biomes,
		Selector: world.NewBiomeSelector(biomes, cfg.Generation.BiomeScale),
		Sampler:  gridSampler{step: 64}, // 4 entries per chunk
		Config:   store,
		Log:      log,
	})
	loader := NewDebrisLoader(LoaderDeps{
		Index:   index,
		Spawner: spawner,
		World:   w,
		Stores:  stores,
		Config:  store,
		Log:     log,
		Now:     clock.Now,
	})
	loader.Subscribe(bus)
	observers := world.NewObserverRegistry()
	stream := NewStreamingSystem(StreamingDeps{
		Index:     index,
		Generator: gen,
		Loader:    loader,
		Observers: observers,
		Config:    store,
		Bus:       bus,
		World:     w,
		Stores:    stores,
		Log:       log,
	})
	stream.Reset(7)

	return &harness{
		store:     store,
		ecs:       w,
		stores:    stores,
		bus:       bus,
		index:     index,
		observers: observers,
		spawner:   spawner,
		loader:    loader,
		stream:    stream,
		clock:     clock,
		logs:      logs,
	}
}

// tick runs one scheduling pass and one loader drain.
func (h *harness) tick() {
	h.stream.Update(scan)
	h.loader.Update(scan)
}

func (h *harness) dispatch() {
	h.bus.SwapBuffers()
	h.bus.DispatchAll()
}

func (h *harness) setBudget(ms float64) {
	st := h.store.Streaming()
	st.DebrisLoadBudgetMs = ms
	h.store.Set(st, h.store.Generation())
}

func (h *harness) chunk(t *testing.T, c world.ChunkCoord) *world.WorldChunk {
	t.Helper()
	ch, ok := h.index.Get(c)
	require.True(t, ok, "chunk %s not indexed", c)
	return ch
}

// chunkPos is a point inside chunk c.
func chunkPos(c world.ChunkCoord) mgl64.Vec2 {
	return c.Origin().Add(mgl64.Vec2{10, 10})
}

func coordSet(cs []world.ChunkCoord) map[world.ChunkCoord]bool {
	m := make(map[world.ChunkCoord]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}
