package system

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/config"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/core/event"
	coresys "github.com/driftworks/chunkstream/internal/core/system"
	"github.com/driftworks/chunkstream/internal/world"
)

// StreamingSystem decides which chunks are wanted around the observers,
// generates chunks on their first visit and feeds the DebrisLoader.
// Phase 2 (Update).
//
// A scheduling pass runs when the accumulated frame time reaches
// streaming.scan_interval. Chunk queues are flushed every tick.
type StreamingSystem struct {
	index     *world.ChunkIndex
	generator *world.ChunkGenerator
	loader    *DebrisLoader
	observers world.ObserverSource
	cfg       *config.Store
	bus       *event.Bus
	ecs       *ecs.World
	stores    *component.Stores
	log       *zap.Logger

	acc     time.Duration
	loaded  map[world.ChunkCoord]struct{}
	safe    map[world.ChunkCoord]struct{}
	loadQ   *chunkQueue
	unloadQ *chunkQueue

	round     uuid.UUID
	generated [4]int // per world.ChunkOutcome
	passes    uint64
	err       error
}

type StreamingDeps struct {
	Index     *world.ChunkIndex
	Generator *world.ChunkGenerator
	Loader    *DebrisLoader
	Observers world.ObserverSource
	Config    *config.Store
	Bus       *event.Bus
	World     *ecs.World
	Stores    *component.Stores
	Log       *zap.Logger
}

func NewStreamingSystem(d StreamingDeps) *StreamingSystem {
	s := &StreamingSystem{
		index:     d.Index,
		generator: d.Generator,
		loader:    d.Loader,
		observers: d.Observers,
		cfg:       d.Config,
		bus:       d.Bus,
		ecs:       d.World,
		stores:    d.Stores,
		log:       d.Log,
		loaded:    make(map[world.ChunkCoord]struct{}),
		safe:      make(map[world.ChunkCoord]struct{}),
		loadQ:     newChunkQueue(),
		unloadQ:   newChunkQueue(),
	}
	d.Loader.SetVisitor(s)
	return s
}

func (s *StreamingSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *StreamingSystem) Update(dt time.Duration) {
	if s.err != nil {
		return
	}
	st := s.cfg.Streaming()
	if !st.Enabled {
		return
	}
	s.acc += dt
	if s.acc >= st.ScanInterval {
		s.acc -= st.ScanInterval
		if s.acc >= st.ScanInterval {
			// stalled loop; drop the backlog instead of running passes back to back
			s.acc = 0
		}
		if err := s.Pass(); err != nil {
			s.fail(err)
			return
		}
	}
	s.flush()
}

// Err returns the first hard failure of the streaming core, including the loader's.
func (s *StreamingSystem) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.loader.Err()
}

func (s *StreamingSystem) fail(err error) {
	if s.err == nil {
		s.err = err
		s.log.Error("streaming pass failed", zap.Error(err))
	}
}

// Pass computes the wanted set, visits every newly wanted chunk and queues the
// difference against the loaded set. Running it twice with the same
// observers queues nothing the second time.
func (s *StreamingSystem) Pass() error {
	s.passes++
	wanted := WantedChunks(s.observers.Observers(), s.cfg.Streaming().LoadRadius)
	next := make(map[world.ChunkCoord]struct{}, len(wanted))
	for _, c := range wanted {
		next[c] = struct{}{}
		if _, ok := s.loaded[c]; ok {
			continue
		}
		if _, err := s.Visit(c); err != nil {
			return err
		}
		s.enqueueLoad(c)
	}

	var gone []world.ChunkCoord
	for c := range s.loaded {
		if _, ok := next[c]; !ok {
			gone = append(gone, c)
		}
	}
	sortCoords(gone)
	for _, c := range gone {
		s.enqueueUnload(c)
	}
	s.loaded = next
	return nil
}

// enqueueLoad cancels a pending unload instead of queueing a reload, since the
// chunk has not been unloaded yet.
func (s *StreamingSystem) enqueueLoad(c world.ChunkCoord) {
	if s.unloadQ.remove(c) {
		return
	}
	s.loadQ.push(c)
}

func (s *StreamingSystem) enqueueUnload(c world.ChunkCoord) {
	if s.loadQ.remove(c) {
		return
	}
	s.unloadQ.push(c)
}

func (s *StreamingSystem) flush() {
	for {
		c, ok := s.unloadQ.pop()
		if !ok {
			break
		}
		ch, ok := s.index.Get(c)
		if !ok || !ch.Loaded {
			continue
		}
		ch.Loaded = false
		s.loader.UnloadChunk(ch)
		event.Emit(s.bus, event.ChunkUnloaded{Coord: c})
	}
	for {
		c, ok := s.loadQ.pop()
		if !ok {
			break
		}
		ch, ok := s.index.Get(c)
		if !ok || ch.Loaded {
			continue
		}
		ch.Loaded = true
		s.loader.EnqueueChunk(ch)
		event.Emit(s.bus, event.ChunkLoaded{Coord: c})
	}
}

// Visit returns the chunk at c, generating and indexing it on the first visit.
func (s *StreamingSystem) Visit(c world.ChunkCoord) (*world.WorldChunk, error) {
	ch, created, err := s.index.Ensure(c, s.generator.Generate)
	if err != nil {
		return nil, fmt.Errorf("visit %s: %w", c, err)
	}
	if created {
		s.generatedChunk(ch)
	}
	return ch, nil
}

func (s *StreamingSystem) generatedChunk(ch *world.WorldChunk) {
	if int(ch.Outcome) < len(s.generated) {
		s.generated[ch.Outcome]++
	}
	event.Emit(s.bus, event.ChunkGenerated{
		Round:   s.round,
		Coord:   ch.Coord,
		Outcome: ch.Outcome,
		BiomeID: ch.BiomeID(),
		Debris:  len(ch.Debris),
	})
}

// ForceEmptyChunk creates an empty chunk at c and records it as a safe spawn
// location. It fails with world.ErrChunkExists if c was already visited.
func (s *StreamingSystem) ForceEmptyChunk(c world.ChunkCoord) error {
	if s.index.Has(c) {
		s.log.Error("force empty on existing chunk", zap.Stringer("chunk", c))
		return fmt.Errorf("force empty %s: %w", c, world.ErrChunkExists)
	}
	ch, err := s.generator.Empty(c, world.OutcomeForcedEmpty)
	if err != nil {
		return fmt.Errorf("force empty %s: %w", c, err)
	}
	if err := s.index.Insert(ch); err != nil {
		return err
	}
	s.safe[c] = struct{}{}
	s.generatedChunk(ch)
	return nil
}

// ForceSpawnChunk runs organic generation for c immediately, without the clip
// and point-of-interest checks. It fails with world.ErrChunkExists if c was
// already visited.
func (s *StreamingSystem) ForceSpawnChunk(c world.ChunkCoord) error {
	if s.index.Has(c) {
		s.log.Error("force spawn on existing chunk", zap.Stringer("chunk", c))
		return fmt.Errorf("force spawn %s: %w", c, world.ErrChunkExists)
	}
	ch, err := s.generator.GenerateOrganic(c)
	if err != nil {
		return fmt.Errorf("force spawn %s: %w", c, err)
	}
	if err := s.index.Insert(ch); err != nil {
		return err
	}
	s.generatedChunk(ch)
	return nil
}

// Reset discards all streaming state for a new round and reseeds generation.
// Materialized debris is destroyed at once; point-of-interest structures are
// queued for cleanup.
func (s *StreamingSystem) Reset(seed int64) {
	s.loader.Reset()
	for _, id := range s.stores.Structures.IDs() {
		s.ecs.MarkForDestruction(id)
	}
	s.index.Clear()
	s.loadQ.clear()
	s.unloadQ.clear()
	clear(s.loaded)
	clear(s.safe)
	s.acc = 0
	s.generated = [4]int{}
	s.generator.Reset(seed)
}

// StartRound resets the world with seed, forces the origin chunk empty as the
// spawn point and announces the round.
func (s *StreamingSystem) StartRound(seed int64) (uuid.UUID, error) {
	s.Reset(seed)
	s.round = uuid.New()
	if err := s.ForceEmptyChunk(world.ChunkCoord{}); err != nil {
		return uuid.Nil, err
	}
	event.Emit(s.bus, event.RoundStarted{RoundID: s.round, Seed: seed})
	s.log.Info("round started", zap.String("round", s.round.String()), zap.Int64("seed", seed))
	return s.round, nil
}

func (s *StreamingSystem) Round() uuid.UUID { return s.round }

// SafeChunks returns the chunks forced empty this round.
func (s *StreamingSystem) SafeChunks() []world.ChunkCoord {
	out := make([]world.ChunkCoord, 0, len(s.safe))
	for c := range s.safe {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

// LoadedChunks returns the chunks wanted by the last pass.
func (s *StreamingSystem) LoadedChunks() []world.ChunkCoord {
	out := make([]world.ChunkCoord, 0, len(s.loaded))
	for c := range s.loaded {
		out = append(out, c)
	}
	sortCoords(out)
	return out
}

// Stats is a point-in-time view of the streaming state.
type Stats struct {
	Chunks        int
	Loaded        int
	PendingLoad   int
	PendingUnload int
	PendingDebris int
	LiveDebris    int
	Passes        uint64
	Generated     map[string]int
}

func (s *StreamingSystem) Stats() Stats {
	st := Stats{
		Chunks:        s.index.Len(),
		Loaded:        len(s.loaded),
		PendingLoad:   s.loadQ.len(),
		PendingUnload: s.unloadQ.len(),
		PendingDebris: s.loader.Pending(),
		LiveDebris:    s.loader.Live(),
		Passes:        s.passes,
		Generated:     make(map[string]int, len(s.generated)),
	}
	for o, n := range s.generated {
		st.Generated[world.ChunkOutcome(o).String()] = n
	}
	return st
}

// WantedChunks returns every chunk within the load radius of any observer,
// in first-seen order without duplicates. The footprint is a disc of
// floor(loadRadius/ChunkSize)+1 chunks around the observer's chunk.
func WantedChunks(observers []world.Observer, loadRadius float64) []world.ChunkCoord {
	division := int32(math.Floor(loadRadius/world.ChunkSize)) + 1
	seen := make(map[world.ChunkCoord]struct{})
	var out []world.ChunkCoord
	for _, o := range observers {
		if o.Spectating {
			continue
		}
		center := world.ChunkAt(o.Pos)
		for y := -division; y <= division; y++ {
			for x := -division; x <= division; x++ {
				if x*x+y*y > division*division {
					continue
				}
				c := center.Add(world.ChunkCoord{X: x, Y: y})
				if _, dup := seen[c]; dup {
					continue
				}
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}

func sortCoords(cs []world.ChunkCoord) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Y != cs[j].Y {
			return cs[i].Y < cs[j].Y
		}
		return cs[i].X < cs[j].X
	})
}
