package system

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/config"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/core/event"
	coresys "github.com/driftworks/chunkstream/internal/core/system"
	"github.com/driftworks/chunkstream/internal/world"
)

// ChunkVisitor returns the chunk at a coordinate, generating it on first visit.
type ChunkVisitor interface {
	Visit(c world.ChunkCoord) (*world.WorldChunk, error)
}

// DebrisLoader materializes queued debris under a per-tick time budget and
// dematerializes whole chunks on unload. Phase 3 (PostUpdate).
type DebrisLoader struct {
	index   *world.ChunkIndex
	visitor ChunkVisitor
	spawner DebrisSpawner
	ecs     *ecs.World
	tags    *ecs.PtrComponentStore[component.DebrisTag]
	cfg     *config.Store
	log     *zap.Logger
	now     func() time.Time

	queue []*world.DebrisEntry // strict FIFO
	err   error

	spawned   uint64
	despawned uint64
}

type LoaderDeps struct {
	Index   *world.ChunkIndex
	Spawner DebrisSpawner
	World   *ecs.World
	Stores  *component.Stores
	Config  *config.Store
	Log     *zap.Logger
	Now     func() time.Time // nil = time.Now
}

func NewDebrisLoader(d LoaderDeps) *DebrisLoader {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &DebrisLoader{
		index:   d.Index,
		spawner: d.Spawner,
		ecs:     d.World,
		tags:    d.Stores.Tags,
		cfg:     d.Config,
		log:     d.Log,
		now:     now,
		queue:   make([]*world.DebrisEntry, 0, 256),
	}
}

// SetVisitor wires the component that owns chunk generation. Moves into a
// never visited chunk fail until it is set.
func (l *DebrisLoader) SetVisitor(v ChunkVisitor) { l.visitor = v }

// Subscribe registers the loader for DebrisMoved events.
func (l *DebrisLoader) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(ev event.DebrisMoved) {
		if err := l.MoveDebris(ev.Entity, ev.Pos); err != nil {
			l.fail(err)
		}
	})
}

func (l *DebrisLoader) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (l *DebrisLoader) Update(_ time.Duration) {
	if l.err != nil || !l.cfg.Streaming().Enabled {
		return
	}
	if _, err := l.Drain(); err != nil {
		l.fail(err)
	}
}

// Err returns the first hard failure seen by the loader.
func (l *DebrisLoader) Err() error { return l.err }

func (l *DebrisLoader) fail(err error) {
	if l.err == nil {
		l.err = err
		l.log.Error("debris loader failed", zap.Error(err))
	}
}

// Pending returns the number of queued debris entries.
func (l *DebrisLoader) Pending() int { return len(l.queue) }

// EnqueueChunk appends every debris entry of ch to the back of the queue.
func (l *DebrisLoader) EnqueueChunk(ch *world.WorldChunk) {
	l.queue = append(l.queue, ch.DebrisList()...)
}

// Drain materializes entries from the front of the queue until the budget
// runs out. The budget is checked before each entry, so a zero budget
// processes nothing. Entries already materialized, or whose chunk is no
// longer loaded, are dropped.
func (l *DebrisLoader) Drain() (int, error) {
	budget := l.cfg.Streaming().DebrisLoadBudget()
	start := l.now()
	n := 0
	for len(l.queue) > 0 {
		if l.now().Sub(start) >= budget {
			break
		}
		e := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]

		if e.Materialized() {
			continue
		}
		ch, ok := l.index.Get(e.Chunk)
		if !ok || !ch.Loaded || !ch.Owns(e) {
			continue
		}
		if err := l.materialize(e); err != nil {
			return n, err
		}
		n++
	}
	if len(l.queue) == 0 && cap(l.queue) > 4096 {
		l.queue = make([]*world.DebrisEntry, 0, 256)
	}
	return n, nil
}

func (l *DebrisLoader) materialize(e *world.DebrisEntry) error {
	id, err := l.spawner.SpawnDebris(e.Kind, e.Pos)
	if err != nil {
		return fmt.Errorf("materialize %s at %s: %w", e.Kind, e.Chunk, err)
	}
	e.Entity = id
	l.tags.Set(id, &component.DebrisTag{Chunk: e.Chunk, Entry: e})
	l.spawned++
	return nil
}

func (l *DebrisLoader) dematerialize(e *world.DebrisEntry) {
	if !e.Materialized() {
		return
	}
	if tag, ok := l.tags.Get(e.Entity); ok {
		tag.Entry = nil
	}
	if l.ecs.DestroyEntity(e.Entity) {
		l.despawned++
	}
	e.Entity = 0
}

// UnloadChunk deletes every live entity of ch and drops its queued entries.
// Definitions stay in the chunk. Unloading is not budgeted.
func (l *DebrisLoader) UnloadChunk(ch *world.WorldChunk) {
	for e := range ch.Debris {
		l.dematerialize(e)
	}
	kept := l.queue[:0]
	for _, e := range l.queue {
		if e.Chunk != ch.Coord {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(l.queue); i++ {
		l.queue[i] = nil
	}
	l.queue = kept
}

// MoveDebris records a new position for a materialized debris entity. When the
// position crosses into another chunk, ownership moves with it; if that chunk
// is not loaded the entity is deleted at once. Entities whose tag has already
// been cleared are ignored.
func (l *DebrisLoader) MoveDebris(id ecs.EntityID, pos mgl64.Vec2) error {
	tag, ok := l.tags.Get(id)
	if !ok || tag.Entry == nil {
		return nil
	}
	e := tag.Entry
	e.Pos = pos

	dest := world.ChunkAt(pos)
	if dest == e.Chunk {
		return nil
	}
	if l.visitor == nil {
		return fmt.Errorf("move debris to %s: no chunk visitor", dest)
	}
	dst, err := l.visitor.Visit(dest)
	if err != nil {
		return fmt.Errorf("move debris to %s: %w", dest, err)
	}
	if src, ok := l.index.Get(e.Chunk); ok {
		src.RemoveDebris(e)
	}
	dst.AddDebris(e)
	tag.Chunk = dest

	if !dst.Loaded {
		l.log.Debug("debris left loaded space",
			zap.Stringer("chunk", dest), zap.String("kind", e.Kind))
		l.dematerialize(e)
	}
	return nil
}

// Reset destroys every materialized debris entity and empties the queue.
func (l *DebrisLoader) Reset() {
	for _, id := range l.tags.IDs() {
		tag, _ := l.tags.Get(id)
		if tag.Entry != nil {
			tag.Entry.Entity = 0
		}
		if l.ecs.DestroyEntity(id) {
			l.despawned++
		}
	}
	clear(l.queue)
	l.queue = l.queue[:0]
}

// Live returns the number of materialized debris entities.
func (l *DebrisLoader) Live() int { return l.tags.Len() }
