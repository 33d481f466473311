package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftworks/chunkstream/internal/core/event"
	coresys "github.com/driftworks/chunkstream/internal/core/system"
	"github.com/driftworks/chunkstream/internal/persist"
)

// AuditStore persists the generation audit trail.
type AuditStore interface {
	StartRound(ctx context.Context, id uuid.UUID, seed int64, startedAt time.Time) error
	RecordChunks(ctx context.Context, round uuid.UUID, recs []persist.ChunkRecord) error
}

type auditRound struct {
	id      uuid.UUID
	seed    int64
	started time.Time
}

// maxAuditBacklog bounds the buffered chunk records while the database is failing.
const maxAuditBacklog = 50000

// AuditSystem buffers round and chunk generation events and writes them in
// batches. Failures are logged; the audit never affects streaming.
// Phase 5 (Persist).
type AuditSystem struct {
	store     AuditStore
	log       *zap.Logger
	now       func() time.Time
	tickCount int
	interval  int // flush every N ticks

	rounds []auditRound
	chunks map[uuid.UUID][]persist.ChunkRecord
	order  []uuid.UUID
	queued int
}

func NewAuditSystem(store AuditStore, bus *event.Bus, log *zap.Logger, intervalTicks int) *AuditSystem {
	if intervalTicks < 1 {
		intervalTicks = 1
	}
	s := &AuditSystem{
		store:    store,
		log:      log,
		now:      time.Now,
		interval: intervalTicks,
		chunks:   make(map[uuid.UUID][]persist.ChunkRecord),
	}
	event.Subscribe(bus, s.onRoundStarted)
	event.Subscribe(bus, s.onChunkGenerated)
	return s
}

func (s *AuditSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *AuditSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

func (s *AuditSystem) onRoundStarted(ev event.RoundStarted) {
	s.rounds = append(s.rounds, auditRound{id: ev.RoundID, seed: ev.Seed, started: s.now()})
}

func (s *AuditSystem) onChunkGenerated(ev event.ChunkGenerated) {
	if ev.Round == uuid.Nil {
		return
	}
	if s.queued >= maxAuditBacklog {
		return
	}
	if _, ok := s.chunks[ev.Round]; !ok {
		s.order = append(s.order, ev.Round)
	}
	s.chunks[ev.Round] = append(s.chunks[ev.Round], persist.ChunkRecord{
		X:           ev.Coord.X,
		Y:           ev.Coord.Y,
		Outcome:     ev.Outcome.String(),
		Biome:       ev.BiomeID,
		Debris:      ev.Debris,
		GeneratedAt: s.now(),
	})
	s.queued++
}

// Pending returns the number of buffered chunk records.
func (s *AuditSystem) Pending() int { return s.queued }

// Flush writes everything buffered. Rounds go first so chunk rows always
// reference an existing round. Called on shutdown as well.
func (s *AuditSystem) Flush() {
	if len(s.rounds) == 0 && s.queued == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for len(s.rounds) > 0 {
		r := s.rounds[0]
		if err := s.store.StartRound(ctx, r.id, r.seed, r.started); err != nil {
			s.log.Error("audit round write failed", zap.String("round", r.id.String()), zap.Error(err))
			return
		}
		s.rounds = s.rounds[1:]
	}

	for len(s.order) > 0 {
		id := s.order[0]
		recs := s.chunks[id]
		if err := s.store.RecordChunks(ctx, id, recs); err != nil {
			s.log.Error("audit chunk write failed",
				zap.String("round", id.String()), zap.Int("records", len(recs)), zap.Error(err))
			return
		}
		delete(s.chunks, id)
		s.order = s.order[1:]
		s.queued -= len(recs)
		s.log.Debug("audit flushed", zap.String("round", id.String()), zap.Int("records", len(recs)))
	}
}
