package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/driftworks/chunkstream/internal/core/ecs"
	coresys "github.com/driftworks/chunkstream/internal/core/system"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// Phase 6 (Cleanup).
type CleanupSystem struct {
	world *ecs.World
	log   *zap.Logger
}

func NewCleanupSystem(world *ecs.World, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{world: world, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if s.world.PendingDestruction() == 0 {
		return
	}
	n := s.world.FlushDestroyQueue()
	s.log.Debug("entities destroyed", zap.Int("count", n))
}
