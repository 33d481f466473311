package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/driftworks/chunkstream/internal/core/system"
)

// StatsSystem logs a streaming snapshot every interval. Phase 4 (Output).
type StatsSystem struct {
	streaming *StreamingSystem
	log       *zap.Logger
	interval  time.Duration
	acc       time.Duration
}

func NewStatsSystem(streaming *StreamingSystem, log *zap.Logger, interval time.Duration) *StatsSystem {
	return &StatsSystem{streaming: streaming, log: log, interval: interval}
}

func (s *StatsSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *StatsSystem) Update(dt time.Duration) {
	if s.interval <= 0 {
		return
	}
	s.acc += dt
	if s.acc < s.interval {
		return
	}
	s.acc = 0

	st := s.streaming.Stats()
	s.log.Info("streaming stats",
		zap.Int("chunks", st.Chunks),
		zap.Int("loaded", st.Loaded),
		zap.Int("pending_load", st.PendingLoad),
		zap.Int("pending_unload", st.PendingUnload),
		zap.Int("pending_debris", st.PendingDebris),
		zap.Int("live_debris", st.LiveDebris),
		zap.Uint64("passes", st.Passes),
		zap.Any("generated", st.Generated),
	)
}
