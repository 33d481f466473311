package system

import (
	"time"

	"github.com/driftworks/chunkstream/internal/core/event"
	coresys "github.com/driftworks/chunkstream/internal/core/system"
)

// DispatchSystem swaps the event bus buffers and delivers last tick's events.
// Phase 1 (PreUpdate).
type DispatchSystem struct {
	bus *event.Bus
}

func NewDispatchSystem(bus *event.Bus) *DispatchSystem {
	return &DispatchSystem{bus: bus}
}

func (s *DispatchSystem) Phase() coresys.Phase { return coresys.PhasePreUpdate }

func (s *DispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}
