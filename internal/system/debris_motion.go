package system

import (
	"time"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/core/event"
	coresys "github.com/driftworks/chunkstream/internal/core/system"
	"github.com/driftworks/chunkstream/internal/world"
)

// DebrisMotionSystem integrates debris velocity and reports chunk crossings
// as DebrisMoved events. Phase 2 (Update).
type DebrisMotionSystem struct {
	stores *component.Stores
	bus    *event.Bus
}

func NewDebrisMotionSystem(stores *component.Stores, bus *event.Bus) *DebrisMotionSystem {
	return &DebrisMotionSystem{stores: stores, bus: bus}
}

func (s *DebrisMotionSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *DebrisMotionSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	ecs.Each2(s.stores.Positions, s.stores.Velocities, func(id ecs.EntityID, p *component.Position, v *component.Velocity) {
		before := world.ChunkAt(p.Pos)
		p.Pos = p.Pos.Add(v.V.Mul(sec))
		if world.ChunkAt(p.Pos) == before {
			if tag, ok := s.stores.Tags.Get(id); ok && tag.Entry != nil {
				tag.Entry.Pos = p.Pos
			}
			return
		}
		// ownership changes go through the loader on the next dispatch
		event.Emit(s.bus, event.DebrisMoved{Entity: id, Pos: p.Pos})
	})
}
