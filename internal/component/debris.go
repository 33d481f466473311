package component

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/world"
)

// Position is the world position of a live entity.
type Position struct {
	Pos mgl64.Vec2
}

// Velocity is applied by DebrisMotionSystem, in world units per second.
type Velocity struct {
	V mgl64.Vec2
}

// Debris describes a materialized debris entity.
type Debris struct {
	Kind      string
	Prototype string
	Radius    float64
}

// DebrisTag links a materialized entity back to its definition.
// Entry is cleared when the entity is dematerialized; a nil Entry means any
// pending move for the entity is stale.
type DebrisTag struct {
	Chunk world.ChunkCoord
	Entry *world.DebrisEntry
}

// Structure is a static entity placed by a point-of-interest layout.
type Structure struct {
	Prototype string
	Layout    string
	Chunk     world.ChunkCoord
}

// Stores holds the component stores used by the streaming engine.
// Every store is registered with the ECS world so destroyed entities are
// removed from all of them.
type Stores struct {
	Positions  *ecs.PtrComponentStore[Position]
	Velocities *ecs.PtrComponentStore[Velocity]
	Debris     *ecs.PtrComponentStore[Debris]
	Tags       *ecs.PtrComponentStore[DebrisTag]
	Structures *ecs.PtrComponentStore[Structure]
}

func NewStores(w *ecs.World) *Stores {
	return &Stores{
		Positions:  ecs.RegisterStore[Position](w),
		Velocities: ecs.RegisterStore[Velocity](w),
		Debris:     ecs.RegisterStore[Debris](w),
		Tags:       ecs.RegisterStore[DebrisTag](w),
		Structures: ecs.RegisterStore[Structure](w),
	}
}
