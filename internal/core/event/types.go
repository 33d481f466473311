package event

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/world"
)

// RoundStarted is emitted after the streaming state has been reset for a new round.
type RoundStarted struct {
	RoundID uuid.UUID
	Seed    int64
}

// ChunkGenerated is emitted once per chunk, on its first visit.
type ChunkGenerated struct {
	Round   uuid.UUID
	Coord   world.ChunkCoord
	Outcome world.ChunkOutcome
	BiomeID string
	Debris  int
}

type ChunkLoaded struct {
	Coord world.ChunkCoord
}

type ChunkUnloaded struct {
	Coord world.ChunkCoord
}

// DebrisMoved is emitted by whatever moves a materialized debris entity.
type DebrisMoved struct {
	Entity ecs.EntityID
	Pos    mgl64.Vec2
}
