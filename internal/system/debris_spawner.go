package system

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/driftworks/chunkstream/internal/component"
	"github.com/driftworks/chunkstream/internal/core/ecs"
	"github.com/driftworks/chunkstream/internal/data"
)

// DebrisSpawner builds the live entity for one debris definition.
// An unknown kind is a hard error.
type DebrisSpawner interface {
	SpawnDebris(kind string, pos mgl64.Vec2) (ecs.EntityID, error)
}

// EntitySpawner is the default DebrisSpawner: it creates an ECS entity with
// Position, Debris and, for drifting kinds, Velocity components.
type EntitySpawner struct {
	world  *ecs.World
	stores *component.Stores
	kinds  *data.DebrisKindTable
	rng    *rand.Rand
}

func NewEntitySpawner(w *ecs.World, stores *component.Stores, kinds *data.DebrisKindTable, seed int64) *EntitySpawner {
	return &EntitySpawner{
		world:  w,
		stores: stores,
		kinds:  kinds,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (s *EntitySpawner) SpawnDebris(kind string, pos mgl64.Vec2) (ecs.EntityID, error) {
	k, err := s.kinds.Lookup(kind)
	if err != nil {
		return 0, fmt.Errorf("spawn debris: %w", err)
	}
	id := s.world.CreateEntity()
	s.stores.Positions.Set(id, &component.Position{Pos: pos})
	s.stores.Debris.Set(id, &component.Debris{Kind: k.ID, Prototype: k.Prototype, Radius: k.Radius})
	if k.DriftSpeed > 0 {
		a := s.rng.Float64() * 2 * math.Pi
		s.stores.Velocities.Set(id, &component.Velocity{
			V: mgl64.Vec2{math.Cos(a), math.Sin(a)}.Mul(k.DriftSpeed),
		})
	}
	return id, nil
}
