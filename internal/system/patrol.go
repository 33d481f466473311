package system

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	coresys "github.com/driftworks/chunkstream/internal/core/system"
	"github.com/driftworks/chunkstream/internal/world"
)

// PatrolSystem moves demo observers around concentric circles about the
// origin so the binary streams chunks without a session layer. Observer i
// circles at radius (i+1)*spacing. Phase 0 (Input).
type PatrolSystem struct {
	registry *world.ObserverRegistry
	count    int
	speed    float64
	spacing  float64
	angles   []float64
}

func NewPatrolSystem(registry *world.ObserverRegistry, count int, speed float64) *PatrolSystem {
	s := &PatrolSystem{
		registry: registry,
		count:    count,
		speed:    speed,
		spacing:  4 * world.ChunkSize,
		angles:   make([]float64, count),
	}
	for i := range s.angles {
		s.angles[i] = float64(i) * 2 * math.Pi / float64(count)
		s.registry.Set(s.id(i), s.position(i))
	}
	return s
}

func (s *PatrolSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *PatrolSystem) Update(dt time.Duration) {
	for i := range s.angles {
		r := float64(i+1) * s.spacing
		s.angles[i] = math.Mod(s.angles[i]+s.speed*dt.Seconds()/r, 2*math.Pi)
		s.registry.Set(s.id(i), s.position(i))
	}
}

func (s *PatrolSystem) id(i int) uint64 { return uint64(i + 1) }

func (s *PatrolSystem) position(i int) mgl64.Vec2 {
	r := float64(i+1) * s.spacing
	return mgl64.Vec2{math.Cos(s.angles[i]) * r, math.Sin(s.angles[i]) * r}
}
