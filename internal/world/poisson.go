package world

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const poissonAttempts = 30

// PoissonSampler is the default Sampler: Bridson's algorithm over a
// background grid. Output depends only on the seed and the rectangle.
type PoissonSampler struct {
	seed     int64
	attempts int
}

func NewPoissonSampler(seed int64) *PoissonSampler {
	return &PoissonSampler{seed: seed, attempts: poissonAttempts}
}

// Reseed changes the seed used for subsequent samples.
func (p *PoissonSampler) Reseed(seed int64) { p.seed = seed }

// SampleRectangle returns points in [topLeft, bottomRight) no closer than minDist.
func (p *PoissonSampler) SampleRectangle(topLeft, bottomRight mgl64.Vec2, minDist float64) []mgl64.Vec2 {
	size := bottomRight.Sub(topLeft)
	if minDist <= 0 || size.X() <= 0 || size.Y() <= 0 {
		return nil
	}
	corner := ChunkCoord{X: int32(math.Floor(topLeft.X())), Y: int32(math.Floor(topLeft.Y()))}
	r := rand.New(rand.NewSource(chunkSeed(p.seed, corner)))

	cell := minDist / math.Sqrt2
	gw := int(math.Ceil(size.X() / cell))
	gh := int(math.Ceil(size.Y() / cell))
	grid := make([]int, gw*gh)
	for i := range grid {
		grid[i] = -1
	}
	cellOf := func(q mgl64.Vec2) (int, int) {
		local := q.Sub(topLeft)
		return min(int(local.X()/cell), gw-1), min(int(local.Y()/cell), gh-1)
	}
	inside := func(q mgl64.Vec2) bool {
		return q.X() >= topLeft.X() && q.Y() >= topLeft.Y() &&
			q.X() < bottomRight.X() && q.Y() < bottomRight.Y()
	}

	var points []mgl64.Vec2
	var active []int
	add := func(q mgl64.Vec2) {
		gx, gy := cellOf(q)
		grid[gy*gw+gx] = len(points)
		active = append(active, len(points))
		points = append(points, q)
	}
	fits := func(q mgl64.Vec2) bool {
		gx, gy := cellOf(q)
		for y := max(gy-2, 0); y <= min(gy+2, gh-1); y++ {
			for x := max(gx-2, 0); x <= min(gx+2, gw-1); x++ {
				if i := grid[y*gw+x]; i >= 0 && points[i].Sub(q).Len() < minDist {
					return false
				}
			}
		}
		return true
	}

	add(topLeft.Add(mgl64.Vec2{r.Float64() * size.X(), r.Float64() * size.Y()}))
	for len(active) > 0 {
		i := r.Intn(len(active))
		origin := points[active[i]]
		found := false
		for k := 0; k < p.attempts; k++ {
			angle := r.Float64() * 2 * math.Pi
			dist := minDist * (1 + r.Float64())
			q := origin.Add(mgl64.Vec2{math.Cos(angle) * dist, math.Sin(angle) * dist})
			if !inside(q) || !fits(q) {
				continue
			}
			add(q)
			found = true
			break
		}
		if !found {
			last := len(active) - 1
			active[i] = active[last]
			active = active[:last]
		}
	}
	return points
}
