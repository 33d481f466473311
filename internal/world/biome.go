package world

import (
	"github.com/aquilax/go-perlin"

	"github.com/driftworks/chunkstream/internal/data"
)

const (
	biomeNoiseAlpha  = 2.0
	biomeNoiseBeta   = 2.0
	biomeNoiseOctave = 3
	// keeps samples off integer lattice points, where perlin noise is always 0
	biomeNoiseOffset = 0.5
)

// BiomeSelector maps chunk coordinates to biomes through a seeded perlin
// layer. Same seed, same coordinate, same biome.
type BiomeSelector struct {
	biomes *data.BiomeTable
	scale  float64
	seed   int64
	noise  *perlin.Perlin
}

// NewBiomeSelector returns a selector seeded with 0; call Reset at round start.
func NewBiomeSelector(biomes *data.BiomeTable, scale float64) *BiomeSelector {
	s := &BiomeSelector{biomes: biomes, scale: scale}
	s.Reset(0)
	return s
}

// Reset replaces the noise layer with one built from seed. Calling it again
// with any seed fully discards the previous layer.
func (s *BiomeSelector) Reset(seed int64) {
	s.seed = seed
	s.noise = perlin.NewPerlin(biomeNoiseAlpha, biomeNoiseBeta, biomeNoiseOctave, seed)
}

func (s *BiomeSelector) Seed() int64 { return s.seed }

// SetScale changes the noise frequency (hot reload). It does not reseed.
func (s *BiomeSelector) SetScale(scale float64) { s.scale = scale }

// Sample returns the raw noise value for a chunk, clamped to [-1, 1].
func (s *BiomeSelector) Sample(c ChunkCoord) float64 {
	v := s.noise.Noise2D(
		float64(c.X)*s.scale+biomeNoiseOffset,
		float64(c.Y)*s.scale+biomeNoiseOffset,
	)
	switch {
	case v < -1:
		return -1
	case v > 1:
		return 1
	}
	return v
}

// Select returns the biome whose noise range contains the chunk's sample.
// ok is false when no range matches; callers fall back to the default biome.
func (s *BiomeSelector) Select(c ChunkCoord) (*data.Biome, bool) {
	v := s.Sample(c)
	for _, b := range s.biomes.Ordered() {
		if b.Contains(v) {
			return b, true
		}
	}
	return nil, false
}
