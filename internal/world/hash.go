package world

// hash32 is a murmur-style finalizer; stable across versions (no math/rand).
func hash32(x uint32) uint32 {
	x ^= x >> 16
	x *= 0x7feb352d
	x ^= x >> 15
	x *= 0x846ca68b
	x ^= x >> 16
	return x
}

// chunkSeed derives a per-chunk RNG seed from the round seed, so a chunk's
// content depends only on (seed, coord) and not on visit order.
func chunkSeed(seed int64, c ChunkCoord) int64 {
	lo := hash32(uint32(seed) ^ uint32(c.X)*0x9e3779b1 ^ uint32(c.Y)*0x85ebca6b)
	hi := hash32(uint32(seed>>32) ^ uint32(c.Y)*0x9e3779b1 ^ uint32(c.X)*0xc2b2ae35)
	return int64(uint64(hi)<<32 | uint64(lo))
}
