package world

import (
	"errors"
	"fmt"
)

// ErrChunkExists is returned when a chunk is inserted for an already visited coordinate.
var ErrChunkExists = errors.New("chunk already exists")

// ChunkIndex maps chunk coordinates to chunk state. A coordinate is present
// iff it has been visited this round. Accessed only from the game loop.
type ChunkIndex struct {
	chunks map[ChunkCoord]*WorldChunk
}

func NewChunkIndex() *ChunkIndex {
	return &ChunkIndex{chunks: make(map[ChunkCoord]*WorldChunk, 1024)}
}

func (x *ChunkIndex) Get(c ChunkCoord) (*WorldChunk, bool) {
	ch, ok := x.chunks[c]
	return ch, ok
}

func (x *ChunkIndex) Has(c ChunkCoord) bool {
	_, ok := x.chunks[c]
	return ok
}

func (x *ChunkIndex) Len() int { return len(x.chunks) }

// Insert adds a freshly generated chunk. Existing data is never replaced.
func (x *ChunkIndex) Insert(ch *WorldChunk) error {
	if _, ok := x.chunks[ch.Coord]; ok {
		return fmt.Errorf("%w at %s", ErrChunkExists, ch.Coord)
	}
	x.chunks[ch.Coord] = ch
	return nil
}

// Ensure returns the chunk at c, generating and inserting it on first visit.
// created reports whether gen ran. A gen error leaves the index unchanged.
func (x *ChunkIndex) Ensure(c ChunkCoord, gen func(ChunkCoord) (*WorldChunk, error)) (ch *WorldChunk, created bool, err error) {
	if ch, ok := x.chunks[c]; ok {
		return ch, false, nil
	}
	ch, err = gen(c)
	if err != nil {
		return nil, false, fmt.Errorf("generate chunk %s: %w", c, err)
	}
	x.chunks[c] = ch
	return ch, true, nil
}

// Each visits every chunk in unspecified order.
func (x *ChunkIndex) Each(fn func(*WorldChunk)) {
	for _, ch := range x.chunks {
		fn(ch)
	}
}

// Clear drops every chunk. Used only by a round reset.
func (x *ChunkIndex) Clear() {
	clear(x.chunks)
}
