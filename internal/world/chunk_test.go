package world

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkAtFloorsNegativeCoordinates(t *testing.T) {
	cases := []struct {
		pos  mgl64.Vec2
		want ChunkCoord
	}{
		{mgl64.Vec2{0, 0}, ChunkCoord{0, 0}},
		{mgl64.Vec2{127.9, 127.9}, ChunkCoord{0, 0}},
		{mgl64.Vec2{128, 0}, ChunkCoord{1, 0}},
		{mgl64.Vec2{-0.1, -0.1}, ChunkCoord{-1, -1}},
		{mgl64.Vec2{-128, -128.5}, ChunkCoord{-1, -2}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ChunkAt(tc.pos), "pos %v", tc.pos)
	}
}

func TestChunkBounds(t *testing.T) {
	tl, br := ChunkCoord{X: -1, Y: 2}.Bounds()
	assert.Equal(t, mgl64.Vec2{-128, 256}, tl)
	assert.Equal(t, mgl64.Vec2{0, 384}, br)
	assert.Equal(t, ChunkCoord{X: -1, Y: 2}, ChunkAt(ChunkCoord{X: -1, Y: 2}.Center()))
}

func TestDebrisOwnershipTransfer(t *testing.T) {
	a := NewWorldChunk(ChunkCoord{0, 0}, OutcomeGenerated, nil)
	b := NewWorldChunk(ChunkCoord{1, 0}, OutcomeGenerated, nil)
	e := &DebrisEntry{Kind: "rock", Pos: mgl64.Vec2{10, 10}}
	a.AddDebris(e)
	assert.Equal(t, a.Coord, e.Chunk)

	require.True(t, a.RemoveDebris(e))
	b.AddDebris(e)
	assert.False(t, a.Owns(e))
	assert.True(t, b.Owns(e))
	assert.Equal(t, b.Coord, e.Chunk)
	assert.False(t, a.RemoveDebris(e))
}

func TestDebrisListIsStable(t *testing.T) {
	ch := NewWorldChunk(ChunkCoord{}, OutcomeGenerated, nil)
	ch.AddDebris(&DebrisEntry{Kind: "b", Pos: mgl64.Vec2{5, 1}})
	ch.AddDebris(&DebrisEntry{Kind: "a", Pos: mgl64.Vec2{1, 1}})
	ch.AddDebris(&DebrisEntry{Kind: "c", Pos: mgl64.Vec2{0, 0}})

	list := ch.DebrisList()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{list[0].Kind, list[1].Kind, list[2].Kind})
}

func TestIndexEnsureGeneratesOnce(t *testing.T) {
	idx := NewChunkIndex()
	calls := 0
	gen := func(c ChunkCoord) (*WorldChunk, error) {
		calls++
		return NewWorldChunk(c, OutcomeGenerated, nil), nil
	}

	first, created, err := idx.Ensure(ChunkCoord{2, 3}, gen)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := idx.Ensure(ChunkCoord{2, 3}, gen)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, idx.Len())
}

func TestIndexEnsureErrorLeavesIndexUntouched(t *testing.T) {
	idx := NewChunkIndex()
	boom := errors.New("boom")
	_, _, err := idx.Ensure(ChunkCoord{}, func(ChunkCoord) (*WorldChunk, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, idx.Has(ChunkCoord{}))
}

func TestIndexInsertNeverOverwrites(t *testing.T) {
	idx := NewChunkIndex()
	orig := NewWorldChunk(ChunkCoord{1, 1}, OutcomeForcedEmpty, nil)
	require.NoError(t, idx.Insert(orig))

	err := idx.Insert(NewWorldChunk(ChunkCoord{1, 1}, OutcomeGenerated, nil))
	assert.ErrorIs(t, err, ErrChunkExists)
	got, _ := idx.Get(ChunkCoord{1, 1})
	assert.Same(t, orig, got)

	idx.Clear()
	assert.Equal(t, 0, idx.Len())
}

func TestObserverRegistrySkipsSpectators(t *testing.T) {
	r := NewObserverRegistry()
	r.Set(2, mgl64.Vec2{1, 1})
	r.Set(1, mgl64.Vec2{0, 0})
	r.Set(3, mgl64.Vec2{5, 5})
	r.SetSpectating(3, true)
	r.Set(1, mgl64.Vec2{9, 9})

	obs := r.Observers()
	require.Len(t, obs, 2)
	assert.Equal(t, uint64(1), obs[0].ID)
	assert.Equal(t, mgl64.Vec2{9, 9}, obs[0].Pos)
	assert.Equal(t, uint64(2), obs[1].ID)

	r.Remove(2)
	assert.Equal(t, 2, r.Count())
}
