package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pos struct{ X, Y float64 }
type vel struct{ X, Y float64 }

func TestEntityPoolNeverHandsOutZero(t *testing.T) {
	p := NewEntityPool()
	id := p.Create()
	assert.False(t, id.IsZero())
	assert.Equal(t, uint32(1), id.Index())
	assert.False(t, p.Alive(0))
}

func TestEntityPoolRecyclesWithNewGeneration(t *testing.T) {
	p := NewEntityPool()
	a := p.Create()
	require.True(t, p.Destroy(a))
	assert.False(t, p.Destroy(a), "stale destroy must be a no-op")

	b := p.Create()
	assert.Equal(t, a.Index(), b.Index())
	assert.NotEqual(t, a, b)
	assert.False(t, p.Alive(a))
	assert.True(t, p.Alive(b))
	assert.Equal(t, 1, p.Live())
}

func TestWorldDestroyRemovesComponents(t *testing.T) {
	w := NewWorld()
	positions := RegisterStore[pos](w)
	id := w.CreateEntity()
	positions.Set(id, &pos{X: 1})

	require.True(t, w.DestroyEntity(id))
	assert.False(t, positions.Has(id))
	assert.False(t, w.DestroyEntity(id))
}

func TestWorldDeferredDestroy(t *testing.T) {
	w := NewWorld()
	a := w.CreateEntity()
	b := w.CreateEntity()
	w.MarkForDestruction(a)
	w.MarkForDestruction(a)
	w.MarkForDestruction(b)
	assert.Equal(t, 3, w.PendingDestruction())

	assert.Equal(t, 2, w.FlushDestroyQueue())
	assert.False(t, w.Alive(a))
	assert.False(t, w.Alive(b))
	assert.Equal(t, 0, w.PendingDestruction())
}

func TestEach2(t *testing.T) {
	w := NewWorld()
	ps := RegisterStore[pos](w)
	vs := RegisterStore[vel](w)
	moving := w.CreateEntity()
	still := w.CreateEntity()
	ps.Set(moving, &pos{})
	vs.Set(moving, &vel{X: 2})
	ps.Set(still, &pos{})

	seen := 0
	Each2(ps, vs, func(id EntityID, p *pos, v *vel) {
		seen++
		assert.Equal(t, moving, id)
		p.X += v.X
	})
	assert.Equal(t, 1, seen)
	got, _ := ps.Get(moving)
	assert.Equal(t, 2.0, got.X)
}
