package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftworks/chunkstream/internal/world"
)

func TestPatrolKeepsObserversOnTheirCircles(t *testing.T) {
	reg := world.NewObserverRegistry()
	p := NewPatrolSystem(reg, 2, 100)
	require.Equal(t, 2, reg.Count())
	before := reg.Observers()

	p.Update(time.Second)
	after := reg.Observers()
	require.Len(t, after, 2)
	for i := range after {
		assert.InDelta(t, before[i].Pos.Len(), after[i].Pos.Len(), 1e-6)
		assert.NotEqual(t, before[i].Pos, after[i].Pos)
	}
	assert.InDelta(t, 4*world.ChunkSize, after[0].Pos.Len(), 1e-6)
	assert.InDelta(t, 8*world.ChunkSize, after[1].Pos.Len(), 1e-6)
}
