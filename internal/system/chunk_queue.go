package system

import "github.com/driftworks/chunkstream/internal/world"

// chunkQueue is a FIFO of chunk coordinates in which each coordinate appears
// at most once.
type chunkQueue struct {
	items []world.ChunkCoord
	set   map[world.ChunkCoord]struct{}
}

func newChunkQueue() *chunkQueue {
	return &chunkQueue{set: make(map[world.ChunkCoord]struct{})}
}

// push reports false if c was already queued.
func (q *chunkQueue) push(c world.ChunkCoord) bool {
	if _, ok := q.set[c]; ok {
		return false
	}
	q.set[c] = struct{}{}
	q.items = append(q.items, c)
	return true
}

// remove drops c from the queue, reporting whether it was queued.
func (q *chunkQueue) remove(c world.ChunkCoord) bool {
	if _, ok := q.set[c]; !ok {
		return false
	}
	delete(q.set, c)
	for i, it := range q.items {
		if it == c {
			q.items = append(q.items[:i], q.items[i+1:]...)
			break
		}
	}
	return true
}

func (q *chunkQueue) pop() (world.ChunkCoord, bool) {
	if len(q.items) == 0 {
		return world.ChunkCoord{}, false
	}
	c := q.items[0]
	q.items = q.items[1:]
	delete(q.set, c)
	return c, true
}

func (q *chunkQueue) len() int { return len(q.items) }

func (q *chunkQueue) clear() {
	q.items = nil
	clear(q.set)
}
