package world

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Observer is an occupant whose position decides which chunks are wanted.
type Observer struct {
	ID         uint64
	Pos        mgl64.Vec2
	Spectating bool
}

// ObserverSource lists the active, non-spectating observers. It is called
// once per scheduling pass.
type ObserverSource interface {
	Observers() []Observer
}

// ObserverRegistry is an in-memory ObserverSource fed by the session layer.
// Accessed only from the game loop goroutine.
type ObserverRegistry struct {
	observers map[uint64]*Observer
}

func NewObserverRegistry() *ObserverRegistry {
	return &ObserverRegistry{observers: make(map[uint64]*Observer)}
}

// Set adds or updates an observer.
func (r *ObserverRegistry) Set(id uint64, pos mgl64.Vec2) {
	if o, ok := r.observers[id]; ok {
		o.Pos = pos
		return
	}
	r.observers[id] = &Observer{ID: id, Pos: pos}
}

func (r *ObserverRegistry) SetSpectating(id uint64, spectating bool) {
	if o, ok := r.observers[id]; ok {
		o.Spectating = spectating
	}
}

func (r *ObserverRegistry) Remove(id uint64) {
	delete(r.observers, id)
}

func (r *ObserverRegistry) Count() int { return len(r.observers) }

// Observers returns non-spectating observers ordered by id.
func (r *ObserverRegistry) Observers() []Observer {
	out := make([]Observer, 0, len(r.observers))
	for _, o := range r.observers {
		if o.Spectating {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
