package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: refresh observers, poll config
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: debris motion, streaming scan
	PhasePostUpdate              // 3: budgeted debris materialization
	PhaseOutput                  // 4: stats / reporting
	PhasePersist                 // 5: generation audit flush
	PhaseCleanup                 // 6: destroy queued entities
)

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
