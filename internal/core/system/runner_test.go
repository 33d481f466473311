package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingSystem struct {
	name  string
	phase Phase
	log   *[]string
}

func (s *recordingSystem) Phase() Phase { return s.phase }

func (s *recordingSystem) Update(time.Duration) { *s.log = append(*s.log, s.name) }

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "cleanup", phase: PhaseCleanup, log: &log})
	r.Register(&recordingSystem{name: "stream", phase: PhaseUpdate, log: &log})
	r.Register(&recordingSystem{name: "motion", phase: PhaseUpdate, log: &log})
	r.Register(&recordingSystem{name: "input", phase: PhaseInput, log: &log})

	r.Tick(200 * time.Millisecond)

	assert.Equal(t, []string{"input", "stream", "motion", "cleanup"}, log)
	assert.Equal(t, 4, r.Len())
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(&recordingSystem{name: "a", phase: PhaseInput, log: &log})
	r.Register(&recordingSystem{name: "b", phase: PhasePersist, log: &log})

	r.TickPhase(PhasePersist, time.Millisecond)

	assert.Equal(t, []string{"b"}, log)
}
