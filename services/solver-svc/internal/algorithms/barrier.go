package algorithms

import (
	"sync"
)

// =============================================================================
// Round Barrier
// =============================================================================

// Phase is the state of the round barrier.
type Phase int32

const (
	// PhaseRunning means workers are processing their active sets.
	PhaseRunning Phase = iota
	// PhaseBarrierWait means every worker has arrived and the orchestrator owns the graph.
	PhaseBarrierWait
	// PhaseDone means the run is over and arriving workers exit.
	PhaseDone
)

// String returns the string representation of the Phase.
func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhaseBarrierWait:
		return "barrier_wait"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// Barrier synchronises a fixed number of workers with one orchestrator.
//
// Workers call Arrive after processing their active set and block until the
// orchestrator releases the round. The orchestrator calls Advance, which waits
// for all workers, runs the barrier step with the lock held, and then either
// releases the workers into the next round or finishes the run.
//
// The mutex is a full memory synchronisation point: everything a worker wrote
// before Arrive is visible to the step, and everything the step wrote is
// visible to workers after they are released.
type Barrier struct {
	mu         sync.Mutex
	allArrived *sync.Cond
	release    *sync.Cond

	workers    int
	waiting    int
	generation uint64
	phase      Phase
}

// NewBarrier creates a barrier for the given number of workers.
func NewBarrier(workers int) *Barrier {
	b := &Barrier{workers: workers}
	b.allArrived = sync.NewCond(&b.mu)
	b.release = sync.NewCond(&b.mu)
	return b
}

// Arrive signals that the calling worker finished its round and blocks until
// the orchestrator releases it. It returns false when the worker must exit.
func (b *Barrier) Arrive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.phase == PhaseDone {
		return false
	}

	b.waiting++
	if b.waiting == b.workers {
		b.phase = PhaseBarrierWait
		b.allArrived.Signal()
	}

	gen := b.generation
	for gen == b.generation {
		b.release.Wait()
	}

	return b.phase != PhaseDone
}

// Advance waits until every worker has arrived, then runs step while holding
// the barrier lock. If step reports done, or panics, the barrier moves to
// PhaseDone; otherwise the waiting counter is reset and the next round starts.
// All workers are released in both cases.
func (b *Barrier) Advance(step func() (done bool)) (done bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for b.waiting < b.workers {
		b.allArrived.Wait()
	}

	done = true
	defer func() {
		b.waiting = 0
		b.generation++
		if done {
			b.phase = PhaseDone
		} else {
			b.phase = PhaseRunning
		}
		b.release.Broadcast()
	}()

	done = step()
	return done
}

// Phase returns the current barrier phase.
func (b *Barrier) Phase() Phase {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.phase
}

// Waiting returns how many workers are parked at the barrier.
func (b *Barrier) Waiting() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.waiting
}

// Generation returns the number of completed rounds.
func (b *Barrier) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.generation
}
