package algorithms

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "running", PhaseRunning.String())
	assert.Equal(t, "barrier_wait", PhaseBarrierWait.String())
	assert.Equal(t, "done", PhaseDone.String())
	assert.Equal(t, "unknown", Phase(9).String())
}

func TestBarrier_Rounds(t *testing.T) {
	const workers = 4
	const rounds = 25

	b := NewBarrier(workers)
	var processed atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				processed.Add(1)
				if !b.Arrive() {
					return
				}
			}
		}()
	}

	steps := 0
	for {
		done := b.Advance(func() bool {
			steps++
			// every worker finished this round before the step runs
			assert.Equal(t, int64(steps*workers), processed.Load())
			assert.Equal(t, workers, b.waiting)
			assert.Equal(t, PhaseBarrierWait, b.phase)
			return steps == rounds
		})
		if done {
			break
		}
	}

	wg.Wait()
	assert.Equal(t, rounds, steps)
	assert.Equal(t, PhaseDone, b.Phase())
	assert.Equal(t, uint64(rounds), b.Generation())
	assert.Zero(t, b.Waiting())
}

func TestBarrier_ArriveAfterDone(t *testing.T) {
	b := NewBarrier(1)

	go func() {
		b.Arrive()
	}()
	assert.True(t, b.Advance(func() bool { return true }))

	assert.False(t, b.Arrive(), "arriving at a finished barrier must not block")
}

func TestBarrier_StepPanicReleasesWorkers(t *testing.T) {
	b := NewBarrier(2)
	results := make(chan bool, 2)

	for i := 0; i < 2; i++ {
		go func() {
			results <- b.Arrive()
		}()
	}

	assert.Panics(t, func() {
		b.Advance(func() bool { panic("boom") })
	})

	for i := 0; i < 2; i++ {
		select {
		case cont := <-results:
			assert.False(t, cont)
		case <-time.After(5 * time.Second):
			t.Fatal("worker was not released after a panicking step")
		}
	}
	assert.Equal(t, PhaseDone, b.Phase())
}

func TestBarrier_AdvanceWaitsForAll(t *testing.T) {
	b := NewBarrier(2)
	stepped := make(chan struct{})

	go func() {
		b.Advance(func() bool {
			close(stepped)
			return true
		})
	}()

	go b.Arrive()

	select {
	case <-stepped:
		t.Fatal("step ran before every worker arrived")
	case <-time.After(50 * time.Millisecond):
	}

	go b.Arrive()

	select {
	case <-stepped:
	case <-time.After(5 * time.Second):
		t.Fatal("step never ran")
	}
}
