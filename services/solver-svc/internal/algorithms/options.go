package algorithms

import (
	"time"

	"preflow/services/solver-svc/internal/graph"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a preflow-push run.
//
// A nil *Options is valid and means DefaultOptions(). Options can be chained
// using the builder pattern:
//
//	opts := DefaultOptions().
//	    WithVerifyInvariants(true).
//	    WithMaxRounds(10000)
type Options struct {
	// MaxRounds aborts the run with ITERATION_LIMIT once this many rounds
	// completed without termination. Zero means unlimited.
	// Default: 0
	MaxRounds int

	// VerifyInvariants runs the full invariant suite at every barrier:
	// conservation, capacity bound, non-negative excess, height monotonicity
	// and node ownership. The check is O(V + E) per round.
	// Default: false
	VerifyInvariants bool

	// KeepHistory stores per-round statistics in Result.History.
	// Default: false
	KeepHistory bool

	// Observer is called at every barrier while all workers are parked.
	// Default: nil
	Observer Observer

	// Pool recycles the per-round active set slices.
	// If nil, the global pool is used.
	Pool *graph.ListPool
}

// DefaultOptions returns options suitable for production runs.
func DefaultOptions() *Options {
	return &Options{
		Pool: graph.GetPool(),
	}
}

// WithMaxRounds sets the round limit and returns the options for chaining.
func (o *Options) WithMaxRounds(rounds int) *Options {
	o.MaxRounds = rounds
	return o
}

// WithVerifyInvariants toggles per-round verification and returns the options for chaining.
func (o *Options) WithVerifyInvariants(verify bool) *Options {
	o.VerifyInvariants = verify
	return o
}

// WithHistory toggles round history collection and returns the options for chaining.
func (o *Options) WithHistory(keep bool) *Options {
	o.KeepHistory = keep
	return o
}

// WithObserver sets the round observer and returns the options for chaining.
func (o *Options) WithObserver(obs Observer) *Options {
	o.Observer = obs
	return o
}

func (o *Options) normalize() *Options {
	out := DefaultOptions()
	if o == nil {
		return out
	}
	*out = *o
	if out.Pool == nil {
		out.Pool = graph.GetPool()
	}
	if out.MaxRounds < 0 {
		out.MaxRounds = 0
	}
	return out
}

// =============================================================================
// Observation
// =============================================================================

// RoundStats summarises one barrier-delimited round.
type RoundStats struct {
	// Round is 1-based.
	Round int

	// Active is the number of nodes the workers processed this round.
	Active int

	// Pushes and Relabels count the intents applied at the barrier.
	Pushes   int
	Relabels int

	// Admitted is the number of nodes distributed for the next round.
	Admitted int

	// Duration covers the parallel phase and the barrier work.
	Duration time.Duration
}

// RoundView is what an Observer sees at a barrier.
//
// Assignments[w] holds the nodes worker w will process in the next round. It
// is nil for the final round. The slices are recycled after the callback
// returns and must not be retained. Graph must not be mutated.
type RoundView struct {
	Stats       RoundStats
	Assignments [][]*graph.Node
	Graph       *graph.Graph
	Done        bool
}

// Observer receives a RoundView at every barrier.
type Observer func(RoundView)
