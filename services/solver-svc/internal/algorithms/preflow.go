// Package algorithms implements the parallel preflow-push (Goldberg-Tarjan)
// maximum flow engine.
//
// # Execution Model
//
// A fixed pool of workers processes the graph in rounds. At the start of a
// round every active node belongs to exactly one worker. Workers discharge
// their nodes in parallel, reading a frozen snapshot of heights, excess and
// flow, and record push and relabel intents. When all workers reach the
// barrier the orchestrator applies the intents serially, tests termination and
// distributes newly active nodes round-robin for the next round.
//
// Within a round no edge can be pushed from both ends: that would require each
// endpoint to be strictly higher than the other in the same snapshot. Deferring
// the writes therefore yields the same preflow as applying them in any order.
//
// # Termination
//
// The run ends at the first barrier where -source.excess == sink.excess. Total
// excess is conserved and intermediate excess is never negative, so the
// equality holds exactly when no intermediate node has excess left.
//
// # Failures
//
// Every failure is fatal and reported as an *apperror.Error:
//   - STALLED: no node is active but the termination equality does not hold
//   - ITERATION_LIMIT: Options.MaxRounds exceeded
//   - CANCELED: the context was cancelled, observed at a barrier only
//   - WORKER_FAILURE, OWNERSHIP_VIOLATION, CAPACITY_OVERFLOW, ...: broken invariants
//
// # Example Usage
//
//	g, err := graph.New(4, edges, 2)
//	if err != nil {
//	    return err
//	}
//	result, err := algorithms.Run(ctx, g, algorithms.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	log.Printf("max flow: %d in %d rounds", result.MaxFlow, result.Rounds)
package algorithms

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"preflow/pkg/apperror"
	"preflow/services/solver-svc/internal/graph"
)

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of a successful run.
type Result struct {
	// MaxFlow is the excess collected at the sink.
	MaxFlow int64

	// Rounds is the number of completed barrier rounds.
	Rounds int

	// Pushes and Relabels are totals over all rounds.
	Pushes   int64
	Relabels int64

	// MaxHeight is the highest label reached by an intermediate node.
	MaxHeight int

	// Workers is the size of the worker pool.
	Workers int

	// Duration is the wall-clock time of the run.
	Duration time.Duration

	// History holds per-round statistics when Options.KeepHistory is set.
	History []RoundStats
}

// =============================================================================
// Orchestrator
// =============================================================================

// orchestrator owns the main loop and everything that changes at a barrier.
type orchestrator struct {
	ctx     context.Context
	g       *graph.Graph
	opts    *Options
	dist    *Distributor
	barrier *Barrier
	workers []*worker
	heights *heightTracker

	result     *Result
	err        error
	roundStart time.Time
}

// Run computes the maximum flow of g with g.Workers parallel workers.
//
// The graph is reset first, so Run may be called repeatedly on the same graph.
// On success the graph holds the final flow assignment. The context is only
// consulted at barriers; a round in progress always completes.
func Run(ctx context.Context, g *graph.Graph, opts *Options) (*Result, error) {
	if g == nil {
		return nil, apperror.ErrNilGraph
	}
	if err := ctx.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeCanceled, "run canceled before start")
	}

	start := time.Now()
	g.Reset()

	o := newOrchestrator(ctx, g, opts)
	defer o.close()

	o.seed()
	if o.opts.VerifyInvariants {
		o.heights = newHeightTracker(g)
	}
	o.assignActive()

	var eg errgroup.Group
	for _, w := range o.workers {
		eg.Go(func() error {
			return w.run(o.barrier)
		})
	}

	o.roundStart = time.Now()
	for {
		if o.barrier.Advance(o.step) {
			break
		}
	}

	if err := eg.Wait(); err != nil && o.err == nil {
		o.err = err
	}
	if o.err != nil {
		return nil, o.err
	}

	o.result.MaxFlow = g.Sink.Excess
	o.result.MaxHeight = maxIntermediateHeight(g)
	o.result.Duration = time.Since(start)
	return o.result, nil
}

func newOrchestrator(ctx context.Context, g *graph.Graph, opts *Options) *orchestrator {
	opts = opts.normalize()
	o := &orchestrator{
		ctx:     ctx,
		g:       g,
		opts:    opts,
		dist:    NewDistributor(g, opts.Pool),
		barrier: NewBarrier(g.Workers),
		workers: make([]*worker, g.Workers),
		result:  &Result{Workers: g.Workers},
	}
	for i := range o.workers {
		o.workers[i] = newWorker(i, g, opts.Pool)
	}
	return o
}

// seed pins the source height, saturates every edge leaving the source and
// admits the neighbours.
func (o *orchestrator) seed() {
	g := o.g
	src := g.Source
	src.Height = g.NodeCount()

	var total int64
	for _, e := range src.Edges {
		v := e.Other(src)
		if v == src {
			continue
		}
		e.Push(src, e.Capacity)
		v.Excess += e.Capacity
		total += e.Capacity
		o.dist.Assign(v)
	}
	src.Excess = -total
}

// step runs at every barrier with all workers parked.
func (o *orchestrator) step() (done bool) {
	defer func() {
		if r := recover(); r != nil {
			o.err = apperror.Criticalf(apperror.CodeInternal, "barrier step panicked: %v", r)
			done = true
		}
	}()

	stats := RoundStats{Round: o.result.Rounds + 1}
	for _, w := range o.workers {
		stats.Active += len(w.active)
		if w.err != nil {
			return o.fail(w.err)
		}
	}

	if err := o.apply(&stats); err != nil {
		return o.fail(err)
	}

	if o.opts.VerifyInvariants {
		if err := verifyRound(o.g, o.heights); err != nil {
			return o.fail(err)
		}
	}

	if -o.g.Source.Excess == o.g.Sink.Excess {
		o.drainPending()
		if o.opts.VerifyInvariants {
			if err := CheckTermination(o.g).Err(); err != nil {
				return o.fail(err)
			}
		}
		o.finishRound(stats, true)
		return true
	}

	if err := o.merge(&stats); err != nil {
		return o.fail(err)
	}
	if stats.Admitted == 0 {
		return o.fail(apperror.Criticalf(apperror.CodeStalled,
			"no active nodes after round %d but source excess %d != sink excess %d",
			stats.Round, -o.g.Source.Excess, o.g.Sink.Excess))
	}

	o.finishRound(stats, false)

	if o.opts.MaxRounds > 0 && o.result.Rounds >= o.opts.MaxRounds {
		return o.fail(apperror.Newf(apperror.CodeIterationLimit,
			"no termination after %d rounds", o.result.Rounds).
			WithDetails("sink_excess", o.g.Sink.Excess))
	}
	if err := o.ctx.Err(); err != nil {
		return o.fail(apperror.Wrap(err, apperror.CodeCanceled,
			"run canceled at barrier").WithDetails("round", o.result.Rounds))
	}
	return false
}

// apply commits every worker's intents. Pushes go first, then relabels, so a
// relabel never influences a push computed against the old height.
func (o *orchestrator) apply(stats *RoundStats) error {
	for _, w := range o.workers {
		for _, p := range w.pushes {
			p.edge.Push(p.from, p.amount)
			if !p.edge.WithinCapacity() {
				return apperror.Criticalf(apperror.CodeCapacityOverflow,
					"edge %d flow %d exceeds capacity %d after push from node %d",
					p.edge.Index, p.edge.Flow, p.edge.Capacity, p.from.Index)
			}
			p.from.Excess -= p.amount
			p.edge.Other(p.from).Excess += p.amount
		}
		stats.Pushes += len(w.pushes)
		w.pushes = w.pushes[:0]
	}

	for _, w := range o.workers {
		for _, n := range w.relabels {
			n.Height++
		}
		stats.Relabels += len(w.relabels)
		w.relabels = w.relabels[:0]
	}
	return nil
}

// merge turns the pending nodes of every worker into admissions for the next
// round, clearing each pending flag exactly once.
func (o *orchestrator) merge(stats *RoundStats) error {
	o.dist.Reset()

	for _, w := range o.workers {
		for _, n := range *w.next {
			if !n.ClearPending() {
				return apperror.Criticalf(apperror.CodeDoubleAdmission,
					"node %d merged twice in round %d", n.Index, stats.Round)
			}
			if n.Excess > 0 && o.dist.Assign(n) {
				stats.Admitted++
			}
		}
		*w.next = (*w.next)[:0]
	}

	if o.opts.VerifyInvariants {
		if err := CheckPending(o.g).Err(); err != nil {
			return err
		}
	}

	o.assignActive()
	return nil
}

// drainPending drops the claims made in the final round. Only nodes without
// excess can be pending at termination, so nothing is lost.
func (o *orchestrator) drainPending() {
	for _, w := range o.workers {
		for _, n := range *w.next {
			n.ClearPending()
		}
		*w.next = (*w.next)[:0]
	}
}

// assignActive hands each worker its set for the next round.
func (o *orchestrator) assignActive() {
	for _, w := range o.workers {
		w.active = o.dist.Set(w.id)
	}
}

func (o *orchestrator) finishRound(stats RoundStats, done bool) {
	now := time.Now()
	stats.Duration = now.Sub(o.roundStart)
	o.roundStart = now

	o.result.Rounds = stats.Round
	o.result.Pushes += int64(stats.Pushes)
	o.result.Relabels += int64(stats.Relabels)
	if o.opts.KeepHistory {
		o.result.History = append(o.result.History, stats)
	}

	if o.opts.Observer != nil {
		view := RoundView{Stats: stats, Graph: o.g, Done: done}
		if !done {
			view.Assignments = o.dist.Sets()
		}
		o.opts.Observer(view)
	}
}

func (o *orchestrator) fail(err error) bool {
	o.err = err
	return true
}

func (o *orchestrator) close() {
	o.dist.Close()
	for _, w := range o.workers {
		o.opts.Pool.ReleaseList(w.next)
	}
}

func maxIntermediateHeight(g *graph.Graph) int {
	highest := 0
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if !g.IsTerminal(n) && n.Height > highest {
			highest = n.Height
		}
	}
	return highest
}
