package algorithms

import (
	"preflow/pkg/apperror"
	"preflow/services/solver-svc/internal/graph"
)

// =============================================================================
// Push/Relabel Step
// =============================================================================

// pushIntent records df units leaving from through edge. Intents are applied
// by the orchestrator at the barrier.
type pushIntent struct {
	edge   *graph.Edge
	from   *graph.Node
	amount int64
}

// worker owns the nodes of its active set for the duration of one round.
//
// During a round a worker only reads heights, excess and flow; every change is
// recorded as an intent. The only shared writes are the atomic admission flags
// on nodes.
type worker struct {
	id int
	g  *graph.Graph

	// active is the set assigned by the Distributor for the current round.
	active []*graph.Node

	// next collects nodes this worker claimed as pending for the next round.
	next *[]*graph.Node

	pushes   []pushIntent
	relabels []*graph.Node

	// err is the failure of the last round, read by the orchestrator at the barrier.
	err error
}

func newWorker(id int, g *graph.Graph, pool *graph.ListPool) *worker {
	return &worker{
		id:   id,
		g:    g,
		next: pool.AcquireList(),
	}
}

// run processes rounds until the barrier reports completion.
func (w *worker) run(b *Barrier) error {
	for {
		w.err = w.processActive()
		if !b.Arrive() {
			return w.err
		}
	}
}

// processActive discharges every node of the active set once.
// A panic is converted into a WORKER_FAILURE so the barrier still sees this worker arrive.
func (w *worker) processActive() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperror.Criticalf(apperror.CodeWorkerFailure, "worker %d panicked: %v", w.id, r)
		}
	}()

	for _, u := range w.active {
		if err := w.discharge(u); err != nil {
			return err
		}
	}
	return nil
}

// discharge runs the push/relabel step on u.
//
//  1. A node still at height 0 is relabeled and revisited next round.
//  2. Otherwise every admissible edge receives min(remaining excess, residual).
//  3. Excess left after the scan relabels u and keeps it pending.
//  4. The queued flag is always released.
func (w *worker) discharge(u *graph.Node) error {
	if u.Owner() != int32(w.id) {
		return apperror.Criticalf(apperror.CodeOwnershipViolation,
			"worker %d processing node %d owned by %d", w.id, u.Index, u.Owner())
	}

	excess := u.Excess
	switch {
	case excess <= 0:
		// admitted through a zero-capacity edge, nothing to forward
	case u.Height == 0:
		w.relabels = append(w.relabels, u)
		w.admit(u)
	default:
		left, err := w.pushAdmissible(u, excess)
		if err != nil {
			return err
		}
		if left > 0 {
			w.relabels = append(w.relabels, u)
			w.admit(u)
		}
	}

	if !u.Release(w.id) {
		return apperror.Criticalf(apperror.CodeOwnershipViolation,
			"worker %d released node %d it no longer owns", w.id, u.Index)
	}
	return nil
}

// pushAdmissible scans u's adjacency once and returns the excess left over.
func (w *worker) pushAdmissible(u *graph.Node, excess int64) (int64, error) {
	for _, e := range u.Edges {
		if excess == 0 {
			break
		}

		residual := e.Residual(u)
		if residual < 0 {
			return excess, apperror.Criticalf(apperror.CodeCapacityOverflow,
				"edge %d has negative residual %d from node %d", e.Index, residual, u.Index).
				WithDetails("flow", e.Flow).
				WithDetails("capacity", e.Capacity)
		}

		v := e.Other(u)
		if residual == 0 || u.Height <= v.Height {
			continue
		}

		df := min(excess, residual)
		w.pushes = append(w.pushes, pushIntent{edge: e, from: u, amount: df})
		excess -= df
		w.admit(v)
	}
	return excess, nil
}

// admit claims v for the next round. Terminals never enter an active set.
func (w *worker) admit(v *graph.Node) {
	if w.g.IsTerminal(v) {
		return
	}
	if v.ClaimPending() {
		*w.next = append(*w.next, v)
	}
}
