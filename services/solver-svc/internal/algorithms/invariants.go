package algorithms

import (
	"preflow/pkg/apperror"
	"preflow/services/solver-svc/internal/graph"
)

// =============================================================================
// Invariant Checks
// =============================================================================
//
// These checks hold at every barrier of a correct run. Production runs rely on
// the termination equality alone; the full suite is enabled with
// Options.VerifyInvariants and by the tests.
// =============================================================================

// maxReported caps the number of per-edge or per-node violations collected by a
// single check so a broken run does not produce a gigantic error.
const maxReported = 16

// CheckConservation verifies that flow is neither created nor destroyed: the
// excess of every node, the source included, equals its net inflow, and the
// excess of all nodes sums to zero.
func CheckConservation(g *graph.Graph) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()

	var total int64
	for i := range g.Nodes {
		n := &g.Nodes[i]
		total += n.Excess

		var outflow int64
		for _, e := range n.Edges {
			if e.U == e.V {
				continue
			}
			outflow += e.Outflow(n)
		}
		if n.Excess != -outflow && len(errs.Errors) < maxReported {
			errs.Add(apperror.Criticalf(apperror.CodeConservationViolation,
				"node %d excess %d does not match net inflow %d", n.Index, n.Excess, -outflow))
		}
	}

	if total != 0 {
		errs.Add(apperror.Criticalf(apperror.CodeConservationViolation,
			"total excess is %d, want 0", total).
			WithDetails("source_excess", g.Source.Excess).
			WithDetails("sink_excess", g.Sink.Excess))
	}
	return errs
}

// CheckCapacity verifies -capacity <= flow <= capacity on every edge.
func CheckCapacity(g *graph.Graph) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()
	for i := range g.Edges {
		e := &g.Edges[i]
		if !e.WithinCapacity() {
			errs.Add(apperror.Criticalf(apperror.CodeCapacityOverflow,
				"edge %d (%d-%d) flow %d exceeds capacity %d", e.Index, e.U.Index, e.V.Index, e.Flow, e.Capacity))
			if len(errs.Errors) >= maxReported {
				break
			}
		}
	}
	return errs
}

// CheckExcess verifies that no node other than the source holds negative excess.
func CheckExcess(g *graph.Graph) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n != g.Source && n.Excess < 0 {
			errs.Add(apperror.Criticalf(apperror.CodeNegativeFlow,
				"node %d has negative excess %d", n.Index, n.Excess))
			if len(errs.Errors) >= maxReported {
				break
			}
		}
	}
	return errs
}

// CheckOwnership verifies that every worker released the nodes it processed.
// It holds after a round and before the merge distributes new work.
func CheckOwnership(g *graph.Graph) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.IsQueued() {
			errs.Add(apperror.Criticalf(apperror.CodeOwnershipViolation,
				"node %d still owned by worker %d at barrier", n.Index, n.Owner()))
			if len(errs.Errors) >= maxReported {
				break
			}
		}
	}
	return errs
}

// CheckPending verifies that the merge consumed every pending flag.
func CheckPending(g *graph.Graph) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.IsPending() {
			errs.Add(apperror.Criticalf(apperror.CodeDoubleAdmission,
				"node %d still pending after merge", n.Index))
			if len(errs.Errors) >= maxReported {
				break
			}
		}
	}
	return errs
}

// CheckTermination verifies that no intermediate node holds excess. It must
// hold whenever -source.excess == sink.excess.
func CheckTermination(g *graph.Graph) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if g.IsTerminal(n) || n.Excess == 0 {
			continue
		}
		errs.Add(apperror.Criticalf(apperror.CodeConservationViolation,
			"node %d holds excess %d at termination", n.Index, n.Excess))
		if len(errs.Errors) >= maxReported {
			break
		}
	}
	return errs
}

// heightTracker remembers the heights seen at the previous barrier.
type heightTracker struct {
	prev []int
}

func newHeightTracker(g *graph.Graph) *heightTracker {
	t := &heightTracker{prev: make([]int, g.NodeCount())}
	t.snapshot(g)
	return t
}

func (t *heightTracker) snapshot(g *graph.Graph) {
	for i := range g.Nodes {
		t.prev[i] = g.Nodes[i].Height
	}
}

// check verifies that no height decreased since the last snapshot and that the
// terminals stayed pinned, then takes a new snapshot.
func (t *heightTracker) check(g *graph.Graph) *apperror.ValidationErrors {
	errs := apperror.NewValidationErrors()

	if g.Source.Height != g.NodeCount() {
		errs.Add(apperror.Criticalf(apperror.CodeHeightDecrease,
			"source height %d, want %d", g.Source.Height, g.NodeCount()))
	}
	if g.Sink.Height != 0 {
		errs.Add(apperror.Criticalf(apperror.CodeHeightDecrease,
			"sink height %d, want 0", g.Sink.Height))
	}

	for i := range g.Nodes {
		if h := g.Nodes[i].Height; h < t.prev[i] {
			errs.Add(apperror.Criticalf(apperror.CodeHeightDecrease,
				"node %d height went from %d to %d", i, t.prev[i], h))
			if len(errs.Errors) >= maxReported {
				break
			}
		}
	}

	t.snapshot(g)
	return errs
}

// verifyRound runs the complete suite and returns the first violation with the
// rest attached as details.
func verifyRound(g *graph.Graph, heights *heightTracker) error {
	all := apperror.NewValidationErrors()
	for _, errs := range []*apperror.ValidationErrors{
		CheckConservation(g),
		CheckCapacity(g),
		CheckExcess(g),
		CheckOwnership(g),
		heights.check(g),
	} {
		all.Errors = append(all.Errors, errs.Errors...)
	}
	return all.Err()
}
