package algorithms

import (
	"preflow/services/solver-svc/internal/graph"
)

// =============================================================================
// Active-Node Distributor
// =============================================================================

// Distributor hands active nodes to workers round-robin.
//
// Assign is the only way a node enters a worker's active set. The round-robin
// counter lives for the whole run, so consecutive rounds keep rotating instead
// of always starting at worker 0.
//
// A Distributor is not safe for concurrent use. The orchestrator calls it while
// seeding, before workers start, and afterwards only under the barrier lock.
type Distributor struct {
	g       *graph.Graph
	pool    *graph.ListPool
	sets    []*[]*graph.Node
	counter int
}

// NewDistributor creates a distributor with one empty active set per worker.
func NewDistributor(g *graph.Graph, pool *graph.ListPool) *Distributor {
	if pool == nil {
		pool = graph.GetPool()
	}
	d := &Distributor{
		g:    g,
		pool: pool,
		sets: make([]*[]*graph.Node, g.Workers),
	}
	for i := range d.sets {
		d.sets[i] = pool.AcquireList()
	}
	return d
}

// Assign admits n to the active set of worker counter mod workers.
//
// It is a no-op returning false when n is the source, the sink, or already
// queued. Otherwise n is marked queued for that worker and the counter advances.
func (d *Distributor) Assign(n *graph.Node) bool {
	if d.g.IsTerminal(n) {
		return false
	}

	w := d.counter % len(d.sets)
	if !n.TryQueue(w) {
		return false
	}

	*d.sets[w] = append(*d.sets[w], n)
	d.counter++
	return true
}

// Set returns the active set of worker w.
func (d *Distributor) Set(w int) []*graph.Node {
	return *d.sets[w]
}

// Sets returns every worker's active set, indexed by worker id.
func (d *Distributor) Sets() [][]*graph.Node {
	out := make([][]*graph.Node, len(d.sets))
	for i, s := range d.sets {
		out[i] = *s
	}
	return out
}

// Len returns the number of nodes currently assigned across all workers.
func (d *Distributor) Len() int {
	total := 0
	for _, s := range d.sets {
		total += len(*s)
	}
	return total
}

// Counter returns the number of successful admissions so far.
func (d *Distributor) Counter() int {
	return d.counter
}

// Reset swaps every active set for an empty one from the pool.
// The round-robin counter is kept.
func (d *Distributor) Reset() {
	for i, s := range d.sets {
		d.pool.ReleaseList(s)
		d.sets[i] = d.pool.AcquireList()
	}
}

// Close returns the active sets to the pool.
func (d *Distributor) Close() {
	for i, s := range d.sets {
		d.pool.ReleaseList(s)
		d.sets[i] = nil
	}
}
