// Package graph holds the flow network shared by the preflow-push workers.
//
// A Graph is allocated once from the parsed input and never resized. During a
// run only node heights, node excess, edge flow and the two per-node admission
// flags change.
//
// # Thread Safety
//
// Height, Excess and Flow are plain fields. They are written only by the
// orchestrator while every worker is parked at the round barrier, and only read
// by workers while a round is running. The admission flags (owner and pending)
// are atomic because several workers may race on them within one round.
package graph

import (
	"fmt"
	"sync/atomic"

	"preflow/pkg/apperror"
)

// NoOwner marks a node that is not in any worker's active set.
const NoOwner int32 = -1

// =============================================================================
// Node
// =============================================================================

// Node is a vertex of the flow network.
type Node struct {
	// Index is the position of the node in Graph.Nodes and in the input.
	Index int

	// Height is the preflow label. It never decreases during a run.
	Height int

	// Excess is inbound flow not yet forwarded. Only the source may go negative.
	Excess int64

	// Edges lists every incident edge in input order.
	Edges []*Edge

	// owner is NoOwner or the id of the worker whose active set holds the node.
	owner atomic.Int32

	// pending is set once per round by whoever first discovers the node as
	// active for the next round.
	pending atomic.Bool
}

// TryQueue claims the node for a worker's active set.
// Returns false if the node is already queued.
func (n *Node) TryQueue(worker int) bool {
	return n.owner.CompareAndSwap(NoOwner, int32(worker))
}

// Release clears the queued state held by worker.
// Returns false if the node was not owned by that worker.
func (n *Node) Release(worker int) bool {
	return n.owner.CompareAndSwap(int32(worker), NoOwner)
}

// Owner returns the id of the owning worker or NoOwner.
func (n *Node) Owner() int32 {
	return n.owner.Load()
}

// IsQueued reports whether the node sits in some worker's active set.
func (n *Node) IsQueued() bool {
	return n.owner.Load() != NoOwner
}

// ClaimPending marks the node as active for the next round.
// Only the first caller in a round gets true.
func (n *Node) ClaimPending() bool {
	return n.pending.CompareAndSwap(false, true)
}

// ClearPending resets the pending flag at merge time.
// Returns false if the flag was not set.
func (n *Node) ClearPending() bool {
	return n.pending.CompareAndSwap(true, false)
}

// IsPending reports whether the node is marked for the next round.
func (n *Node) IsPending() bool {
	return n.pending.Load()
}

func (n *Node) String() string {
	return fmt.Sprintf("node %d (h=%d, e=%d)", n.Index, n.Height, n.Excess)
}

// =============================================================================
// Edge
// =============================================================================

// Edge is an undirected capacitated edge.
//
// Flow is signed: a positive value is a net transfer from U to V, a negative
// value a net transfer from V to U. |Flow| never exceeds Capacity.
type Edge struct {
	Index    int
	U, V     *Node
	Capacity int64
	Flow     int64
}

// Other returns the endpoint opposite to n.
func (e *Edge) Other(n *Node) *Node {
	if n == e.U {
		return e.V
	}
	return e.U
}

// Residual returns how much more flow can leave from through this edge.
func (e *Edge) Residual(from *Node) int64 {
	if from == e.U {
		return e.Capacity - e.Flow
	}
	return e.Capacity + e.Flow
}

// Push moves amount units of flow out of from along the edge.
func (e *Edge) Push(from *Node, amount int64) {
	if from == e.U {
		e.Flow += amount
	} else {
		e.Flow -= amount
	}
}

// Outflow returns the net flow leaving from through this edge.
func (e *Edge) Outflow(from *Node) int64 {
	if from == e.U {
		return e.Flow
	}
	return -e.Flow
}

// WithinCapacity reports whether -Capacity <= Flow <= Capacity.
func (e *Edge) WithinCapacity() bool {
	return e.Flow <= e.Capacity && e.Flow >= -e.Capacity
}

// =============================================================================
// Graph
// =============================================================================

// EdgeSpec is one parsed input edge.
type EdgeSpec struct {
	U, V     int
	Capacity int64
}

// Graph is the flow network together with its designated terminals and the
// number of workers that will solve it.
type Graph struct {
	Nodes   []Node
	Edges   []Edge
	Source  *Node
	Sink    *Node
	Workers int
}

type buildOptions struct {
	first int
	last  int
}

// Option customises graph construction.
type Option func(*buildOptions)

// WithTerminals designates the two boundary nodes that become the source and
// the sink. A negative last means the final node. The node with the larger
// total incident capacity becomes the source.
func WithTerminals(first, last int) Option {
	return func(o *buildOptions) {
		o.first = first
		o.last = last
	}
}

// New builds the network from n nodes and the given edge list.
//
// Each edge is inserted into the adjacency lists of both endpoints. The
// designated terminals default to node 0 and node n-1; if the first has less
// total incident capacity than the last their roles are swapped.
func New(n int, specs []EdgeSpec, workers int, opts ...Option) (*Graph, error) {
	o := buildOptions{first: 0, last: -1}
	for _, opt := range opts {
		opt(&o)
	}

	if n <= 0 {
		return nil, apperror.ErrEmptyGraph
	}
	if workers < 1 {
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "worker count must be positive, got %d", workers).
			WithField("workers")
	}
	if o.last < 0 {
		o.last = n - 1
	}
	if o.first < 0 || o.first >= n {
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "source %d out of range [0, %d)", o.first, n).
			WithField("source")
	}
	if o.last >= n {
		return nil, apperror.Newf(apperror.CodeInvalidArgument, "sink %d out of range [0, %d)", o.last, n).
			WithField("sink")
	}
	if o.first == o.last {
		return nil, apperror.ErrSourceEqualsSink
	}

	degree := make([]int, n)
	for i, s := range specs {
		if s.U < 0 || s.U >= n {
			return nil, apperror.NewWithField(apperror.CodeDanglingEdge,
				fmt.Sprintf("endpoint %d out of range [0, %d)", s.U, n), fmt.Sprintf("edges[%d].u", i))
		}
		if s.V < 0 || s.V >= n {
			return nil, apperror.NewWithField(apperror.CodeDanglingEdge,
				fmt.Sprintf("endpoint %d out of range [0, %d)", s.V, n), fmt.Sprintf("edges[%d].v", i))
		}
		if s.Capacity < 0 {
			return nil, apperror.NewWithField(apperror.CodeNegativeCapacity,
				fmt.Sprintf("capacity %d is negative", s.Capacity), fmt.Sprintf("edges[%d].c", i))
		}
		degree[s.U]++
		if s.V != s.U {
			degree[s.V]++
		}
	}

	g := &Graph{
		Nodes:   make([]Node, n),
		Edges:   make([]Edge, len(specs)),
		Workers: workers,
	}

	for i := range g.Nodes {
		node := &g.Nodes[i]
		node.Index = i
		node.Edges = make([]*Edge, 0, degree[i])
		node.owner.Store(NoOwner)
	}

	for i, s := range specs {
		e := &g.Edges[i]
		e.Index = i
		e.U = &g.Nodes[s.U]
		e.V = &g.Nodes[s.V]
		e.Capacity = s.Capacity

		e.U.Edges = append(e.U.Edges, e)
		if e.V != e.U {
			e.V.Edges = append(e.V.Edges, e)
		}
	}

	g.Source = &g.Nodes[o.first]
	g.Sink = &g.Nodes[o.last]
	if g.IncidentCapacity(g.Source) < g.IncidentCapacity(g.Sink) {
		g.Source, g.Sink = g.Sink, g.Source
	}

	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// Node returns the node at index i.
func (g *Graph) Node(i int) *Node {
	return &g.Nodes[i]
}

// IsTerminal reports whether n is the source or the sink.
func (g *Graph) IsTerminal(n *Node) bool {
	return n == g.Source || n == g.Sink
}

// IncidentCapacity sums the capacity of every edge touching n.
func (g *Graph) IncidentCapacity(n *Node) int64 {
	var total int64
	for _, e := range n.Edges {
		total += e.Capacity
	}
	return total
}

// Reset returns the network to its pre-run state so it can be solved again.
func (g *Graph) Reset() {
	for i := range g.Nodes {
		node := &g.Nodes[i]
		node.Height = 0
		node.Excess = 0
		node.owner.Store(NoOwner)
		node.pending.Store(false)
	}
	for i := range g.Edges {
		g.Edges[i].Flow = 0
	}
}
