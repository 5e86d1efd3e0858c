package algorithms

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"preflow/services/solver-svc/internal/graph"
)

// referenceMaxFlow is a plain sequential Edmonds-Karp over a capacity matrix.
// Each undirected edge contributes its capacity in both directions.
func referenceMaxFlow(n int, edges []graph.EdgeSpec, source, sink int) int64 {
	residual := make([][]int64, n)
	for i := range residual {
		residual[i] = make([]int64, n)
	}
	for _, e := range edges {
		if e.U == e.V {
			continue
		}
		residual[e.U][e.V] += e.Capacity
		residual[e.V][e.U] += e.Capacity
	}

	var total int64
	parent := make([]int, n)
	for {
		for i := range parent {
			parent[i] = -1
		}
		parent[source] = source
		queue := []int{source}
		for len(queue) > 0 && parent[sink] == -1 {
			u := queue[0]
			queue = queue[1:]
			for v := 0; v < n; v++ {
				if parent[v] == -1 && residual[u][v] > 0 {
					parent[v] = u
					queue = append(queue, v)
				}
			}
		}
		if parent[sink] == -1 {
			return total
		}

		bottleneck := int64(-1)
		for v := sink; v != source; v = parent[v] {
			if c := residual[parent[v]][v]; bottleneck < 0 || c < bottleneck {
				bottleneck = c
			}
		}
		for v := sink; v != source; v = parent[v] {
			residual[parent[v]][v] -= bottleneck
			residual[v][parent[v]] += bottleneck
		}
		total += bottleneck
	}
}

func randomEdges(r *rand.Rand, n, m int, maxCap int64) []graph.EdgeSpec {
	edges := make([]graph.EdgeSpec, m)
	for i := range edges {
		edges[i] = graph.EdgeSpec{
			U:        r.IntN(n),
			V:        r.IntN(n),
			Capacity: r.Int64N(maxCap + 1),
		}
	}
	return edges
}

func mustGraph(t *testing.T, n int, edges []graph.EdgeSpec, workers int) *graph.Graph {
	t.Helper()
	g, err := graph.New(n, edges, workers)
	require.NoError(t, err)
	return g
}

func diamondEdges() []graph.EdgeSpec {
	return []graph.EdgeSpec{
		{U: 0, V: 1, Capacity: 10},
		{U: 0, V: 2, Capacity: 10},
		{U: 1, V: 3, Capacity: 10},
		{U: 2, V: 3, Capacity: 10},
	}
}

func bottleneckEdges() []graph.EdgeSpec {
	return []graph.EdgeSpec{
		{U: 0, V: 1, Capacity: 4},
		{U: 0, V: 2, Capacity: 4},
		{U: 0, V: 3, Capacity: 4},
		{U: 1, V: 4, Capacity: 4},
		{U: 2, V: 4, Capacity: 4},
		{U: 3, V: 4, Capacity: 4},
		{U: 4, V: 5, Capacity: 5},
	}
}
