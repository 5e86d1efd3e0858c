package algorithms

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"preflow/pkg/apperror"
	"preflow/services/solver-svc/internal/graph"
)

func TestRun_Scenarios(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		edges   []graph.EdgeSpec
		workers int
		want    int64
	}{
		{"diamond", 4, diamondEdges(), 2, 20},
		{"single edge", 2, []graph.EdgeSpec{{U: 0, V: 1, Capacity: 5}}, 2, 5},
		{"bottleneck", 6, bottleneckEdges(), 2, 5},
		{"no edges", 3, nil, 2, 0},
		{"sink unreachable", 4, []graph.EdgeSpec{{U: 0, V: 1, Capacity: 7}, {U: 1, V: 2, Capacity: 3}}, 2, 0},
		{"zero capacity", 3, []graph.EdgeSpec{{U: 0, V: 1, Capacity: 0}, {U: 1, V: 2, Capacity: 9}}, 1, 0},
		{"self loops", 3, []graph.EdgeSpec{{U: 0, V: 0, Capacity: 4}, {U: 0, V: 1, Capacity: 6}, {U: 1, V: 1, Capacity: 2}, {U: 1, V: 2, Capacity: 4}}, 3, 4},
		{"parallel edges", 2, []graph.EdgeSpec{{U: 0, V: 1, Capacity: 3}, {U: 1, V: 0, Capacity: 4}}, 2, 7},
		{"more workers than nodes", 4, diamondEdges(), 16, 20},
		{
			name:    "back flow through reversed edge",
			n:       4,
			edges:   []graph.EdgeSpec{{U: 1, V: 0, Capacity: 8}, {U: 2, V: 1, Capacity: 5}, {U: 3, V: 1, Capacity: 2}, {U: 3, V: 2, Capacity: 6}},
			workers: 3,
			want:    7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := mustGraph(t, tt.n, tt.edges, tt.workers)
			result, err := Run(context.Background(), g, DefaultOptions().WithVerifyInvariants(true))
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.MaxFlow)
			assert.Equal(t, tt.want, -g.Source.Excess)
			assert.Equal(t, tt.workers, result.Workers)
			assert.Positive(t, result.Rounds)
		})
	}
}

func TestRun_SingleEdgeTerminatesInFirstRound(t *testing.T) {
	g := mustGraph(t, 2, []graph.EdgeSpec{{U: 0, V: 1, Capacity: 5}}, 2)

	result, err := Run(context.Background(), g, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.MaxFlow)
	assert.Equal(t, 1, result.Rounds)
	assert.Zero(t, result.Pushes)
	assert.Zero(t, result.Relabels)
}

func TestRun_DiamondFlows(t *testing.T) {
	g := mustGraph(t, 4, diamondEdges(), 2)

	result, err := Run(context.Background(), g, DefaultOptions().WithHistory(true))
	require.NoError(t, err)
	require.Equal(t, int64(20), result.MaxFlow)

	for i := range g.Edges {
		e := &g.Edges[i]
		assert.Equal(t, e.Capacity, e.Flow, "edge %d should be saturated towards the sink", i)
	}
	assert.Len(t, result.History, result.Rounds)
	assert.Equal(t, 1, result.History[0].Round)
	assert.Equal(t, 2, result.History[0].Active)
	assert.Equal(t, 2, result.History[0].Relabels, "height-0 nodes are relabeled first")
}

func TestRun_SwappedTerminals(t *testing.T) {
	// node 3 carries more capacity than node 0, so it becomes the source
	edges := []graph.EdgeSpec{{U: 0, V: 1, Capacity: 3}, {U: 1, V: 2, Capacity: 10}, {U: 2, V: 3, Capacity: 10}, {U: 1, V: 3, Capacity: 10}}
	g := mustGraph(t, 4, edges, 2)
	require.Equal(t, 3, g.Source.Index)

	result, err := Run(context.Background(), g, DefaultOptions().WithVerifyInvariants(true))
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.MaxFlow)
	assert.Equal(t, referenceMaxFlow(4, edges, 3, 0), result.MaxFlow)
}

func TestRun_MatchesReference(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 1024))

	for i := 0; i < 60; i++ {
		n := 2 + r.IntN(24)
		m := r.IntN(4 * n)
		edges := randomEdges(r, n, m, 20)
		workers := 1 + r.IntN(6)

		t.Run(fmt.Sprintf("n=%d m=%d w=%d", n, m, workers), func(t *testing.T) {
			g := mustGraph(t, n, edges, workers)
			want := referenceMaxFlow(n, edges, g.Source.Index, g.Sink.Index)

			result, err := Run(context.Background(), g, DefaultOptions().WithVerifyInvariants(true))
			require.NoError(t, err)
			assert.Equal(t, want, result.MaxFlow)
			assert.Empty(t, CheckTermination(g).Errors)
			assert.LessOrEqual(t, result.MaxHeight, 2*n-1)
		})
	}
}

func TestRun_IdempotentRerun(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	edges := randomEdges(r, 40, 160, 50)

	for _, workers := range []int{1, 2, 4, 8} {
		g := mustGraph(t, 40, edges, workers)
		want := referenceMaxFlow(40, edges, g.Source.Index, g.Sink.Index)

		for run := 0; run < 3; run++ {
			result, err := Run(context.Background(), g, nil)
			require.NoError(t, err)
			assert.Equal(t, want, result.MaxFlow, "workers=%d run=%d", workers, run)
		}
	}
}

func TestRun_ObservedInvariants(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 9))
	n := 30
	edges := randomEdges(r, n, 120, 15)
	g := mustGraph(t, n, edges, 4)

	heights := make([]int, n)
	rounds := 0
	sawDone := false

	observer := func(view RoundView) {
		rounds++
		assert.Equal(t, rounds, view.Stats.Round)

		assert.Empty(t, CheckConservation(view.Graph).Errors, "round %d", rounds)
		assert.Empty(t, CheckCapacity(view.Graph).Errors, "round %d", rounds)
		assert.Empty(t, CheckExcess(view.Graph).Errors, "round %d", rounds)
		assert.Empty(t, CheckPending(view.Graph).Errors, "round %d", rounds)

		for i := range view.Graph.Nodes {
			h := view.Graph.Nodes[i].Height
			assert.GreaterOrEqual(t, h, heights[i], "height of node %d decreased", i)
			heights[i] = h
		}

		if view.Done {
			sawDone = true
			assert.Nil(t, view.Assignments)
			assert.Empty(t, CheckTermination(view.Graph).Errors)
			return
		}

		// admission exactly once: a node is in at most one active set, owned by that worker
		seen := make(map[int]int)
		total := 0
		for w, set := range view.Assignments {
			for _, node := range set {
				prev, dup := seen[node.Index]
				assert.False(t, dup, "node %d assigned to workers %d and %d", node.Index, prev, w)
				seen[node.Index] = w
				assert.Equal(t, int32(w), node.Owner())
				assert.Positive(t, node.Excess)
				assert.False(t, view.Graph.IsTerminal(node))
				total++
			}
		}
		assert.Equal(t, view.Stats.Admitted, total)
	}

	result, err := Run(context.Background(), g, DefaultOptions().WithObserver(observer))
	require.NoError(t, err)
	assert.True(t, sawDone)
	assert.Equal(t, result.Rounds, rounds)
	assert.Equal(t, referenceMaxFlow(n, edges, g.Source.Index, g.Sink.Index), result.MaxFlow)
}

func TestRun_RoundRobinBalance(t *testing.T) {
	// a star: the source feeds 8 leaves which all drain into the sink
	var edges []graph.EdgeSpec
	for leaf := 1; leaf <= 8; leaf++ {
		edges = append(edges, graph.EdgeSpec{U: 0, V: leaf, Capacity: 1}, graph.EdgeSpec{U: leaf, V: 9, Capacity: 1})
	}
	edges = append(edges, graph.EdgeSpec{U: 0, V: 9, Capacity: 1})
	g := mustGraph(t, 10, edges, 4)

	var first []int
	observer := func(view RoundView) {
		if first == nil && !view.Done {
			for _, set := range view.Assignments {
				first = append(first, len(set))
			}
		}
	}

	result, err := Run(context.Background(), g, DefaultOptions().WithObserver(observer))
	require.NoError(t, err)
	assert.Equal(t, int64(9), result.MaxFlow)
	assert.Equal(t, []int{2, 2, 2, 2}, first)
}

func TestRun_Errors(t *testing.T) {
	t.Run("nil graph", func(t *testing.T) {
		_, err := Run(context.Background(), nil, nil)
		assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))
	})

	t.Run("canceled before start", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, mustGraph(t, 4, diamondEdges(), 2), nil)
		assert.Equal(t, apperror.CodeCanceled, apperror.Code(err))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("canceled at barrier", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		observer := func(view RoundView) {
			if view.Stats.Round == 1 {
				cancel()
			}
		}
		_, err := Run(ctx, mustGraph(t, 4, diamondEdges(), 2), DefaultOptions().WithObserver(observer))
		assert.Equal(t, apperror.CodeCanceled, apperror.Code(err))
		assert.Equal(t, apperror.ExitCanceled, apperror.ExitCode(err))
	})

	t.Run("iteration limit", func(t *testing.T) {
		_, err := Run(context.Background(), mustGraph(t, 4, diamondEdges(), 2), DefaultOptions().WithMaxRounds(1))
		assert.Equal(t, apperror.CodeIterationLimit, apperror.Code(err))
	})
}

func TestOrchestrator_Stalled(t *testing.T) {
	g := mustGraph(t, 3, []graph.EdgeSpec{{U: 0, V: 1, Capacity: 5}, {U: 1, V: 2, Capacity: 5}}, 1)
	o := newOrchestrator(context.Background(), g, nil)
	defer o.close()

	// excess stranded on node 1 without anyone marking it pending
	g.Source.Excess = -5
	g.Node(1).Excess = 5
	g.Edges[0].Flow = 5

	done := o.step()
	assert.True(t, done)
	assert.Equal(t, apperror.CodeStalled, apperror.Code(o.err))
	assert.True(t, apperror.IsCritical(o.err))
}

func TestOrchestrator_WorkerErrorStopsRun(t *testing.T) {
	g := mustGraph(t, 4, diamondEdges(), 2)
	o := newOrchestrator(context.Background(), g, nil)
	defer o.close()

	o.workers[1].err = apperror.NewCritical(apperror.CodeOwnershipViolation, "broken")

	assert.True(t, o.step())
	assert.Equal(t, apperror.CodeOwnershipViolation, apperror.Code(o.err))
}

func TestOrchestrator_CapacityOverflowOnApply(t *testing.T) {
	g := mustGraph(t, 3, []graph.EdgeSpec{{U: 0, V: 1, Capacity: 5}, {U: 1, V: 2, Capacity: 5}}, 1)
	o := newOrchestrator(context.Background(), g, nil)
	defer o.close()

	e := &g.Edges[1]
	o.workers[0].pushes = append(o.workers[0].pushes, pushIntent{edge: e, from: e.U, amount: 6})

	assert.True(t, o.step())
	assert.Equal(t, apperror.CodeCapacityOverflow, apperror.Code(o.err))
}

func TestOptions(t *testing.T) {
	var nilOpts *Options
	o := nilOpts.normalize()
	assert.NotNil(t, o.Pool)
	assert.Zero(t, o.MaxRounds)

	o = (&Options{MaxRounds: -3}).normalize()
	assert.Zero(t, o.MaxRounds)
	assert.NotNil(t, o.Pool)

	called := false
	o = DefaultOptions().
		WithMaxRounds(10).
		WithVerifyInvariants(true).
		WithHistory(true).
		WithObserver(func(RoundView) { called = true })
	assert.Equal(t, 10, o.MaxRounds)
	assert.True(t, o.VerifyInvariants)
	assert.True(t, o.KeepHistory)
	o.Observer(RoundView{})
	assert.True(t, called)
}

func BenchmarkRun(b *testing.B) {
	r := rand.New(rand.NewPCG(11, 13))
	edges := randomEdges(r, 500, 4000, 100)

	for _, workers := range []int{1, 2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			g, err := graph.New(500, edges, workers)
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Run(context.Background(), g, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
