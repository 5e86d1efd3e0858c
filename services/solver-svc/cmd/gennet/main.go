// Command gennet writes a random flow network in the solver's input format.
//
//	gennet -nodes 1000 -edges 5000 -max-cap 100 -seed 7 > net.in
//	gennet -nodes 50 -edges 200 -connected -output data/small.in
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"

	"preflow/services/solver-svc/internal/converter"
	"preflow/services/solver-svc/internal/graph"
)

// Params параметры генерации
type Params struct {
	Nodes     int
	Edges     int
	MaxCap    int64
	Seed      uint64
	Connected bool
	Extra     bool
}

// Generate строит случайную сеть. При Connected первые n-1 рёбер образуют
// путь 0 -> n-1, поэтому поток гарантированно положителен при MaxCap > 0.
func Generate(p Params) (*converter.Input, error) {
	if p.Nodes < 2 {
		return nil, fmt.Errorf("nodes must be at least 2, got %d", p.Nodes)
	}
	if p.Edges < 0 || p.MaxCap < 0 {
		return nil, fmt.Errorf("edges and max-cap must be non-negative")
	}
	if p.Connected && p.Edges < p.Nodes-1 {
		return nil, fmt.Errorf("a connected network needs at least %d edges, got %d", p.Nodes-1, p.Edges)
	}

	r := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9e3779b97f4a7c15))
	in := &converter.Input{
		Nodes: p.Nodes,
		Edges: make([]graph.EdgeSpec, 0, p.Edges),
	}

	if p.Connected {
		for u := 0; u < p.Nodes-1; u++ {
			in.Edges = append(in.Edges, graph.EdgeSpec{U: u, V: u + 1, Capacity: 1 + r.Int64N(max(p.MaxCap, 1))})
		}
	}
	for len(in.Edges) < p.Edges {
		in.Edges = append(in.Edges, graph.EdgeSpec{
			U:        r.IntN(p.Nodes),
			V:        r.IntN(p.Nodes),
			Capacity: r.Int64N(p.MaxCap + 1),
		})
	}

	if p.Extra {
		in.C, in.P, in.HasExtra = 0, 0, true
	}
	return in, nil
}

func main() {
	// Flags
	nodes := flag.Int("nodes", 100, "Number of nodes")
	edges := flag.Int("edges", 400, "Number of edges")
	maxCap := flag.Int64("max-cap", 100, "Maximum edge capacity")
	seed := flag.Uint64("seed", 1, "Random seed")
	connected := flag.Bool("connected", false, "Start with a path from node 0 to node n-1")
	extra := flag.Bool("extra", false, "Write the four-field header (n m C P)")
	outputFile := flag.String("output", "", "Output file (default: stdout)")
	flag.Parse()

	in, err := Generate(Params{
		Nodes:     *nodes,
		Edges:     *edges,
		MaxCap:    *maxCap,
		Seed:      *seed,
		Connected: *connected,
		Extra:     *extra,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := converter.Format(out, in); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
