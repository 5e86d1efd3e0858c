// services/solver-svc/internal/generator/dot.go
package generator

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"preflow/services/solver-svc/internal/converter"
)

// DOTGenerator генератор описания сети для Graphviz
type DOTGenerator struct {
	BaseGenerator
}

// NewDOTGenerator создаёт новый генератор
func NewDOTGenerator() *DOTGenerator {
	return &DOTGenerator{}
}

// Format возвращает формат генератора
func (g *DOTGenerator) Format() Format {
	return FormatDOT
}

// Generate генерирует digraph с подписями рёбер "поток/пропускная способность".
// Рёбра с потоком направлены по потоку, насыщенные выделены цветом,
// неиспользованные рисуются пунктиром в порядке ввода.
func (g *DOTGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "digraph %s {\n", strconv.Quote(g.GetTitle(data)))
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=circle];\n")
	fmt.Fprintf(&buf, "  %d [shape=doublecircle, label=\"%d\\nsource\"];\n", data.Source, data.Source)
	fmt.Fprintf(&buf, "  %d [shape=doublecircle, label=\"%d\\nsink\"];\n", data.Sink, data.Sink)

	flows := make(map[int]converter.FlowEdge, len(data.FlowEdges))
	for _, e := range data.FlowEdges {
		flows[e.Index] = e
	}

	if len(data.Network) > 0 {
		for i, e := range data.Network {
			if fe, ok := flows[i]; ok {
				writeFlowEdge(&buf, fe)
				continue
			}
			fmt.Fprintf(&buf, "  %d -> %d [label=\"0/%d\", style=dashed, color=gray];\n", e.U, e.V, e.Capacity)
		}
	} else {
		for _, fe := range data.FlowEdges {
			writeFlowEdge(&buf, fe)
		}
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

func writeFlowEdge(buf *bytes.Buffer, e converter.FlowEdge) {
	attrs := ""
	if e.Flow == e.Capacity {
		attrs = ", color=red, penwidth=2"
	}
	fmt.Fprintf(buf, "  %d -> %d [label=\"%d/%d\"%s];\n", e.From, e.To, e.Flow, e.Capacity, attrs)
}
