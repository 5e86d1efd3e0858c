// services/solver-svc/internal/generator/markdown.go
package generator

import (
	"bytes"
	"context"
	"fmt"
)

// MarkdownGenerator генератор Markdown отчётов
type MarkdownGenerator struct {
	BaseGenerator
}

// NewMarkdownGenerator создаёт новый генератор
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Format возвращает формат генератора
func (g *MarkdownGenerator) Format() Format {
	return FormatMarkdown
}

// Generate генерирует Markdown отчёт
func (g *MarkdownGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer

	g.writeHeader(&buf, data)
	g.writeNetwork(&buf, data)
	g.writeResult(&buf, data)
	g.writeEdges(&buf, data)
	g.writeHistory(&buf, data)

	buf.WriteString("---\n\n*Generated by preflow*\n")

	return buf.Bytes(), nil
}

func (g *MarkdownGenerator) writeHeader(buf *bytes.Buffer, data *ReportData) {
	fmt.Fprintf(buf, "# %s\n\n", g.GetTitle(data))

	buf.WriteString("## Report Information\n\n")
	fmt.Fprintf(buf, "- **Generated:** %s\n", g.FormatTimestamp(g.GetTimestamp(data)))
	if data.RunID != "" {
		fmt.Fprintf(buf, "- **Run ID:** `%s`\n", data.RunID)
	}

	buf.WriteString("\n---\n\n")
}

func (g *MarkdownGenerator) writeNetwork(buf *bytes.Buffer, data *ReportData) {
	buf.WriteString("## Network Information\n\n")
	fmt.Fprintf(buf, "- **Nodes:** %d\n", data.Nodes)
	fmt.Fprintf(buf, "- **Edges:** %d\n", data.Edges)
	fmt.Fprintf(buf, "- **Source:** %d\n", data.Source)
	fmt.Fprintf(buf, "- **Sink:** %d\n", data.Sink)
	fmt.Fprintf(buf, "- **Workers:** %d\n\n", data.Workers)
}

func (g *MarkdownGenerator) writeResult(buf *bytes.Buffer, data *ReportData) {
	buf.WriteString("## Result\n\n")
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("|--------|-------|\n")
	fmt.Fprintf(buf, "| Max Flow | **%d** |\n", data.MaxFlow)
	fmt.Fprintf(buf, "| Rounds | %d |\n", data.Rounds)
	fmt.Fprintf(buf, "| Pushes | %d |\n", data.Pushes)
	fmt.Fprintf(buf, "| Relabels | %d |\n", data.Relabels)
	fmt.Fprintf(buf, "| Max Height | %d |\n", data.MaxHeight)
	fmt.Fprintf(buf, "| Computation Time | %s |\n\n", g.FormatDuration(data.Duration))
}

func (g *MarkdownGenerator) writeEdges(buf *bytes.Buffer, data *ReportData) {
	edges, skipped := g.TableEdges(data)
	if len(edges) == 0 {
		return
	}

	buf.WriteString("## Edge Flows\n\n")
	buf.WriteString("| Edge | From | To | Flow | Capacity | Utilization |\n")
	buf.WriteString("|------|------|----|------|----------|-------------|\n")
	for _, e := range edges {
		fmt.Fprintf(buf, "| %d | %d | %d | %d | %d | %s |\n",
			e.Index, e.From, e.To, e.Flow, e.Capacity, g.FormatPercent(e.Utilization))
	}
	if skipped > 0 {
		fmt.Fprintf(buf, "\n*... and %d more edges*\n", skipped)
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeHistory(buf *bytes.Buffer, data *ReportData) {
	if len(data.History) == 0 {
		return
	}

	buf.WriteString("## Rounds\n\n")
	buf.WriteString("| Round | Active | Pushes | Relabels | Admitted | Duration |\n")
	buf.WriteString("|-------|--------|--------|----------|----------|----------|\n")
	for _, r := range data.History {
		fmt.Fprintf(buf, "| %d | %d | %d | %d | %d | %s |\n",
			r.Round, r.Active, r.Pushes, r.Relabels, r.Admitted, g.FormatDuration(r.Duration))
	}
	buf.WriteString("\n")
}
