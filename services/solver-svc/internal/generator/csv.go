// services/solver-svc/internal/generator/csv.go
package generator

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVGenerator генератор CSV отчётов
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record ...string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Generate генерирует CSV отчёт: блок сводки, блок рёбер, блок раундов
func (g *CSVGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	g.writeSummary(cw, data)
	g.writeEdges(cw, data)
	g.writeHistory(cw, data)

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	return buf.Bytes(), nil
}

func (g *CSVGenerator) writeSummary(cw *csvWriter, data *ReportData) {
	cw.Write(g.GetTitle(data))
	cw.Write("Metric", "Value")
	if data.RunID != "" {
		cw.Write("Run ID", data.RunID)
	}
	cw.Write("Nodes", strconv.Itoa(data.Nodes))
	cw.Write("Edges", strconv.Itoa(data.Edges))
	cw.Write("Source", strconv.Itoa(data.Source))
	cw.Write("Sink", strconv.Itoa(data.Sink))
	cw.Write("Workers", strconv.Itoa(data.Workers))
	cw.Write("Max Flow", strconv.FormatInt(data.MaxFlow, 10))
	cw.Write("Rounds", strconv.Itoa(data.Rounds))
	cw.Write("Pushes", strconv.FormatInt(data.Pushes, 10))
	cw.Write("Relabels", strconv.FormatInt(data.Relabels, 10))
	cw.Write("Max Height", strconv.Itoa(data.MaxHeight))
	cw.Write("Duration (ms)", g.FormatFloat(durationMs(data.Duration), 3))
	cw.Write()
}

func (g *CSVGenerator) writeEdges(cw *csvWriter, data *ReportData) {
	if len(data.FlowEdges) == 0 {
		return
	}
	cw.Write("Edge Flows")
	cw.Write("Edge", "From", "To", "Flow", "Capacity", "Utilization")
	for _, e := range data.FlowEdges {
		cw.Write(
			strconv.Itoa(e.Index),
			strconv.Itoa(e.From),
			strconv.Itoa(e.To),
			strconv.FormatInt(e.Flow, 10),
			strconv.FormatInt(e.Capacity, 10),
			g.FormatFloat(e.Utilization, 4),
		)
	}
	cw.Write()
}

func (g *CSVGenerator) writeHistory(cw *csvWriter, data *ReportData) {
	if len(data.History) == 0 {
		return
	}
	cw.Write("Rounds")
	cw.Write("Round", "Active", "Pushes", "Relabels", "Admitted", "Duration (ms)")
	for _, r := range data.History {
		cw.Write(
			strconv.Itoa(r.Round),
			strconv.Itoa(r.Active),
			strconv.Itoa(r.Pushes),
			strconv.Itoa(r.Relabels),
			strconv.Itoa(r.Admitted),
			g.FormatFloat(durationMs(r.Duration), 3),
		)
	}
}
