// services/solver-svc/internal/generator/json.go
package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// JSONGenerator генератор JSON отчётов
type JSONGenerator struct {
	BaseGenerator
}

// NewJSONGenerator создаёт новый генератор
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Format возвращает формат генератора
func (g *JSONGenerator) Format() Format {
	return FormatJSON
}

// JSONReport структура JSON отчёта
type JSONReport struct {
	Metadata JSONMetadata    `json:"metadata"`
	Graph    JSONGraph       `json:"graph"`
	Result   JSONResult      `json:"result"`
	Edges    []JSONFlowEdge  `json:"edges,omitempty"`
	History  []JSONRoundStat `json:"history,omitempty"`
}

type JSONMetadata struct {
	RunID       string `json:"runId,omitempty"`
	Title       string `json:"title"`
	GeneratedAt string `json:"generatedAt"`
}

type JSONGraph struct {
	NodeCount int `json:"nodeCount"`
	EdgeCount int `json:"edgeCount"`
	SourceID  int `json:"sourceId"`
	SinkID    int `json:"sinkId"`
}

type JSONResult struct {
	MaxFlow           int64   `json:"maxFlow"`
	Workers           int     `json:"workers"`
	Rounds            int     `json:"rounds"`
	Pushes            int64   `json:"pushes"`
	Relabels          int64   `json:"relabels"`
	MaxHeight         int     `json:"maxHeight"`
	ComputationTimeMs float64 `json:"computationTimeMs"`
}

type JSONFlowEdge struct {
	Index       int     `json:"index"`
	From        int     `json:"from"`
	To          int     `json:"to"`
	Flow        int64   `json:"flow"`
	Capacity    int64   `json:"capacity"`
	Utilization float64 `json:"utilization"`
}

type JSONRoundStat struct {
	Round      int     `json:"round"`
	Active     int     `json:"active"`
	Pushes     int     `json:"pushes"`
	Relabels   int     `json:"relabels"`
	Admitted   int     `json:"admitted"`
	DurationMs float64 `json:"durationMs"`
}

// Generate генерирует JSON отчёт. Таблица рёбер не обрезается.
func (g *JSONGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	report := JSONReport{
		Metadata: JSONMetadata{
			RunID:       data.RunID,
			Title:       g.GetTitle(data),
			GeneratedAt: g.GetTimestamp(data).Format(time.RFC3339),
		},
		Graph: JSONGraph{
			NodeCount: data.Nodes,
			EdgeCount: data.Edges,
			SourceID:  data.Source,
			SinkID:    data.Sink,
		},
		Result: JSONResult{
			MaxFlow:           data.MaxFlow,
			Workers:           data.Workers,
			Rounds:            data.Rounds,
			Pushes:            data.Pushes,
			Relabels:          data.Relabels,
			MaxHeight:         data.MaxHeight,
			ComputationTimeMs: durationMs(data.Duration),
		},
	}

	for _, e := range data.FlowEdges {
		report.Edges = append(report.Edges, JSONFlowEdge{
			Index:       e.Index,
			From:        e.From,
			To:          e.To,
			Flow:        e.Flow,
			Capacity:    e.Capacity,
			Utilization: e.Utilization,
		})
	}

	for _, r := range data.History {
		report.History = append(report.History, JSONRoundStat{
			Round:      r.Round,
			Active:     r.Active,
			Pushes:     r.Pushes,
			Relabels:   r.Relabels,
			Admitted:   r.Admitted,
			DurationMs: durationMs(r.Duration),
		})
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal error: %w", err)
	}
	return append(out, '\n'), nil
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
