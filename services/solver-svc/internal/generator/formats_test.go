// services/solver-svc/internal/generator/formats_test.go

package generator

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestJSONGenerator_Generate(t *testing.T) {
	g := NewJSONGenerator()
	if g.Format() != FormatJSON {
		t.Errorf("Format() = %v, want json", g.Format())
	}

	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)

	var report JSONReport
	require.NoError(t, json.Unmarshal(out, &report))

	assert.Equal(t, "run-42", report.Metadata.RunID)
	assert.Equal(t, "Sample Flow", report.Metadata.Title)
	assert.Equal(t, "2026-03-01T12:00:00Z", report.Metadata.GeneratedAt)
	assert.Equal(t, 4, report.Graph.NodeCount)
	assert.Equal(t, 3, report.Graph.SinkID)
	assert.Equal(t, int64(20), report.Result.MaxFlow)
	assert.Equal(t, 6, report.Result.Rounds)
	assert.InDelta(t, 1.5, report.Result.ComputationTimeMs, 1e-9)
	assert.Len(t, report.Edges, 4)
	assert.Len(t, report.History, 2)
	assert.Equal(t, 4, report.History[0].Pushes)
}

func TestJSONGenerator_IgnoresTableLimit(t *testing.T) {
	data := sampleData()
	data.MaxEdgesInTable = 1

	out, err := NewJSONGenerator().Generate(context.Background(), data)
	require.NoError(t, err)

	var report JSONReport
	require.NoError(t, json.Unmarshal(out, &report))
	assert.Len(t, report.Edges, 4)
}

func TestCSVGenerator_Generate(t *testing.T) {
	g := NewCSVGenerator()
	if g.Format() != FormatCSV {
		t.Errorf("Format() = %v, want csv", g.Format())
	}

	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	values := map[string]string{}
	for _, rec := range records {
		if len(rec) == 2 {
			values[rec[0]] = rec[1]
		}
	}
	assert.Equal(t, "20", values["Max Flow"])
	assert.Equal(t, "run-42", values["Run ID"])
	assert.Equal(t, "2", values["Workers"])

	text := string(out)
	assert.Contains(t, text, "Edge,From,To,Flow,Capacity,Utilization")
	assert.Contains(t, text, "3,1,3,10,10,1.0000")
	assert.Contains(t, text, "Round,Active,Pushes,Relabels,Admitted,Duration (ms)")
	assert.Contains(t, text, "1,2,4,2,2,1.000")
}

func TestCSVGenerator_NoEdgesNoHistory(t *testing.T) {
	data := sampleData()
	data.FlowEdges = nil
	data.History = nil

	out, err := NewCSVGenerator().Generate(context.Background(), data)
	require.NoError(t, err)

	text := string(out)
	assert.NotContains(t, text, "Edge Flows")
	assert.NotContains(t, text, "Rounds\n")
	assert.Contains(t, text, "Max Flow,20")
}

func TestMarkdownGenerator_Generate(t *testing.T) {
	g := NewMarkdownGenerator()
	if g.Format() != FormatMarkdown {
		t.Errorf("Format() = %v, want markdown", g.Format())
	}

	data := sampleData()
	data.MaxEdgesInTable = 2

	out, err := g.Generate(context.Background(), data)
	require.NoError(t, err)

	md := string(out)
	expected := []string{
		"# Sample Flow",
		"- **Run ID:** `run-42`",
		"- **Generated:** 2026-03-01 12:00:00",
		"| Max Flow | **20** |",
		"| Computation Time | 1.50 ms |",
		"## Edge Flows",
		"| 0 | 0 | 1 | 10 | 10 | 100.00% |",
		"*... and 2 more edges*",
		"## Rounds",
		"| 2 | 2 | 2 | 0 | 0 | 0.50 ms |",
	}
	for _, want := range expected {
		if !strings.Contains(md, want) {
			t.Errorf("markdown should contain %q", want)
		}
	}
	assert.NotContains(t, md, "| 4 | 2 | 3 |")
}

func TestExcelGenerator_Generate(t *testing.T) {
	g := NewExcelGenerator()
	if g.Format() != FormatExcel {
		t.Errorf("Format() = %v, want excel", g.Format())
	}

	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)

	// XLSX - это zip архив
	require.Greater(t, len(out), 4)
	assert.Equal(t, "PK", string(out[:2]))

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, edgesSheet, roundsSheet}, f.GetSheetList())

	title, err := f.GetCellValue(summarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Sample Flow", title)

	label, err := f.GetCellValue(summarySheet, "A11")
	require.NoError(t, err)
	assert.Equal(t, "Max Flow", label)

	maxFlow, err := f.GetCellValue(summarySheet, "B11")
	require.NoError(t, err)
	assert.Equal(t, "20", maxFlow)

	rows, err := f.GetRows(edgesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	assert.Equal(t, []string{"4", "2", "3", "10", "10", "1"}, rows[4])

	rounds, err := f.GetRows(roundsSheet)
	require.NoError(t, err)
	assert.Len(t, rounds, 3)
}

func TestExcelGenerator_SummaryOnly(t *testing.T) {
	data := sampleData()
	data.FlowEdges = nil
	data.History = nil

	out, err := NewExcelGenerator().Generate(context.Background(), data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet}, f.GetSheetList())
}

func TestPDFGenerator_Generate(t *testing.T) {
	g := NewPDFGenerator()
	if g.Format() != FormatPDF {
		t.Errorf("Format() = %v, want pdf", g.Format())
	}

	data := sampleData()
	data.MaxEdgesInTable = 2

	out, err := g.Generate(context.Background(), data)
	require.NoError(t, err)
	require.Greater(t, len(out), 4)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestPDFGenerator_ManyRounds(t *testing.T) {
	data := sampleData()
	for i := 3; i <= maxPDFRounds+10; i++ {
		data.History = append(data.History, data.History[0])
		data.History[len(data.History)-1].Round = i
	}

	out, err := NewPDFGenerator().Generate(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestDOTGenerator_Generate(t *testing.T) {
	g := NewDOTGenerator()
	if g.Format() != FormatDOT {
		t.Errorf("Format() = %v, want dot", g.Format())
	}

	out, err := g.Generate(context.Background(), sampleData())
	require.NoError(t, err)

	dot := string(out)
	assert.True(t, strings.HasPrefix(dot, `digraph "Sample Flow" {`))
	assert.True(t, strings.HasSuffix(dot, "}\n"))
	assert.Contains(t, dot, `0 [shape=doublecircle, label="0\nsource"];`)
	assert.Contains(t, dot, `3 [shape=doublecircle, label="3\nsink"];`)
	assert.Contains(t, dot, `0 -> 1 [label="10/10", color=red, penwidth=2];`)
	assert.Contains(t, dot, `1 -> 2 [label="0/1", style=dashed, color=gray];`)
	assert.Equal(t, 5, strings.Count(dot, "->"))
}

func TestDOTGenerator_FlowEdgesOnly(t *testing.T) {
	data := sampleData()
	data.Network = nil
	data.FlowEdges[0].Flow = 4
	data.FlowEdges[0].Utilization = 0.4

	out, err := NewDOTGenerator().Generate(context.Background(), data)
	require.NoError(t, err)

	dot := string(out)
	assert.Contains(t, dot, `0 -> 1 [label="4/10"];`)
	assert.Equal(t, 4, strings.Count(dot, "->"))
}
