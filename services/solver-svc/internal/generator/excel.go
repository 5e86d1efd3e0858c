// services/solver-svc/internal/generator/excel.go
package generator

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	edgesSheet   = "Edge Flows"
	roundsSheet  = "Rounds"
)

// ExcelGenerator генератор Excel отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

// Generate генерирует Excel отчёт
func (g *ExcelGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel style error: %w", err)
	}

	// Лист по умолчанию переименовываем в сводку
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("excel sheet error: %w", err)
	}

	g.writeSummary(f, data, headerStyle)

	if len(data.FlowEdges) > 0 {
		if _, err := f.NewSheet(edgesSheet); err != nil {
			return nil, fmt.Errorf("excel sheet error: %w", err)
		}
		g.writeEdges(f, data, headerStyle)
	}

	if len(data.History) > 0 {
		if _, err := f.NewSheet(roundsSheet); err != nil {
			return nil, fmt.Errorf("excel sheet error: %w", err)
		}
		g.writeRounds(f, data, headerStyle)
	}

	// Записываем в буфер
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (g *ExcelGenerator) writeSummary(f *excelize.File, data *ReportData, headerStyle int) {
	row := 1

	// Заголовок
	f.SetCellValue(summarySheet, Cell("A", row), g.GetTitle(data))
	f.MergeCell(summarySheet, Cell("A", row), Cell("D", row))
	row += 2

	f.SetCellValue(summarySheet, Cell("A", row), "Metric")
	f.SetCellValue(summarySheet, Cell("B", row), "Value")
	f.SetCellStyle(summarySheet, Cell("A", row), Cell("B", row), headerStyle)
	row++

	rows := []struct {
		label string
		value any
	}{
		{"Run ID", data.RunID},
		{"Generated", g.FormatTimestamp(g.GetTimestamp(data))},
		{"Nodes", data.Nodes},
		{"Edges", data.Edges},
		{"Source", data.Source},
		{"Sink", data.Sink},
		{"Workers", data.Workers},
		{"Max Flow", data.MaxFlow},
		{"Rounds", data.Rounds},
		{"Pushes", data.Pushes},
		{"Relabels", data.Relabels},
		{"Max Height", data.MaxHeight},
		{"Duration (ms)", durationMs(data.Duration)},
	}
	for _, r := range rows {
		f.SetCellValue(summarySheet, Cell("A", row), r.label)
		f.SetCellValue(summarySheet, Cell("B", row), r.value)
		row++
	}

	f.SetColWidth(summarySheet, "A", "A", 18)
	f.SetColWidth(summarySheet, "B", "B", 40)
}

func (g *ExcelGenerator) writeEdges(f *excelize.File, data *ReportData, headerStyle int) {
	headers := []string{"Edge", "From", "To", "Flow", "Capacity", "Utilization"}
	for i, h := range headers {
		f.SetCellValue(edgesSheet, CellByIndex(i, 1), h)
	}
	f.SetCellStyle(edgesSheet, CellByIndex(0, 1), CellByIndex(len(headers)-1, 1), headerStyle)

	for i, e := range data.FlowEdges {
		row := i + 2
		f.SetCellValue(edgesSheet, CellByIndex(0, row), e.Index)
		f.SetCellValue(edgesSheet, CellByIndex(1, row), e.From)
		f.SetCellValue(edgesSheet, CellByIndex(2, row), e.To)
		f.SetCellValue(edgesSheet, CellByIndex(3, row), e.Flow)
		f.SetCellValue(edgesSheet, CellByIndex(4, row), e.Capacity)
		f.SetCellValue(edgesSheet, CellByIndex(5, row), e.Utilization)
	}
}

func (g *ExcelGenerator) writeRounds(f *excelize.File, data *ReportData, headerStyle int) {
	headers := []string{"Round", "Active", "Pushes", "Relabels", "Admitted", "Duration (ms)"}
	for i, h := range headers {
		f.SetCellValue(roundsSheet, CellByIndex(i, 1), h)
	}
	f.SetCellStyle(roundsSheet, CellByIndex(0, 1), CellByIndex(len(headers)-1, 1), headerStyle)

	for i, r := range data.History {
		row := i + 2
		f.SetCellValue(roundsSheet, CellByIndex(0, row), r.Round)
		f.SetCellValue(roundsSheet, CellByIndex(1, row), r.Active)
		f.SetCellValue(roundsSheet, CellByIndex(2, row), r.Pushes)
		f.SetCellValue(roundsSheet, CellByIndex(3, row), r.Relabels)
		f.SetCellValue(roundsSheet, CellByIndex(4, row), r.Admitted)
		f.SetCellValue(roundsSheet, CellByIndex(5, row), durationMs(r.Duration))
	}
}
