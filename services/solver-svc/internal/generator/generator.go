// services/solver-svc/internal/generator/generator.go
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"preflow/pkg/apperror"
	"preflow/services/solver-svc/internal/algorithms"
	"preflow/services/solver-svc/internal/converter"
	"preflow/services/solver-svc/internal/graph"
)

// Format формат отчёта
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatExcel    Format = "excel"
	FormatPDF      Format = "pdf"
	FormatDOT      Format = "dot"
)

const defaultTitle = "Maximum Flow Report"

// ReportData данные для генерации отчёта
type ReportData struct {
	RunID       string
	Title       string
	GeneratedAt time.Time

	// Граф
	Nodes   int
	Edges   int
	Source  int
	Sink    int
	Workers int

	// Результат
	MaxFlow   int64
	Rounds    int
	Pushes    int64
	Relabels  int64
	MaxHeight int
	Duration  time.Duration

	// Исходные рёбра сети, нужны для отрисовки неиспользованных рёбер
	Network []graph.EdgeSpec

	// Рёбра с ненулевым потоком и история раундов
	FlowEdges []converter.FlowEdge
	History   []algorithms.RoundStats

	// MaxEdgesInTable ограничивает таблицы рёбер в человекочитаемых форматах, 0 - без ограничения
	MaxEdgesInTable int
}

// NewReportData собирает данные отчёта по результату решения
func NewReportData(runID string, in *converter.Input, res *algorithms.Result, flows []converter.FlowEdge, source, sink int) *ReportData {
	data := &ReportData{
		RunID:       runID,
		GeneratedAt: time.Now(),
		Source:      source,
		Sink:        sink,
		FlowEdges:   flows,
	}
	if in != nil {
		data.Nodes = in.Nodes
		data.Edges = len(in.Edges)
		data.Network = in.Edges
	}
	if res != nil {
		data.Workers = res.Workers
		data.MaxFlow = res.MaxFlow
		data.Rounds = res.Rounds
		data.Pushes = res.Pushes
		data.Relabels = res.Relabels
		data.MaxHeight = res.MaxHeight
		data.Duration = res.Duration
		data.History = res.History
	}
	return data
}

// Generator интерфейс генератора отчётов
type Generator interface {
	Generate(ctx context.Context, data *ReportData) ([]byte, error)
	Format() Format
}

// New возвращает генератор для формата
func New(format string) (Generator, error) {
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		return NewJSONGenerator(), nil
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatMarkdown, "md":
		return NewMarkdownGenerator(), nil
	case FormatExcel, "xlsx":
		return NewExcelGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	case FormatDOT, "graphviz":
		return NewDOTGenerator(), nil
	default:
		return nil, apperror.Newf(apperror.CodeReport, "unsupported report format %q", format).WithField("report.format")
	}
}

// BaseGenerator базовые утилиты для генераторов
type BaseGenerator struct{}

// GetTitle возвращает заголовок отчёта
func (b *BaseGenerator) GetTitle(data *ReportData) string {
	if data.Title != "" {
		return data.Title
	}
	return defaultTitle
}

// GetTimestamp возвращает время генерации
func (b *BaseGenerator) GetTimestamp(data *ReportData) time.Time {
	if data.GeneratedAt.IsZero() {
		return time.Now()
	}
	return data.GeneratedAt
}

// TableEdges возвращает рёбра для таблицы и число отброшенных
func (b *BaseGenerator) TableEdges(data *ReportData) ([]converter.FlowEdge, int) {
	if data.MaxEdgesInTable <= 0 || len(data.FlowEdges) <= data.MaxEdgesInTable {
		return data.FlowEdges, 0
	}
	return data.FlowEdges[:data.MaxEdgesInTable], len(data.FlowEdges) - data.MaxEdgesInTable
}

// FormatFloat форматирует число с заданной точностью
func (b *BaseGenerator) FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatPercent форматирует процент
func (b *BaseGenerator) FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// FormatDuration форматирует длительность
func (b *BaseGenerator) FormatDuration(d time.Duration) string {
	ms := float64(d) / float64(time.Millisecond)
	if ms < 1000 {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// ColName преобразует индекс колонки в буквенное обозначение (0 -> A, 25 -> Z, 26 -> AA)
func ColName(index int) string {
	result := ""
	for {
		result = string(rune('A'+index%26)) + result
		index = index/26 - 1
		if index < 0 {
			break
		}
	}
	return result
}

// Cell возвращает адрес ячейки
func Cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// CellByIndex возвращает адрес ячейки по индексам
func CellByIndex(colIndex, rowIndex int) string {
	return fmt.Sprintf("%s%d", ColName(colIndex), rowIndex)
}
