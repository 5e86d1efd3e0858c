// services/solver-svc/internal/generator/pdf.go
package generator

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Стили
var (
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{
		Size:  24,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// maxPDFRounds ограничивает таблицу раундов в PDF
const maxPDFRounds = 40

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *ReportData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, data)

	g.addSection(m, "Network Information")
	g.addMetricCards(m, []metricCard{
		{Label: "Nodes", Value: fmt.Sprintf("%d", data.Nodes)},
		{Label: "Edges", Value: fmt.Sprintf("%d", data.Edges)},
		{Label: "Source", Value: fmt.Sprintf("%d", data.Source)},
		{Label: "Sink", Value: fmt.Sprintf("%d", data.Sink)},
	})

	g.addSection(m, "Result")
	g.addMetricCards(m, []metricCard{
		{Label: "Maximum Flow", Value: fmt.Sprintf("%d", data.MaxFlow), Highlight: true},
		{Label: "Rounds", Value: fmt.Sprintf("%d", data.Rounds), Highlight: true},
	})
	m.AddRow(5)
	g.addMetricCards(m, []metricCard{
		{Label: "Workers", Value: fmt.Sprintf("%d", data.Workers)},
		{Label: "Pushes", Value: fmt.Sprintf("%d", data.Pushes)},
		{Label: "Relabels", Value: fmt.Sprintf("%d", data.Relabels)},
		{Label: "Computation Time", Value: g.FormatDuration(data.Duration)},
	})

	if edges, skipped := g.TableEdges(data); len(edges) > 0 {
		g.addSection(m, "Edge Flows")
		g.addTable(m, []string{"Edge", "From", "To", "Flow", "Capacity", "Utilization"}, len(edges), func(i int) []string {
			e := edges[i]
			return []string{
				fmt.Sprintf("%d", e.Index),
				fmt.Sprintf("%d", e.From),
				fmt.Sprintf("%d", e.To),
				fmt.Sprintf("%d", e.Flow),
				fmt.Sprintf("%d", e.Capacity),
				g.FormatPercent(e.Utilization),
			}
		})
		if skipped > 0 {
			m.AddRow(6, text.NewCol(12, fmt.Sprintf("... and %d more edges", skipped), smallStyle))
		}
	}

	if len(data.History) > 0 {
		rounds := data.History
		if len(rounds) > maxPDFRounds {
			rounds = rounds[:maxPDFRounds]
		}
		g.addSection(m, "Rounds")
		g.addTable(m, []string{"Round", "Active", "Pushes", "Relabels", "Admitted", "Duration"}, len(rounds), func(i int) []string {
			r := rounds[i]
			return []string{
				fmt.Sprintf("%d", r.Round),
				fmt.Sprintf("%d", r.Active),
				fmt.Sprintf("%d", r.Pushes),
				fmt.Sprintf("%d", r.Relabels),
				fmt.Sprintf("%d", r.Admitted),
				g.FormatDuration(r.Duration),
			}
		})
		if extra := len(data.History) - len(rounds); extra > 0 {
			m.AddRow(6, text.NewCol(12, fmt.Sprintf("... and %d more rounds", extra), smallStyle))
		}
	}

	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *ReportData) {
	m.AddRow(15,
		text.NewCol(12, g.GetTitle(data), titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Run: %s", data.RunID), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", g.FormatTimestamp(g.GetTimestamp(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	m.AddRow(8) // Отступ
}

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 14
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

// addTable рисует таблицу из шести колонок
func (g *PDFGenerator) addTable(m core.Maroto, headers []string, rows int, row func(i int) []string) {
	var head []core.Col
	for _, h := range headers {
		head = append(head, text.NewCol(2, h, tableHeaderTextStyle).WithStyle(tableHeaderStyle))
	}
	m.AddRow(8, head...)

	for i := 0; i < rows; i++ {
		var cells []core.Col
		for _, v := range row(i) {
			cells = append(cells, text.NewCol(2, v, tableCellTextStyle).WithStyle(tableCellStyle))
		}
		m.AddRow(6, cells...)
	}
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *ReportData) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by preflow | %s", g.FormatTimestamp(g.GetTimestamp(data))),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
