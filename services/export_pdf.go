package services

import (
	"fmt"
	"math"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfColumn describes one column of a tabular PDF section. Widths are in
// maroto grid units and each table must sum to 12.
type pdfColumn struct {
	Title string
	Width int
	Align align.Type
}

var budgetColumns = []pdfColumn{
	{"Item", 1, align.Center},
	{"Descrição", 4, align.Left},
	{"Unid.", 1, align.Center},
	{"Qtd.", 1, align.Right},
	{"Custo unit.", 2, align.Right},
	{"Total", 2, align.Right},
	{"%", 1, align.Right},
}

// GeneratePDF creates a PDF document from budget export data using maroto/v2.
// It returns the raw PDF bytes or an error.
func GeneratePDF(data ExportData, opts ExportOptions) ([]byte, error) {
	m := newPDF(opts)

	// --- Header Section ---
	lines := []string{}
	if data.Client != "" {
		lines = append(lines, "Cliente: "+data.Client)
	}
	if data.Address != "" {
		lines = append(lines, "Endereço: "+data.Address)
	}
	if data.BudgetDate != "" {
		lines = append(lines, "Data do orçamento: "+data.BudgetDate)
	}
	addHeader(m, data.Title, opts.Company, lines)

	// --- Table ---
	addTableHeader(m, budgetColumns)
	for _, r := range data.Rows {
		cells := []string{r.Index, r.Description, "", "", "", FormatBRL(r.Total), FormatPercent(r.Percent) + "%"}
		if r.Level == 2 {
			cells[2] = r.Unit
			cells[3] = formatQty(r.Qty)
			cells[4] = FormatBRL(r.UnitCost)
		}
		addTableRow(m, budgetColumns, cells, r.Level)
	}

	// --- Summary Section ---
	summary := [][2]string{{"Total base", FormatBRL(data.BaseTotal)}}
	if data.BDIConfigured {
		summary = append(summary,
			[2]string{"BDI (" + data.BDILabel + ")", FormatBRL(data.BDIValue)},
			[2]string{"Total com BDI", FormatBRL(data.MarkedUpTotal)},
		)
	} else {
		summary = append(summary, [2]string{"BDI", data.BDILabel})
	}
	addSummary(m, summary)

	addFooter(m, data.CreatedDate)

	return generatePDF(m)
}

// newPDF builds an A4 document with page numbering in the configured
// orientation.
func newPDF(opts ExportOptions) core.Maroto {
	o := orientation.Horizontal
	if opts.Orientation == "portrait" {
		o = orientation.Vertical
	}
	cfg := config.NewBuilder().
		WithOrientation(o).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()
	return maroto.New(cfg)
}

func generatePDF(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// addHeader adds the title, company and detail lines to the PDF.
func addHeader(m core.Maroto, title, company string, lines []string) {
	if company != "" {
		m.AddRows(
			row.New(7).Add(
				col.New(12).Add(
					text.New(company, props.Text{
						Size:  10,
						Style: fontstyle.Bold,
						Align: align.Left,
						Color: &props.Color{Red: 80, Green: 80, Blue: 80},
					}),
				),
			),
		)
	}

	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(title, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	for _, l := range lines {
		m.AddRows(
			row.New(6).Add(
				col.New(12).Add(
					text.New(l, props.Text{
						Size:  9,
						Align: align.Left,
						Color: &props.Color{Red: 80, Green: 80, Blue: 80},
					}),
				),
			),
		)
	}

	// Spacer
	m.AddRows(row.New(4))
}

// addTableHeader adds the column header row for a table.
func addTableHeader(m core.Maroto, columns []pdfColumn) {
	headerBg := &props.Color{Red: 33, Green: 37, Blue: 41}
	headerCell := props.Cell{BackgroundColor: headerBg}

	cols := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, col.New(c.Width).Add(
			text.New(c.Title, props.Text{
				Size:  8,
				Style: fontstyle.Bold,
				Align: c.Align,
				Color: &props.Color{Red: 255, Green: 255, Blue: 255},
			}),
		).WithStyle(&headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

// addTableRow adds a single data row, styled by indent level.
func addTableRow(m core.Maroto, columns []pdfColumn, cells []string, level int) {
	var cellStyle *props.Cell
	var textSize float64 = 7
	var textStyle fontstyle.Type = fontstyle.Normal
	descPrefix := ""

	switch level {
	case 0:
		// Package: bold, white background.
		textStyle = fontstyle.Bold
		textSize = 8
	case 1:
		// Subgroup: indented, light gray background.
		descPrefix = "  "
		bg := &props.Color{Red: 245, Green: 245, Blue: 245}
		cellStyle = &props.Cell{BackgroundColor: bg}
	case 2:
		descPrefix = "    "
		bg := &props.Color{Red: 235, Green: 235, Blue: 235}
		cellStyle = &props.Cell{BackgroundColor: bg}
	}

	cols := make([]core.Col, 0, len(columns))
	for i, c := range columns {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		if c.Align == align.Left {
			value = descPrefix + value
		}
		cl := col.New(c.Width).Add(text.New(value, props.Text{
			Size:  textSize,
			Style: textStyle,
			Align: c.Align,
		}))
		if cellStyle != nil {
			cl = cl.WithStyle(cellStyle)
		}
		cols = append(cols, cl)
	}
	m.AddRows(row.New(7).Add(cols...))
}

// addSummary adds label/value total rows at the bottom of the PDF.
func addSummary(m core.Maroto, pairs [][2]string) {
	m.AddRows(row.New(6))

	summaryBg := &props.Color{Red: 240, Green: 240, Blue: 240}
	summaryCell := &props.Cell{BackgroundColor: summaryBg}

	style := props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Align: align.Right,
	}

	for _, p := range pairs {
		m.AddRows(
			row.New(8).Add(
				col.New(8).Add(text.New(p[0], style)).WithStyle(summaryCell),
				col.New(4).Add(text.New(p[1], style)).WithStyle(summaryCell),
			),
		)
	}
}

// addFooter adds the generated-date line at the bottom.
func addFooter(m core.Maroto, generated string) {
	m.AddRows(row.New(6))
	m.AddRows(
		row.New(6).Add(
			col.New(12).Add(
				text.New(
					fmt.Sprintf("Gerado em %s", generated),
					props.Text{
						Size:  7,
						Align: align.Left,
						Color: &props.Color{Red: 140, Green: 140, Blue: 140},
					},
				),
			),
		),
	)
}

// formatQty returns a string representation of the quantity value.
// Whole numbers are formatted without decimals; fractional values get 2 decimal places.
func formatQty(qty float64) string {
	if qty == math.Trunc(qty) {
		return fmt.Sprintf("%.0f", qty)
	}
	return fmt.Sprintf("%.2f", qty)
}
