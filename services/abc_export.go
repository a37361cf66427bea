package services

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/xuri/excelize/v2"
)

var abcColumns = []pdfColumn{
	{"#", 1, align.Center},
	{"Insumo", 3, align.Left},
	{"Unid.", 1, align.Center},
	{"Qtd.", 1, align.Right},
	{"Valor", 2, align.Right},
	{"%", 1, align.Right},
	{"% acum.", 2, align.Right},
	{"Classe", 1, align.Center},
}

// GenerateABCExcel writes the ranked ABC curve followed by the band rollup.
func GenerateABCExcel(r ABCReport, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName, err := renameFirstSheet(f, "Curva ABC", "Curva ABC")
	if err != nil {
		return nil, err
	}

	columns := []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}
	lastCol := columns[len(columns)-1]
	widths := []float64{6, 36, 14, 8, 10, 18, 10, 10, 8}
	if err := setColumnWidths(f, sheetName, columns, widths); err != nil {
		return nil, err
	}

	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeMergedRow(f, sheetName, 1, lastCol, "Curva ABC - "+r.BudgetName, st.title); err != nil {
		return nil, err
	}
	if err := writeMergedRow(f, sheetName, 2, lastCol, "Data: "+generated.Format("02/01/2006"), st.subtitle); err != nil {
		return nil, err
	}

	headers := []string{"#", "Insumo", "Categoria", "Unid.", "Qtd.", "Valor", "%", "% acum.", "Classe"}
	writeHeaderRow(f, sheetName, 4, columns, headers, st.header)

	row := 5
	if r.Message != "" {
		if err := writeMergedRow(f, sheetName, row, lastCol, r.Message, st.subItem); err != nil {
			return nil, err
		}
		row++
	}
	for i, e := range r.Entries {
		rs := fmt.Sprintf("%d", row)
		f.SetCellValue(sheetName, "A"+rs, i+1)
		f.SetCellValue(sheetName, "B"+rs, sanitizeExcelCell(e.Name))
		f.SetCellValue(sheetName, "C"+rs, e.Category.Label())
		f.SetCellValue(sheetName, "D"+rs, string(e.Unit))
		f.SetCellValue(sheetName, "E"+rs, formatQty(e.Quantity))
		f.SetCellValue(sheetName, "F"+rs, FormatBRL(e.Value))
		f.SetCellValue(sheetName, "G"+rs, FormatPercent(e.Percent))
		f.SetCellValue(sheetName, "H"+rs, FormatPercent(e.CumulativePercent))
		f.SetCellValue(sheetName, "I"+rs, string(e.Band))
		f.SetCellStyle(sheetName, "A"+rs, lastCol+rs, st.subItem)
		row++
	}

	row++
	for _, b := range r.Bands {
		label := fmt.Sprintf("Classe %s (%d insumos, %s%%):", b.Band, b.Count, FormatPercent(b.Percent))
		writeSummaryRow(f, sheetName, row, "E", "F", label, FormatBRL(b.Value), st)
		row++
	}
	writeSummaryRow(f, sheetName, row, "E", "F", "Total:", FormatBRL(r.TotalValue), st)

	return writeWorkbook(f)
}

// GenerateABCPDF renders the ABC curve as a PDF table.
func GenerateABCPDF(r ABCReport, generated time.Time, opts ExportOptions) ([]byte, error) {
	m := newPDF(opts)

	lines := []string{fmt.Sprintf("Insumos analisados: %d", r.TotalInputs)}
	if r.Message != "" {
		lines = append(lines, r.Message)
	}
	addHeader(m, "Curva ABC - "+r.BudgetName, opts.Company, lines)

	addTableHeader(m, abcColumns)
	for i, e := range r.Entries {
		addTableRow(m, abcColumns, []string{
			fmt.Sprintf("%d", i+1),
			e.Name,
			string(e.Unit),
			formatQty(e.Quantity),
			FormatBRL(e.Value),
			FormatPercent(e.Percent) + "%",
			FormatPercent(e.CumulativePercent) + "%",
			string(e.Band),
		}, 2)
	}

	summary := make([][2]string, 0, len(r.Bands)+1)
	for _, b := range r.Bands {
		summary = append(summary, [2]string{
			fmt.Sprintf("Classe %s (%d insumos, %s%%)", b.Band, b.Count, FormatPercent(b.Percent)),
			FormatBRL(b.Value),
		})
	}
	summary = append(summary, [2]string{"Total", FormatBRL(r.TotalValue)})
	addSummary(m, summary)

	addFooter(m, generated.Format("02/01/2006"))

	return generatePDF(m)
}
