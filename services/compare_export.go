package services

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

var presenceLabels = map[string]string{
	InBoth:       "",
	OnlyInFirst:  "Somente no 1º",
	OnlyInSecond: "Somente no 2º",
}

// GenerateComparisonExcel writes the per-package comparison of two budgets.
func GenerateComparisonExcel(c Comparison, generated time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName, err := renameFirstSheet(f, "Comparativo", "Comparativo")
	if err != nil {
		return nil, err
	}

	columns := []string{"A", "B", "C", "D", "E", "F"}
	lastCol := columns[len(columns)-1]
	widths := []float64{36, 20, 20, 20, 12, 16}
	if err := setColumnWidths(f, sheetName, columns, widths); err != nil {
		return nil, err
	}

	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s x %s", c.First.Name, c.Second.Name)
	if err := writeMergedRow(f, sheetName, 1, lastCol, title, st.title); err != nil {
		return nil, err
	}
	if err := writeMergedRow(f, sheetName, 2, lastCol, "Data: "+generated.Format("02/01/2006"), st.subtitle); err != nil {
		return nil, err
	}

	headers := []string{"Pacote", c.First.Name, c.Second.Name, "Diferença", "Dif. %", "Presença"}
	writeHeaderRow(f, sheetName, 4, columns, headers, st.header)

	row := 5
	for _, p := range c.Packages {
		writeComparisonRow(f, sheetName, row, p.Name, p.First, p.Second, p.Difference, presenceLabels[p.OnlyIn], st.subItem)
		row++
	}
	writeComparisonRow(f, sheetName, row, "Total base", c.First.Markup.Base, c.Second.Markup.Base, c.Base, "", st.mainItem)
	row++
	writeComparisonRow(f, sheetName, row, "Total com BDI", c.First.Markup.Total, c.Second.Markup.Total, c.MarkedUp, "", st.mainItem)
	row += 2

	writeSummaryRow(f, sheetName, row, "A", "B", "BDI "+c.First.Name+":", FormatBDI(c.First.Markup.Config), st)
	row++
	writeSummaryRow(f, sheetName, row, "A", "B", "BDI "+c.Second.Name+":", FormatBDI(c.Second.Markup.Config), st)

	return writeWorkbook(f)
}

func writeComparisonRow(f *excelize.File, sheet string, row int, name string, first, second float64, d Difference, presence string, style int) {
	rs := fmt.Sprintf("%d", row)
	rel := "-"
	if d.HasRelative {
		rel = fmt.Sprintf("%+.1f%%", d.Percent)
	}
	f.SetCellValue(sheet, "A"+rs, sanitizeExcelCell(name))
	f.SetCellValue(sheet, "B"+rs, FormatBRL(first))
	f.SetCellValue(sheet, "C"+rs, FormatBRL(second))
	f.SetCellValue(sheet, "D"+rs, FormatSignedBRL(d.Value))
	f.SetCellValue(sheet, "E"+rs, rel)
	f.SetCellValue(sheet, "F"+rs, presence)
	f.SetCellStyle(sheet, "A"+rs, "F"+rs, style)
}
