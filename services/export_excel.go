package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheetStyles holds the style ids shared by every workbook export.
type sheetStyles struct {
	title        int
	subtitle     int
	header       int
	mainItem     int
	subItem      int
	summaryLabel int
	summaryValue int
}

// GenerateExcel creates an Excel file from the given ExportData and returns
// the file contents as a byte slice.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName, err := renameFirstSheet(f, data.Title, "Orçamento")
	if err != nil {
		return nil, err
	}

	// Column references (A through G).
	columns := []string{"A", "B", "C", "D", "E", "F", "G"}
	lastCol := columns[len(columns)-1]

	widths := []float64{8, 44, 8, 10, 18, 18, 10}
	if err := setColumnWidths(f, sheetName, columns, widths); err != nil {
		return nil, err
	}

	st, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	// ── Header Rows (1-4) ───────────────────────────────────────────────

	if err := writeMergedRow(f, sheetName, 1, lastCol, data.Title, st.title); err != nil {
		return nil, err
	}
	subtitles := []string{}
	if data.Client != "" {
		subtitles = append(subtitles, "Cliente: "+data.Client)
	}
	if data.Address != "" {
		subtitles = append(subtitles, "Endereço: "+data.Address)
	}
	subtitles = append(subtitles, "Data: "+data.CreatedDate)
	row := 2
	for _, s := range subtitles {
		if err := writeMergedRow(f, sheetName, row, lastCol, s, st.subtitle); err != nil {
			return nil, err
		}
		row++
	}

	// ── Column Headers ──────────────────────────────────────────────────

	row++
	headers := []string{"Item", "Descrição", "Unid.", "Qtd.", "Custo unit.", "Total", "%"}
	writeHeaderRow(f, sheetName, row, columns, headers, st.header)
	row++

	// ── Data Rows ───────────────────────────────────────────────────────

	for _, r := range data.Rows {
		rowStr := fmt.Sprintf("%d", row)

		f.SetCellValue(sheetName, "A"+rowStr, r.Index)

		desc := r.Description
		switch r.Level {
		case 1:
			desc = "  " + desc
		case 2:
			desc = "    " + desc
		}
		f.SetCellValue(sheetName, "B"+rowStr, sanitizeExcelCell(desc))

		if r.Level == 2 {
			f.SetCellValue(sheetName, "C"+rowStr, sanitizeExcelCell(r.Unit))
			f.SetCellValue(sheetName, "D"+rowStr, formatQty(r.Qty))
			f.SetCellValue(sheetName, "E"+rowStr, FormatBRL(r.UnitCost))
		}
		f.SetCellValue(sheetName, "F"+rowStr, FormatBRL(r.Total))
		f.SetCellValue(sheetName, "G"+rowStr, FormatPercent(r.Percent))

		style := st.subItem
		if r.Level == 0 {
			style = st.mainItem
		}
		f.SetCellStyle(sheetName, "A"+rowStr, lastCol+rowStr, style)

		row++
	}

	// ── Summary Rows ────────────────────────────────────────────────────

	row++
	writeSummaryRow(f, sheetName, row, "E", "F", "Total base:", FormatBRL(data.BaseTotal), st)
	row++
	if data.BDIConfigured {
		writeSummaryRow(f, sheetName, row, "E", "F", "BDI ("+data.BDILabel+"):", FormatBRL(data.BDIValue), st)
		row++
		writeSummaryRow(f, sheetName, row, "E", "F", "Total com BDI:", FormatBRL(data.MarkedUpTotal), st)
	} else {
		writeSummaryRow(f, sheetName, row, "E", "F", "BDI:", data.BDILabel, st)
	}

	return writeWorkbook(f)
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	var st sheetStyles
	var err error

	// ── Styles ──────────────────────────────────────────────────────────

	// Title style: bold, 16pt.
	st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
	})
	if err != nil {
		return st, fmt.Errorf("create title style: %w", err)
	}

	// Subtitle style (client, address, date).
	st.subtitle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 11,
		},
	})
	if err != nil {
		return st, fmt.Errorf("create subtitle style: %w", err)
	}

	// Column header style: bold, white text, charcoal background, centered.
	st.header, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:  true,
			Color: "#FFFFFF",
			Size:  11,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#333333"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: thinBorders(),
	})
	if err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}

	// Package rows: bold with borders.
	st.mainItem, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 10,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return st, fmt.Errorf("create main item style: %w", err)
	}

	st.subItem, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Size: 10,
		},
		Border: thinBorders(),
	})
	if err != nil {
		return st, fmt.Errorf("create sub item style: %w", err)
	}

	st.summaryLabel, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
	})
	if err != nil {
		return st, fmt.Errorf("create summary label style: %w", err)
	}

	st.summaryValue, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return st, fmt.Errorf("create summary value style: %w", err)
	}
	return st, nil
}

// renameFirstSheet names the default sheet after title, truncated to Excel's
// 31 character limit.
func renameFirstSheet(f *excelize.File, title, fallback string) (string, error) {
	name := sheetTitle(title, fallback)
	if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
		return "", fmt.Errorf("set sheet name: %w", err)
	}
	return name, nil
}

func sheetTitle(title, fallback string) string {
	r := []rune(title)
	if len(r) > 31 {
		r = r[:31]
	}
	if len(r) == 0 {
		return fallback
	}
	return string(r)
}

func setColumnWidths(f *excelize.File, sheet string, columns []string, widths []float64) error {
	for i, col := range columns {
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	return nil
}

func writeMergedRow(f *excelize.File, sheet string, row int, lastCol, text string, style int) error {
	first := fmt.Sprintf("A%d", row)
	last := fmt.Sprintf("%s%d", lastCol, row)
	if err := f.MergeCell(sheet, first, last); err != nil {
		return fmt.Errorf("merge row %d: %w", row, err)
	}
	f.SetCellValue(sheet, first, sanitizeExcelCell(text))
	f.SetCellStyle(sheet, first, last, style)
	return nil
}

func writeHeaderRow(f *excelize.File, sheet string, row int, columns, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, fmt.Sprintf("%s%d", columns[i], row), sanitizeExcelCell(h))
	}
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", columns[len(headers)-1], row), style)
}

func writeSummaryRow(f *excelize.File, sheet string, row int, labelCol, valueCol, label, value string, st sheetStyles) {
	r := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, labelCol+r, label)
	f.SetCellStyle(sheet, labelCol+r, labelCol+r, st.summaryLabel)
	f.SetCellValue(sheet, valueCol+r, value)
	f.SetCellStyle(sheet, valueCol+r, valueCol+r, st.summaryValue)
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
