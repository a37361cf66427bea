package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"budgetcraft/apperrors"
	"budgetcraft/models"
)

// ValidationError represents a single field-level error on one row.
type ValidationError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ImportRow is one parsed input row of an uploaded file.
type ImportRow struct {
	Row      int             `json:"row"`
	Name     string          `json:"name"`
	Category models.Category `json:"category"`
	Unit     models.Unit     `json:"unit"`
	Price    float64         `json:"price"`
	Supplier string          `json:"supplier"`
	Date     time.Time       `json:"date"`
}

// ValidationResult is returned after parsing and validating an uploaded file.
type ValidationResult struct {
	TotalRows int               `json:"total_rows"`
	ValidRows int               `json:"valid_rows"`
	ErrorRows int               `json:"error_rows"`
	Errors    []ValidationError `json:"errors"`
	Rows      []ImportRow       `json:"rows"`
	FileName  string            `json:"file_name"`
}

// ParseImportFile reads a .csv or .xlsx upload and returns headers + data rows.
// Files with more than maxRows data rows are rejected when maxRows > 0.
func ParseImportFile(file io.Reader, fileName string, maxRows int) ([]string, [][]string, error) {
	var headers []string
	var dataRows [][]string
	var err error

	lowerName := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lowerName, ".csv"):
		headers, dataRows, err = parseCSV(file)
	case strings.HasSuffix(lowerName, ".xlsx"):
		headers, dataRows, err = parseExcel(file)
	default:
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported file format: must be .csv or .xlsx")
	}
	if err != nil {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
	}
	if maxRows > 0 && len(dataRows) > maxRows {
		return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("file has %d rows, the limit is %d", len(dataRows), maxRows))
	}
	return headers, dataRows, nil
}

// parseCSV reads a CSV file and returns headers + data rows. Both comma and
// semicolon separated files are accepted.
func parseCSV(file io.Reader) ([]string, [][]string, error) {
	raw, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	if firstLine, _, _ := strings.Cut(string(raw), "\n"); strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		reader.Comma = ';'
	}

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(allRows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	headers := allRows[0]
	dataRows := allRows[1:]
	return headers, dataRows, nil
}

// parseExcel reads an xlsx file and returns headers + data rows from the first sheet.
func parseExcel(file io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	headers := rows[0]
	dataRows := rows[1:]
	return headers, dataRows, nil
}

// mapHeadersToFields maps uploaded column headers to TemplateField keys.
// Returns ordered list of field keys (one per column) and any unrecognized columns.
func mapHeadersToFields(headers []string, fields []TemplateField) ([]string, []string) {
	labelToKey := make(map[string]string, len(fields)*2)
	for _, f := range fields {
		labelToKey[strings.ToLower(strings.TrimSpace(f.Label))] = f.Key
		labelToKey[f.Key] = f.Key
	}

	mapped := make([]string, len(headers))
	var unrecognized []string

	for i, h := range headers {
		norm := strings.ToLower(strings.TrimSpace(h))
		// Strip trailing " *" that our template adds for required fields
		norm = strings.TrimSuffix(norm, " *")
		norm = strings.TrimSpace(norm)

		if key, ok := labelToKey[norm]; ok {
			mapped[i] = key
		} else {
			unrecognized = append(unrecognized, h)
		}
	}
	return mapped, unrecognized
}

// ValidateInputRows checks every data row against the catalog rules. Names
// must be unique both within the file and against existing inputs.
func ValidateInputRows(headers []string, dataRows [][]string, existing []models.Input, today time.Time) *ValidationResult {
	fields := InputTemplateFields()
	columnKeys, _ := mapHeadersToFields(headers, fields)

	keyToLabel := make(map[string]string, len(fields))
	for _, f := range fields {
		keyToLabel[f.Key] = f.Label
	}

	taken := make(map[string]bool, len(existing))
	for _, in := range existing {
		taken[models.NormalizedName(in.Name)] = true
	}
	seenInFile := make(map[string]int)

	result := &ValidationResult{
		TotalRows: len(dataRows),
		Errors:    []ValidationError{},
		Rows:      make([]ImportRow, 0, len(dataRows)),
	}

	for rowIdx, row := range dataRows {
		rowNum := rowIdx + 2 // 1-indexed, +1 for header row
		rowData := make(map[string]string)
		for colIdx, key := range columnKeys {
			if key == "" {
				continue
			}
			if colIdx < len(row) {
				rowData[key] = strings.TrimSpace(row[colIdx])
			}
		}

		var rowErrors []ValidationError
		for _, f := range fields {
			if f.Required && rowData[f.Key] == "" {
				rowErrors = append(rowErrors, ValidationError{
					Row:     rowNum,
					Field:   f.Label,
					Message: fmt.Sprintf("%s is required", f.Label),
				})
			}
		}

		parsed := ImportRow{Row: rowNum, Name: rowData["name"], Supplier: rowData["supplier"], Date: today}

		if v := rowData["category"]; v != "" {
			if c, ok := models.ParseCategory(v); ok {
				parsed.Category = c
			} else {
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel["category"], Message: fmt.Sprintf("Unknown category %q", v)})
			}
		}
		if v := rowData["unit"]; v != "" {
			if u, ok := models.ParseUnit(v); ok {
				parsed.Unit = u
			} else {
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel["unit"], Message: fmt.Sprintf("Unknown unit %q", v)})
			}
		}
		if v := rowData["price"]; v != "" {
			price, err := ParseDecimal(v)
			switch {
			case err != nil:
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel["price"], Message: fmt.Sprintf("Invalid price %q", v)})
			case price < 0:
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel["price"], Message: "Price must not be negative"})
			default:
				parsed.Price = price
			}
		}
		if v := rowData["date"]; v != "" {
			d, err := parseImportDate(v)
			if err != nil {
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel["date"], Message: fmt.Sprintf("Invalid date %q", v)})
			} else {
				parsed.Date = d
			}
		}
		if parsed.Name != "" {
			key := models.NormalizedName(parsed.Name)
			if first, dup := seenInFile[key]; dup {
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel["name"], Message: fmt.Sprintf("Duplicate of row %d", first)})
			} else {
				seenInFile[key] = rowNum
			}
			if taken[key] {
				rowErrors = append(rowErrors, ValidationError{Row: rowNum, Field: keyToLabel["name"], Message: fmt.Sprintf("An input named %q already exists", parsed.Name)})
			}
		}

		result.Errors = append(result.Errors, rowErrors...)
		result.Rows = append(result.Rows, parsed)
	}

	errorRowSet := make(map[int]bool)
	for _, e := range result.Errors {
		errorRowSet[e.Row] = true
	}
	result.ErrorRows = len(errorRowSet)
	result.ValidRows = result.TotalRows - result.ErrorRows
	return result
}

// ParseDecimal accepts "1234.56", "1234,56" and "1.234,56".
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return cast.ToFloat64E(s)
}

func parseImportDate(s string) (time.Time, error) {
	for _, layout := range []string{"02/01/2006", "2006-01-02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// GenerateErrorReport creates a downloadable .xlsx file from validation errors.
func GenerateErrorReport(errors []ValidationError) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Erros"
	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DC2626"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	f.SetCellValue(sheet, "A1", "Linha")
	f.SetCellValue(sheet, "B1", "Campo")
	f.SetCellValue(sheet, "C1", "Erro")
	f.SetCellStyle(sheet, "A1", "C1", headerStyle)
	f.SetColWidth(sheet, "A", "A", 8)
	f.SetColWidth(sheet, "B", "B", 22)
	f.SetColWidth(sheet, "C", "C", 55)

	for i, e := range errors {
		row := fmt.Sprintf("%d", i+2)
		f.SetCellValue(sheet, "A"+row, e.Row)
		f.SetCellValue(sheet, "B"+row, e.Field)
		f.SetCellValue(sheet, "C"+row, sanitizeExcelCell(e.Message))
	}

	return writeWorkbook(f)
}
