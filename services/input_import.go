package services

import (
	"context"
	"fmt"
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"budgetcraft/models"
	"budgetcraft/store"
)

// ImportResult holds the outcome of committing an input import.
type ImportResult struct {
	TotalRows  int              `json:"total_rows"`
	Imported   int              `json:"imported"`
	Failed     int              `json:"failed"`
	Errors     []ImportRowError `json:"errors,omitempty"`
	RolledBack bool             `json:"rolled_back"`
}

// ImportRowError represents a failure to insert a specific row.
type ImportRowError struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InputImporter validates uploaded catalog files and creates the inputs
// they describe through the Catalog rules.
type InputImporter struct {
	Catalog *Catalog
	MaxRows int
	Now     func() time.Time
}

func NewInputImporter(s store.Store, maxRows int) *InputImporter {
	return &InputImporter{Catalog: NewCatalog(s), MaxRows: maxRows, Now: time.Now}
}

// Validate parses file and checks every row against the owner's catalog.
func (imp *InputImporter) Validate(ctx context.Context, ownerID string, file io.Reader, fileName string) (*ValidationResult, error) {
	headers, rows, err := ParseImportFile(file, fileName, imp.MaxRows)
	if err != nil {
		return nil, err
	}
	existing, err := imp.Catalog.Store.ListInputs(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	result := ValidateInputRows(headers, rows, existing, imp.now())
	result.FileName = fileName
	return result, nil
}

// Commit re-validates file and, when no row has errors, creates one input per
// row with its initial price-history entry. A file with any invalid row is
// not imported at all.
func (imp *InputImporter) Commit(ctx context.Context, ownerID string, file io.Reader, fileName string) (*ImportResult, error) {
	checked, err := imp.Validate(ctx, ownerID, file, fileName)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{TotalRows: checked.TotalRows}
	if len(checked.Errors) > 0 {
		result.Failed = checked.ErrorRows
		result.Errors = toImportRowErrors(checked.Errors)
		result.RolledBack = true
		return result, nil
	}

	for _, row := range checked.Rows {
		in := &models.Input{
			OwnerID:  ownerID,
			Name:     row.Name,
			Category: row.Category,
			Unit:     row.Unit,
		}
		initial := models.PricePoint{Price: row.Price, Date: row.Date, Supplier: row.Supplier}
		if err := imp.Catalog.CreateInput(ctx, in, initial); err != nil {
			log.WithFields(log.Fields{"owner": ownerID, "row": row.Row}).Warnf("input_import: %v", err)
			result.Failed++
			result.Errors = append(result.Errors, ImportRowError{
				Row:     row.Row,
				Message: fmt.Sprintf("Failed to save: %s", err.Error()),
			})
			continue
		}
		result.Imported++
	}
	return result, nil
}

func (imp *InputImporter) now() time.Time {
	if imp.Now == nil {
		return time.Now()
	}
	return imp.Now()
}

// toImportRowErrors converts ValidationErrors to ImportRowErrors.
func toImportRowErrors(ve []ValidationError) []ImportRowError {
	result := make([]ImportRowError, len(ve))
	for i, e := range ve {
		result[i] = ImportRowError{
			Row:     e.Row,
			Field:   e.Field,
			Message: e.Message,
		}
	}
	return result
}
