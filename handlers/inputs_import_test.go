package handlers

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"budgetcraft/services"
)

// uploadRequest builds a multipart request carrying content as the "file" part.
func uploadRequest(t *testing.T, target, fileName, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

const validImportCSV = "Nome;Categoria;Unidade;Preço;Fornecedor;Data\n" +
	"Areia média;Material;M3;120,50;Depósito Central;15/02/2025\n" +
	"Servente;Mão de Obra;H;18;;\n"

const invalidImportCSV = "Nome;Categoria;Unidade;Preço\n" +
	"Areia média;Material;M3;120\n" +
	"Brita;Pedra;M3;abc\n"

func TestHandleInputTemplate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/budgetcraft/inputs/import/template", nil)
	rec := httptest.NewRecorder()
	e := newTestRequestEvent(nil, req, rec)

	if err := HandleInputTemplate()(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("template is not a valid workbook: %v", err)
	}
	defer f.Close()
	header, _ := f.GetCellValue("Insumos", "A1")
	if header != "Nome *" {
		t.Errorf("expected first header %q, got %q", "Nome *", header)
	}
}

func TestHandleInputImportValidate(t *testing.T) {
	app, d := newTestDeps(t)

	req := uploadRequest(t, "/api/budgetcraft/inputs/import", "insumos.csv", invalidImportCSV)
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec)

	if err := HandleInputImportValidate(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	got := decodeResponse[services.ValidationResult](t, rec)
	if got.TotalRows != 2 || got.ValidRows != 1 || got.ErrorRows != 1 {
		t.Errorf("expected 1 valid and 1 invalid row, got %+v", got)
	}
	if got.FileName != "insumos.csv" {
		t.Errorf("expected file name insumos.csv, got %q", got.FileName)
	}
}

func TestHandleInputImportCommit(t *testing.T) {
	app, d := newTestDeps(t)

	req := uploadRequest(t, "/api/budgetcraft/inputs/import/commit", "insumos.csv", validImportCSV)
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec)

	if err := HandleInputImportCommit(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	got := decodeResponse[services.ImportResult](t, rec)
	if got.Imported != 2 || got.Failed != 0 || got.RolledBack {
		t.Errorf("expected 2 imported rows, got %+v", got)
	}

	inputs, err := d.Store.ListInputs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list inputs: %v", err)
	}
	if len(inputs) != 2 {
		t.Fatalf("expected 2 stored inputs, got %d", len(inputs))
	}
	for _, in := range inputs {
		if in.Name == "Areia média" && in.UnitPrice != 120.5 {
			t.Errorf("expected Areia média at 120.5, got %v", in.UnitPrice)
		}
	}
}

func TestHandleInputImportCommit_AllOrNothing(t *testing.T) {
	app, d := newTestDeps(t)

	req := uploadRequest(t, "/api/budgetcraft/inputs/import/commit", "insumos.csv", invalidImportCSV)
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec)

	if err := HandleInputImportCommit(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusUnprocessableEntity)
	got := decodeResponse[services.ImportResult](t, rec)
	if !got.RolledBack || got.Imported != 0 {
		t.Errorf("expected a rolled back import, got %+v", got)
	}

	inputs, err := d.Store.ListInputs(context.Background(), "u1")
	if err != nil {
		t.Fatalf("list inputs: %v", err)
	}
	if len(inputs) != 0 {
		t.Errorf("expected nothing stored, got %d inputs", len(inputs))
	}
}

func TestHandleInputImport_BadUploads(t *testing.T) {
	app, d := newTestDeps(t)

	t.Run("unsupported extension", func(t *testing.T) {
		req := uploadRequest(t, "/api/budgetcraft/inputs/import", "insumos.txt", validImportCSV)
		rec := httptest.NewRecorder()
		e := newAuthedEvent(app, "u1", req, rec)

		if err := HandleInputImportValidate(d)(e); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertStatus(t, rec, http.StatusBadRequest)
	})

	t.Run("not multipart", func(t *testing.T) {
		req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/inputs/import", map[string]any{})
		rec := httptest.NewRecorder()
		e := newAuthedEvent(app, "u1", req, rec)

		if err := HandleInputImportValidate(d)(e); err != nil {
			t.Fatalf("handler returned error: %v", err)
		}
		assertStatus(t, rec, http.StatusBadRequest)
	})
}

func TestHandleInputImportErrors(t *testing.T) {
	app, d := newTestDeps(t)

	req := uploadRequest(t, "/api/budgetcraft/inputs/import/errors", "insumos.csv", invalidImportCSV)
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec)

	if err := HandleInputImportErrors(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("report is not a valid workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Erros")
	if err != nil {
		t.Fatalf("read Erros sheet: %v", err)
	}
	if len(rows) < 2 {
		t.Errorf("expected at least one error row, got %v", rows)
	}
}
