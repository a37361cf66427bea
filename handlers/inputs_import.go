package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"

	"budgetcraft/apperrors"
	"budgetcraft/services"
)

// maxUploadBytes bounds the multipart form held in memory.
const maxUploadBytes = 10 << 20

// uploadedFile opens the "file" part of a multipart request.
func uploadedFile(e *core.RequestEvent) (multipart.File, string, error) {
	if err := e.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "expected a multipart upload")
	}
	file, header, err := e.Request.FormFile("file")
	if err != nil {
		return nil, "", apperrors.WithMessage(apperrors.ErrInvalidInput, "missing file field")
	}
	return file, header.Filename, nil
}

// HandleInputTemplate serves the blank import spreadsheet.
func HandleInputTemplate() func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.GenerateInputTemplate()
		if err != nil {
			return respondError(e, "input_template", err)
		}
		return sendFile(e, contentTypeXLSX, "modelo-insumos.xlsx", data)
	}
}

// HandleInputImportValidate checks an upload without storing anything.
func HandleInputImportValidate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_import_validate", err)
		}
		file, name, err := uploadedFile(e)
		if err != nil {
			return respondError(e, "input_import_validate", err)
		}
		defer file.Close()

		result, err := d.importer().Validate(e.Request.Context(), owner, file, name)
		if err != nil {
			return respondError(e, "input_import_validate", err)
		}
		return e.JSON(http.StatusOK, result)
	}
}

// HandleInputImportCommit imports every row of the upload, or none of them
// when any row is invalid.
func HandleInputImportCommit(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_import_commit", err)
		}
		file, name, err := uploadedFile(e)
		if err != nil {
			return respondError(e, "input_import_commit", err)
		}
		defer file.Close()

		result, err := d.importer().Commit(e.Request.Context(), owner, file, name)
		if err != nil {
			return respondError(e, "input_import_commit", err)
		}
		log.WithFields(log.Fields{
			"owner":    owner,
			"file":     name,
			"imported": result.Imported,
			"failed":   result.Failed,
		}).Info("input import finished")

		status := http.StatusOK
		switch {
		case result.RolledBack:
			status = http.StatusUnprocessableEntity
		case result.Failed > 0:
			SetToast(e, "warning", "Some rows could not be imported")
		default:
			SetToast(e, "success", "Inputs imported")
		}
		return e.JSON(status, result)
	}
}

// HandleInputImportErrors validates an upload and returns its errors as a
// spreadsheet.
func HandleInputImportErrors(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_import_errors", err)
		}
		file, name, err := uploadedFile(e)
		if err != nil {
			return respondError(e, "input_import_errors", err)
		}
		defer file.Close()

		result, err := d.importer().Validate(e.Request.Context(), owner, file, name)
		if err != nil {
			return respondError(e, "input_import_errors", err)
		}
		data, err := services.GenerateErrorReport(result.Errors)
		if err != nil {
			return respondError(e, "input_import_errors", err)
		}
		return sendFile(e, contentTypeXLSX, "erros-importacao.xlsx", data)
	}
}
