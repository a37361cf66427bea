package handlers

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"

	"budgetcraft/apperrors"
	"budgetcraft/services"
)

// exportFormat reads the {format} path value; only excel and pdf exist.
func exportFormat(e *core.RequestEvent) (string, error) {
	switch f := e.Request.PathValue("format"); f {
	case "excel", "pdf":
		return f, nil
	default:
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, fmt.Sprintf("unsupported export format %q", f))
	}
}

func exportFile(e *core.RequestEvent, format, base string, data []byte) error {
	if format == "pdf" {
		return sendFile(e, contentTypePDF, base+".pdf", data)
	}
	return sendFile(e, contentTypeXLSX, base+".xlsx", data)
}

// HandleBudgetExport renders the priced budget tree as a spreadsheet or PDF.
func HandleBudgetExport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		format, err := exportFormat(e)
		if err != nil {
			return respondError(e, "budget_export", err)
		}
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_export", err)
		}
		snap, err := d.loadSnapshot(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "budget_export", err)
		}

		data := services.BuildBudgetExport(services.Summarize(snap.Budget, snap.Inputs), d.now())
		var body []byte
		if format == "pdf" {
			body, err = services.GeneratePDF(data, d.Export)
		} else {
			body, err = services.GenerateExcel(data)
		}
		if err != nil {
			return respondError(e, "budget_export", err)
		}
		log.WithFields(log.Fields{"budget": snap.Budget.ID, "format": format}).Debug("budget exported")
		return exportFile(e, format, "orcamento-"+sanitizeFilename(snap.Budget.Name), body)
	}
}

func HandleABCExport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		format, err := exportFormat(e)
		if err != nil {
			return respondError(e, "abc_export", err)
		}
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "abc_export", err)
		}
		snap, err := d.loadSnapshot(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "abc_export", err)
		}

		report := services.ClassifyABC(snap.Budget, snap.Inputs)
		var body []byte
		if format == "pdf" {
			body, err = services.GenerateABCPDF(report, d.now(), d.Export)
		} else {
			body, err = services.GenerateABCExcel(report, d.now())
		}
		if err != nil {
			return respondError(e, "abc_export", err)
		}
		return exportFile(e, format, "curva-abc-"+sanitizeFilename(snap.Budget.Name), body)
	}
}

func HandleCompareExport(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		c, first, second, err := d.loadComparison(e)
		if err != nil {
			return respondError(e, "compare_export", err)
		}
		body, err := services.GenerateComparisonExcel(c, d.now())
		if err != nil {
			return respondError(e, "compare_export", err)
		}
		name := fmt.Sprintf("comparativo-%s-x-%s", sanitizeFilename(first.Name), sanitizeFilename(second.Name))
		return exportFile(e, "excel", name, body)
	}
}
