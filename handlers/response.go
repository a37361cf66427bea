package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"

	"budgetcraft/apperrors"
	"budgetcraft/store"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// respondError maps err to its client-facing form. Server-side failures are
// logged under scope; their internal cause never reaches the client.
func respondError(e *core.RequestEvent, scope string, err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) && errors.Is(err, store.ErrNotFound) {
		err = apperrors.Wrap(apperrors.ErrNotFound, err)
	}
	appErr = apperrors.From(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		log.Errorf("%s: %v", scope, err)
	} else {
		log.Debugf("%s: %v", scope, err)
	}
	return e.JSON(appErr.StatusCode, errorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// ownerID returns the authenticated user's id. Routes are guarded by
// apis.RequireAuth, so an empty value only happens in misconfigured setups.
func ownerID(e *core.RequestEvent) (string, error) {
	if e.Auth == nil || e.Auth.Id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return e.Auth.Id, nil
}

// sendFile writes body as a download.
func sendFile(e *core.RequestEvent, contentType, filename string, body []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(body)
	return err
}

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

// sanitizeFilename removes characters that are unsafe for filenames.
func sanitizeFilename(s string) string {
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "/", "-")
	s = strings.ReplaceAll(s, "\\", "-")
	s = strings.ReplaceAll(s, ":", "-")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}
