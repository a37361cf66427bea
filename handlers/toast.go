package handlers

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"
)

// SetToast sets the HX-Trigger response header so an HTMX client shows a
// toast. If an HX-Trigger header already exists, the toast payload is merged
// into the existing JSON object.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.WithError(err).Warn("toast: existing HX-Trigger is not valid JSON, overwriting")
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		log.WithError(err).Error("toast: failed to marshal HX-Trigger JSON")
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}
