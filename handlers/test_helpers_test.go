package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"

	"budgetcraft/events"
	"budgetcraft/services"
	"budgetcraft/store"
	"budgetcraft/testhelpers"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newAuthedEvent builds a request event authenticated as owner, with path
// values set from pathValues (name, value pairs).
func newAuthedEvent(app *pocketbase.PocketBase, owner string, req *http.Request, rec *httptest.ResponseRecorder, pathValues ...string) *core.RequestEvent {
	for i := 0; i+1 < len(pathValues); i += 2 {
		req.SetPathValue(pathValues[i], pathValues[i+1])
	}
	e := newTestRequestEvent(app, req, rec)
	e.Auth = testhelpers.AuthRecord(owner)
	return e
}

var handlerTestNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// newTestDeps wires handlers against a fresh PocketBase app with price
// propagation subscribed on the bus.
func newTestDeps(t *testing.T) (*pocketbase.PocketBase, *Deps) {
	t.Helper()
	app := testhelpers.NewTestApp(t)
	st := store.NewPocketBaseStore(app)
	bus := events.NewBus()
	(&services.CompositionTotalsRecalculator{Store: st}).Register(bus)
	return app, &Deps{
		Store:         st,
		Bus:           bus,
		Export:        services.ExportOptions{Company: "Construtora Teste"},
		MaxImportRows: 100,
		Now:           func() time.Time { return handlerTestNow },
	}
}

// runWithNext triggers mw with final as the next handler in the chain.
func runWithNext(e *core.RequestEvent, mw, final func(*core.RequestEvent) error) error {
	h := &hook.Hook[*core.RequestEvent]{}
	h.BindFunc(mw)
	h.BindFunc(final)
	return h.Trigger(e)
}

// jsonRequest builds a request whose body is v encoded as JSON.
func jsonRequest(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if v != nil {
		if err := json.NewEncoder(&body).Encode(v); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// decodeResponse decodes the recorded JSON body into a value of type T.
func decodeResponse[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\nbody: %s", err, rec.Body.String())
	}
	return out
}

// assertStatus fails the test when the recorded status differs from want.
func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected status %d, got %d\nbody: %s", want, rec.Code, rec.Body.String())
	}
}
