package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/models"
	"budgetcraft/testhelpers"
)

func TestHandlePackageAdd(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")

	req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets/"+b.ID+"/packages", map[string]any{"name": "Estrutura"})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec, "id", b.ID)

	if err := HandlePackageAdd(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusCreated)
	got := decodeResponse[struct {
		Budget  budgetView     `json:"budget"`
		Created models.Package `json:"created"`
	}](t, rec)
	if len(got.Budget.Packages) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(got.Budget.Packages))
	}
	if got.Created.Name != "Estrutura" || got.Created.Order != 1 || got.Created.ID == "" {
		t.Errorf("unexpected created package %+v", got.Created)
	}
}

func TestHandleTreeMutations_Errors(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")

	tests := []struct {
		name       string
		handler    func(*Deps) func(*core.RequestEvent) error
		body       map[string]any
		pathValues []string
		wantStatus int
		wantCode   string
	}{
		{"rename missing package", HandlePackageRename, map[string]any{"name": "X"}, []string{"pkgId", "nope"}, http.StatusNotFound, "PACKAGE_NOT_FOUND"},
		{"subgroup in missing package", HandleSubgroupAdd, map[string]any{"name": "X"}, []string{"pkgId", "nope"}, http.StatusNotFound, "PACKAGE_NOT_FOUND"},
		{"delete missing subgroup", HandleSubgroupDelete, nil, []string{"pkgId", "pkg-1", "sgId", "nope"}, http.StatusNotFound, "SUBGROUP_NOT_FOUND"},
		{"bad direction", HandlePackageMove, map[string]any{"direction": "left"}, []string{"pkgId", "pkg-1"}, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"blank package name", HandlePackageAdd, map[string]any{"name": ""}, nil, http.StatusBadRequest, "VALIDATION_FAILED"},
		{"quantity of missing instance", HandleInstanceQuantity, map[string]any{"quantity": 2}, []string{"instId", "nope"}, http.StatusNotFound, "INSTANCE_NOT_FOUND"},
		{"zero quantity", HandleInstanceQuantity, map[string]any{"quantity": 0}, []string{"instId", "nope"}, http.StatusBadRequest, "VALIDATION_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets/"+b.ID, tt.body)
			rec := httptest.NewRecorder()
			e := newAuthedEvent(app, "u1", req, rec, append([]string{"id", b.ID}, tt.pathValues...)...)

			if err := tt.handler(d)(e); err != nil {
				t.Fatalf("handler returned error: %v", err)
			}
			assertStatus(t, rec, tt.wantStatus)
			if got := decodeResponse[errorBody](t, rec); got.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, got.Code)
			}
		})
	}
}

func TestHandleInstanceBind_FreezesPriceAndUpdatesTotal(t *testing.T) {
	app, d := newTestDeps(t)
	ctx := context.Background()
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")
	in := testhelpers.CreateTestInput(t, app, "u1", "Pedreiro", models.CategoryLabor, 10)
	comp := testhelpers.CreateTestComposition(t, app, "u1", "Escavação manual", models.CompositionItem{InputID: in.ID, Quantity: 3})

	// bind 2 units at today's price: 3 × 10 per unit
	req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets/"+b.ID+"/instances", map[string]any{
		"package_id": "pkg-1", "subgroup_id": "sg-1", "composition_id": comp.ID, "quantity": 2,
	})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec, "id", b.ID)
	if err := HandleInstanceBind(d)(e); err != nil {
		t.Fatalf("bind returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusCreated)
	bound := decodeResponse[struct {
		Budget  budgetView                 `json:"budget"`
		Created models.CompositionInstance `json:"created"`
	}](t, rec)
	if bound.Created.UnitCost != 30 || bound.Created.TotalCost != 60 {
		t.Fatalf("expected unit cost 30 and total 60, got %+v", bound.Created)
	}
	if bound.Budget.TotalValue != 60 {
		t.Errorf("expected budget total 60, got %v", bound.Budget.TotalValue)
	}
	instID := bound.Created.ID

	// a later price change leaves the bound instance alone
	req = jsonRequest(t, http.MethodPost, "/api/budgetcraft/inputs/"+in.ID+"/prices", map[string]any{
		"price": 50, "date": "2099-01-01",
	})
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", in.ID)
	if err := HandleInputPriceAdd(d)(e); err != nil {
		t.Fatalf("price returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)

	stored, err := d.Store.GetBudget(ctx, "u1", b.ID)
	if err != nil {
		t.Fatalf("get budget: %v", err)
	}
	if stored.Instances[0].UnitCost != 30 || stored.TotalValue != 60 {
		t.Errorf("expected frozen cost 30 and total 60, got %v and %v", stored.Instances[0].UnitCost, stored.TotalValue)
	}

	// quantity changes reuse the frozen unit cost
	req = jsonRequest(t, http.MethodPatch, "/api/budgetcraft/budgets/"+b.ID+"/instances/"+instID, map[string]any{"quantity": 4})
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", b.ID, "instId", instID)
	if err := HandleInstanceQuantity(d)(e); err != nil {
		t.Fatalf("quantity returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	if got := decodeResponse[treeResponse](t, rec); got.Budget.TotalValue != 120 {
		t.Errorf("expected total 120, got %v", got.Budget.TotalValue)
	}

	// resync picks up the new price
	req = httptest.NewRequest(http.MethodPost, "/api/budgetcraft/budgets/"+b.ID+"/instances/"+instID+"/resync", nil)
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", b.ID, "instId", instID)
	if err := HandleInstanceResync(d)(e); err != nil {
		t.Fatalf("resync returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	if got := decodeResponse[treeResponse](t, rec); got.Budget.TotalValue != 600 {
		t.Errorf("expected total 600 after resync, got %v", got.Budget.TotalValue)
	}

	// deleting the package cascades to its instances
	req = httptest.NewRequest(http.MethodDelete, "/api/budgetcraft/budgets/"+b.ID+"/packages/pkg-1", nil)
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", b.ID, "pkgId", "pkg-1")
	if err := HandlePackageDelete(d)(e); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	got := decodeResponse[treeResponse](t, rec)
	if len(got.Budget.Packages) != 0 || len(got.Budget.Instances) != 0 || got.Budget.TotalValue != 0 {
		t.Errorf("expected an empty budget, got %+v", got.Budget.Budget)
	}
}

func TestHandleInstanceBind_UnknownComposition(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")

	req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets/"+b.ID+"/instances", map[string]any{
		"package_id": "pkg-1", "subgroup_id": "sg-1", "composition_id": "missing", "quantity": 1,
	})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec, "id", b.ID)

	if err := HandleInstanceBind(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusNotFound)
	testhelpers.AssertBodyContains(t, rec.Body.String(), "Composition not found")
}

func TestHandleSubgroupAddAndMove(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")

	req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets/"+b.ID+"/packages/pkg-1/subgroups", map[string]any{"name": "Sapatas"})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec, "id", b.ID, "pkgId", "pkg-1")
	if err := HandleSubgroupAdd(d)(e); err != nil {
		t.Fatalf("add returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusCreated)

	req = jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets/"+b.ID+"/packages/pkg-1/subgroups/sg-1/move", map[string]any{"direction": "down"})
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", b.ID, "pkgId", "pkg-1", "sgId", "sg-1")
	if err := HandleSubgroupMove(d)(e); err != nil {
		t.Fatalf("move returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	got := decodeResponse[treeResponse](t, rec)
	sgs := got.Budget.Packages[0].Subgroups
	if len(sgs) != 2 || sgs[0].Name != "Sapatas" || sgs[1].ID != "sg-1" || sgs[1].Order != 1 {
		t.Errorf("expected Sapatas first and sg-1 second, got %+v", sgs)
	}
}
