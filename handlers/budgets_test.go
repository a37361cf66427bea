package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"budgetcraft/models"
	"budgetcraft/services"
	"budgetcraft/testhelpers"
)

func TestHandleBudgetCreate_Defaults(t *testing.T) {
	app, d := newTestDeps(t)

	req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets", map[string]any{
		"name": "Residência Silva", "client": "João Silva",
	})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec)

	if err := HandleBudgetCreate(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusCreated)
	got := decodeResponse[budgetView](t, rec)
	if got.Status != models.StatusUnderReview {
		t.Errorf("expected status %q, got %q", models.StatusUnderReview, got.Status)
	}
	if got.Date != "2025-03-01" {
		t.Errorf("expected date 2025-03-01, got %q", got.Date)
	}
	if got.OwnerID != "u1" || got.ID == "" {
		t.Errorf("expected a stored budget owned by u1, got %+v", got.Budget)
	}
	if got.Markup.Configured {
		t.Error("expected no BDI on a new budget")
	}
}

func TestHandleBudgetCreate_InvalidStatus(t *testing.T) {
	app, d := newTestDeps(t)

	req := jsonRequest(t, http.MethodPost, "/api/budgetcraft/budgets", map[string]any{
		"name": "Obra", "status": "Paused",
	})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec)

	if err := HandleBudgetCreate(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusBadRequest)
	testhelpers.AssertBodyContains(t, rec.Body.String(), "must be a known budget status")
}

func TestHandleBudgetUpdate_PartialFields(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")

	req := jsonRequest(t, http.MethodPatch, "/api/budgetcraft/budgets/"+b.ID, map[string]any{
		"status": "Approved",
	})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec, "id", b.ID)

	if err := HandleBudgetUpdate(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	got := decodeResponse[budgetView](t, rec)
	if got.Status != models.StatusApproved || got.Name != "Obra" {
		t.Errorf("expected only the status to change, got %+v", got.Budget)
	}
	if len(got.Packages) != 1 {
		t.Errorf("expected the tree to be kept, got %d packages", len(got.Packages))
	}
}

func TestHandleBudgetBDI_SetAndClear(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")

	req := jsonRequest(t, http.MethodPut, "/api/budgetcraft/budgets/"+b.ID+"/bdi", map[string]any{
		"profit": 0, "taxes": 0, "financial": 0, "guarantees": 0,
	})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec, "id", b.ID)
	if err := HandleBudgetBDISet(d)(e); err != nil {
		t.Fatalf("set returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	got := decodeResponse[budgetView](t, rec)
	if !got.Markup.Configured || got.BDI == nil {
		t.Error("expected an all-zero BDI to count as configured")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/budgetcraft/budgets/"+b.ID+"/bdi", nil)
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", b.ID)
	if err := HandleBudgetBDIClear(d)(e); err != nil {
		t.Fatalf("clear returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	got = decodeResponse[budgetView](t, rec)
	if got.Markup.Configured || got.BDI != nil {
		t.Error("expected BDI to be removed")
	}
}

func TestHandleBudgetBDI_NegativeFactor(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Obra")

	req := jsonRequest(t, http.MethodPut, "/api/budgetcraft/budgets/"+b.ID+"/bdi", map[string]any{"profit": -5})
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec, "id", b.ID)

	if err := HandleBudgetBDISet(d)(e); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusBadRequest)
}

func TestHandleBudgetListAndDelete(t *testing.T) {
	app, d := newTestDeps(t)
	b := testhelpers.CreateTestBudget(t, app, "u1", "Residência")
	testhelpers.CreateTestBudget(t, app, "u1", "Galpão")
	testhelpers.CreateTestBudget(t, app, "u2", "Residência vizinha")

	req := httptest.NewRequest(http.MethodGet, "/api/budgetcraft/budgets?q=resid", nil)
	rec := httptest.NewRecorder()
	e := newAuthedEvent(app, "u1", req, rec)
	if err := HandleBudgetList(d)(e); err != nil {
		t.Fatalf("list returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusOK)
	cards := decodeResponse[[]services.BudgetCard](t, rec)
	if len(cards) != 1 || cards[0].ID != b.ID {
		t.Fatalf("expected one matching card, got %+v", cards)
	}
	if cards[0].BDILabel != "Não aplicado" {
		t.Errorf("expected BDI label %q, got %q", "Não aplicado", cards[0].BDILabel)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/budgetcraft/budgets/"+b.ID, nil)
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", b.ID)
	if err := HandleBudgetDelete(d)(e); err != nil {
		t.Fatalf("delete returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusNoContent)

	req = httptest.NewRequest(http.MethodGet, "/api/budgetcraft/budgets/"+b.ID, nil)
	rec = httptest.NewRecorder()
	e = newAuthedEvent(app, "u1", req, rec, "id", b.ID)
	if err := HandleBudgetGet(d)(e); err != nil {
		t.Fatalf("get returned error: %v", err)
	}
	assertStatus(t, rec, http.StatusNotFound)
}
