package handlers

import (
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/apperrors"
	"budgetcraft/models"
	"budgetcraft/services"
)

type budgetCreateRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Client      string `json:"client" validate:"max=200"`
	Address     string `json:"address" validate:"max=500"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status      string `json:"status" validate:"omitempty,budget_status"`
}

// budgetUpdateRequest only changes the fields that are present.
type budgetUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Client      *string `json:"client" validate:"omitempty,max=200"`
	Address     *string `json:"address" validate:"omitempty,max=500"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Status      *string `json:"status" validate:"omitempty,budget_status"`
}

type bdiRequest struct {
	Profit     float64 `json:"profit" validate:"gte=0"`
	Taxes      float64 `json:"taxes" validate:"gte=0"`
	Financial  float64 `json:"financial" validate:"gte=0"`
	Guarantees float64 `json:"guarantees" validate:"gte=0"`
}

// budgetView is a budget with its markup applied to the cached base total.
type budgetView struct {
	models.Budget
	Markup services.Markup `json:"markup"`
}

func newBudgetView(b models.Budget) budgetView {
	return budgetView{Budget: b, Markup: services.ApplyBDI(b.TotalValue, b.BDI)}
}

// saveBudget validates b and stores it with a refreshed cached total.
func (d *Deps) saveBudget(e *core.RequestEvent, b models.Budget) (models.Budget, error) {
	b = services.PrepareForSave(b)
	if err := b.Validate(); err != nil {
		return b, apperrors.Validation(err)
	}
	if err := d.Store.SaveBudget(e.Request.Context(), &b); err != nil {
		return b, err
	}
	return b, nil
}

func HandleBudgetList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_list", err)
		}
		budgets, err := d.Store.ListBudgets(e.Request.Context(), owner)
		if err != nil {
			return respondError(e, "budget_list", err)
		}
		budgets = services.FilterBudgets(budgets, e.Request.URL.Query().Get("q"))
		cards := make([]services.BudgetCard, 0, len(budgets))
		for _, b := range budgets {
			cards = append(cards, services.NewBudgetCard(b))
		}
		return e.JSON(http.StatusOK, cards)
	}
}

func HandleBudgetGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_get", err)
		}
		b, err := d.Store.GetBudget(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "budget_get", err)
		}
		return e.JSON(http.StatusOK, newBudgetView(b))
	}
}

// HandleBudgetCreate starts an empty budget. New budgets are under review
// unless another status is given.
func HandleBudgetCreate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_create", err)
		}
		var req budgetCreateRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "budget_create", err)
		}
		b := models.Budget{
			OwnerID:     owner,
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
			Client:      req.Client,
			Address:     req.Address,
			Date:        req.Date,
			Status:      models.BudgetStatus(req.Status),
			Packages:    []models.Package{},
			Instances:   []models.CompositionInstance{},
		}
		if b.Status == "" {
			b.Status = models.StatusUnderReview
		}
		if b.Date == "" {
			b.Date = d.now().Format("2006-01-02")
		}
		saved, err := d.saveBudget(e, b)
		if err != nil {
			return respondError(e, "budget_create", err)
		}
		return e.JSON(http.StatusCreated, newBudgetView(saved))
	}
}

func HandleBudgetUpdate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_update", err)
		}
		var req budgetUpdateRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "budget_update", err)
		}
		b, err := d.Store.GetBudget(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "budget_update", err)
		}
		if req.Name != nil {
			b.Name = strings.TrimSpace(*req.Name)
		}
		if req.Description != nil {
			b.Description = *req.Description
		}
		if req.Client != nil {
			b.Client = *req.Client
		}
		if req.Address != nil {
			b.Address = *req.Address
		}
		if req.Date != nil {
			b.Date = *req.Date
		}
		if req.Status != nil {
			b.Status = models.BudgetStatus(*req.Status)
		}
		saved, err := d.saveBudget(e, b)
		if err != nil {
			return respondError(e, "budget_update", err)
		}
		return e.JSON(http.StatusOK, newBudgetView(saved))
	}
}

func HandleBudgetDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_delete", err)
		}
		if err := d.Store.DeleteBudget(e.Request.Context(), owner, e.Request.PathValue("id")); err != nil {
			return respondError(e, "budget_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleBudgetBDISet replaces the budget's markup configuration. All four
// factors may be zero, which is still a configured BDI.
func HandleBudgetBDISet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_bdi", err)
		}
		var req bdiRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "budget_bdi", err)
		}
		b, err := d.Store.GetBudget(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "budget_bdi", err)
		}
		b.BDI = &models.BDIConfig{
			Profit:     req.Profit,
			Taxes:      req.Taxes,
			Financial:  req.Financial,
			Guarantees: req.Guarantees,
		}
		saved, err := d.saveBudget(e, b)
		if err != nil {
			return respondError(e, "budget_bdi", err)
		}
		return e.JSON(http.StatusOK, newBudgetView(saved))
	}
}

func HandleBudgetBDIClear(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_bdi_clear", err)
		}
		b, err := d.Store.GetBudget(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "budget_bdi_clear", err)
		}
		b.BDI = nil
		saved, err := d.saveBudget(e, b)
		if err != nil {
			return respondError(e, "budget_bdi_clear", err)
		}
		return e.JSON(http.StatusOK, newBudgetView(saved))
	}
}
