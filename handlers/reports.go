package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/models"
	"budgetcraft/services"
)

// HandleBudgetSummary prices the budget tree against the current catalog.
func HandleBudgetSummary(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_summary", err)
		}
		snap, err := d.loadSnapshot(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "budget_summary", err)
		}
		return e.JSON(http.StatusOK, services.Summarize(snap.Budget, snap.Inputs))
	}
}

func HandleBudgetABC(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "budget_abc", err)
		}
		snap, err := d.loadSnapshot(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "budget_abc", err)
		}
		return e.JSON(http.StatusOK, services.ClassifyABC(snap.Budget, snap.Inputs))
	}
}

// loadComparison reads ?first= and ?second= and diffs the two budgets.
func (d *Deps) loadComparison(e *core.RequestEvent) (services.Comparison, models.Budget, models.Budget, error) {
	owner, err := ownerID(e)
	if err != nil {
		return services.Comparison{}, models.Budget{}, models.Budget{}, err
	}
	q := e.Request.URL.Query()
	firstID, secondID := q.Get("first"), q.Get("second")
	if firstID == "" || secondID == "" {
		return services.Comparison{}, models.Budget{}, models.Budget{}, services.ErrBudgetsRequired
	}
	if firstID == secondID {
		return services.Comparison{}, models.Budget{}, models.Budget{}, services.ErrSameBudget
	}
	first, second, err := d.loadPair(e.Request.Context(), owner, firstID, secondID)
	if err != nil {
		return services.Comparison{}, models.Budget{}, models.Budget{}, err
	}
	c, err := services.CompareBudgets(first, second)
	return c, first, second, err
}

func HandleCompare(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		c, _, _, err := d.loadComparison(e)
		if err != nil {
			return respondError(e, "compare", err)
		}
		return e.JSON(http.StatusOK, c)
	}
}

func HandleDashboard(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "dashboard", err)
		}
		data, err := d.loadOwnerData(e.Request.Context(), owner)
		if err != nil {
			return respondError(e, "dashboard", err)
		}
		return e.JSON(http.StatusOK, services.BuildDashboard(data.Inputs, data.Compositions, data.Budgets))
	}
}
