package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/models"
	"budgetcraft/services"
)

type compositionItemRequest struct {
	InputID    string  `json:"input_id" validate:"required_without=LegacyCost"`
	Quantity   float64 `json:"quantity" validate:"gt=0"`
	LegacyCost float64 `json:"legacy_cost" validate:"gte=0"`
}

type compositionRequest struct {
	Name        string                   `json:"name" validate:"required,max=200"`
	Description string                   `json:"description" validate:"max=2000"`
	Unit        string                   `json:"unit" validate:"required,unit"`
	Items       []compositionItemRequest `json:"items" validate:"dive"`
}

// compositionView is a composition with the cost it would have if bound now.
type compositionView struct {
	models.Composition
	UnitCost float64            `json:"unit_cost"`
	Legacy   bool               `json:"legacy"`
	Warnings []services.Warning `json:"warnings,omitempty"`
}

func newCompositionView(c models.Composition, idx services.InputIndex) compositionView {
	cost, warns := services.CompositionValue(c, idx)
	return compositionView{Composition: c, UnitCost: cost, Legacy: c.IsLegacy(), Warnings: warns}
}

func (r compositionRequest) toModel(owner, id string) models.Composition {
	unit, _ := models.ParseUnit(r.Unit)
	items := make([]models.CompositionItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, models.CompositionItem{InputID: it.InputID, Quantity: it.Quantity, LegacyCost: it.LegacyCost})
	}
	return models.Composition{ID: id, OwnerID: owner, Name: r.Name, Description: r.Description, Unit: unit, Items: items}
}

func HandleCompositionList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "composition_list", err)
		}
		ctx := e.Request.Context()
		comps, err := d.Store.ListCompositions(ctx, owner)
		if err != nil {
			return respondError(e, "composition_list", err)
		}
		inputs, err := d.Store.ListInputs(ctx, owner)
		if err != nil {
			return respondError(e, "composition_list", err)
		}
		idx := services.IndexInputs(inputs)
		comps = services.FilterCompositions(comps, e.Request.URL.Query().Get("q"))
		views := make([]compositionView, 0, len(comps))
		for _, c := range comps {
			views = append(views, newCompositionView(c, idx))
		}
		return e.JSON(http.StatusOK, views)
	}
}

// HandleCompositionGet returns the composition priced against the current
// catalog.
func HandleCompositionGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "composition_get", err)
		}
		ctx := e.Request.Context()
		c, err := d.Store.GetComposition(ctx, owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "composition_get", err)
		}
		inputs, err := d.Store.ListInputs(ctx, owner)
		if err != nil {
			return respondError(e, "composition_get", err)
		}
		return e.JSON(http.StatusOK, newCompositionView(c, services.IndexInputs(inputs)))
	}
}

func HandleCompositionCreate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "composition_create", err)
		}
		var req compositionRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "composition_create", err)
		}
		c := req.toModel(owner, "")
		if err := d.catalog().SaveComposition(e.Request.Context(), &c); err != nil {
			return respondError(e, "composition_create", err)
		}
		return e.JSON(http.StatusCreated, c)
	}
}

// HandleCompositionUpdate replaces the composition. Budgets that already bound
// it keep their frozen copy.
func HandleCompositionUpdate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "composition_update", err)
		}
		var req compositionRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "composition_update", err)
		}
		ctx := e.Request.Context()
		current, err := d.Store.GetComposition(ctx, owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "composition_update", err)
		}
		c := req.toModel(owner, current.ID)
		c.StoredTotal = current.StoredTotal
		c.Created = current.Created
		if err := d.catalog().SaveComposition(ctx, &c); err != nil {
			return respondError(e, "composition_update", err)
		}
		return e.JSON(http.StatusOK, c)
	}
}

func HandleCompositionDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "composition_delete", err)
		}
		if err := d.Store.DeleteComposition(e.Request.Context(), owner, e.Request.PathValue("id")); err != nil {
			return respondError(e, "composition_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}
