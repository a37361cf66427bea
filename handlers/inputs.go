package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/models"
	"budgetcraft/services"
)

type inputRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Category string  `json:"category" validate:"required,category"`
	Unit     string  `json:"unit" validate:"required,unit"`
	Price    float64 `json:"price" validate:"gte=0"`
	Supplier string  `json:"supplier" validate:"max=200"`
	Date     string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type inputUpdateRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Category string `json:"category" validate:"required,category"`
	Unit     string `json:"unit" validate:"required,unit"`
}

type priceRequest struct {
	Price    float64 `json:"price" validate:"gte=0"`
	Supplier string  `json:"supplier" validate:"max=200"`
	Date     string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

type priceResponse struct {
	Input    models.Input `json:"input"`
	Problems []string     `json:"problems,omitempty"`
}

// priceDate parses an optional YYYY-MM-DD date, defaulting to today.
func priceDate(s string, now time.Time) time.Time {
	if s == "" {
		return now.UTC()
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return now.UTC()
	}
	return d
}

// HandleInputList returns the owner's inputs, optionally filtered by ?q=.
func HandleInputList(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_list", err)
		}
		inputs, err := d.Store.ListInputs(e.Request.Context(), owner)
		if err != nil {
			return respondError(e, "input_list", err)
		}
		return e.JSON(http.StatusOK, services.FilterInputs(inputs, e.Request.URL.Query().Get("q")))
	}
}

func HandleInputGet(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_get", err)
		}
		in, err := d.Store.GetInput(e.Request.Context(), owner, e.Request.PathValue("id"))
		if err != nil {
			return respondError(e, "input_get", err)
		}
		return e.JSON(http.StatusOK, in)
	}
}

// HandleInputCreate stores a new input with its initial price as the first
// history entry.
func HandleInputCreate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_create", err)
		}
		var req inputRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "input_create", err)
		}
		category, _ := models.ParseCategory(req.Category)
		unit, _ := models.ParseUnit(req.Unit)
		in := models.Input{OwnerID: owner, Name: req.Name, Category: category, Unit: unit}
		initial := models.PricePoint{
			Price:    req.Price,
			Date:     priceDate(req.Date, d.now()),
			Supplier: strings.TrimSpace(req.Supplier),
		}
		if err := d.catalog().CreateInput(e.Request.Context(), &in, initial); err != nil {
			return respondError(e, "input_create", err)
		}
		return e.JSON(http.StatusCreated, in)
	}
}

// HandleInputUpdate changes name, category and unit. Prices are only changed
// through the price history endpoint.
func HandleInputUpdate(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_update", err)
		}
		var req inputUpdateRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "input_update", err)
		}
		category, _ := models.ParseCategory(req.Category)
		unit, _ := models.ParseUnit(req.Unit)
		in := models.Input{ID: e.Request.PathValue("id"), OwnerID: owner, Name: req.Name, Category: category, Unit: unit}
		if err := d.catalog().UpdateInput(e.Request.Context(), &in); err != nil {
			return respondError(e, "input_update", err)
		}
		saved, err := d.Store.GetInput(e.Request.Context(), owner, in.ID)
		if err != nil {
			return respondError(e, "input_update", err)
		}
		return e.JSON(http.StatusOK, saved)
	}
}

func HandleInputDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_delete", err)
		}
		if err := d.catalog().DeleteInput(e.Request.Context(), owner, e.Request.PathValue("id")); err != nil {
			return respondError(e, "input_delete", err)
		}
		return e.NoContent(http.StatusNoContent)
	}
}

// HandleInputPriceAdd appends a price history entry. Composition totals are
// recalculated by the bus subscribers; their failures are reported alongside
// the saved input and never undo the price change.
func HandleInputPriceAdd(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner, err := ownerID(e)
		if err != nil {
			return respondError(e, "input_price", err)
		}
		var req priceRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "input_price", err)
		}
		p := models.PricePoint{
			Price:    req.Price,
			Date:     priceDate(req.Date, d.now()),
			Supplier: strings.TrimSpace(req.Supplier),
		}
		res, err := services.NewPriceUpdater(d.Store, d.Bus).UpdateInputPrice(e.Request.Context(), owner, e.Request.PathValue("id"), p)
		if err != nil {
			return respondError(e, "input_price", err)
		}
		problems := res.Problems()
		if len(problems) > 0 {
			SetToast(e, "warning", "Price saved, but some compositions were not updated")
		}
		return e.JSON(http.StatusOK, priceResponse{Input: res.Input, Problems: problems})
	}
}
