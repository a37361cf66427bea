package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/apperrors"
	"budgetcraft/models"
	"budgetcraft/services"
)

type nameRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type moveRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type bindRequest struct {
	PackageID     string   `json:"package_id" validate:"required"`
	SubgroupID    string   `json:"subgroup_id" validate:"required"`
	CompositionID string   `json:"composition_id" validate:"required"`
	Quantity      float64  `json:"quantity" validate:"gt=0"`
	UnitCost      *float64 `json:"unit_cost" validate:"omitempty,gte=0"`
}

type quantityRequest struct {
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

// treeResponse is the saved budget plus whatever the mutation created.
type treeResponse struct {
	Budget   budgetView         `json:"budget"`
	Created  any                `json:"created,omitempty"`
	Warnings []services.Warning `json:"warnings,omitempty"`
}

// treeMutation edits a loaded budget and returns the new budget, the created
// node (if any) and costing warnings.
type treeMutation func(s snapshot) (models.Budget, any, []services.Warning, error)

// mutateBudget loads the budget with the owner's catalog, applies fn to a
// copy and saves the result. Concurrent edits are last-write-wins.
func (d *Deps) mutateBudget(e *core.RequestEvent, scope string, status int, fn treeMutation) error {
	owner, err := ownerID(e)
	if err != nil {
		return respondError(e, scope, err)
	}
	snap, err := d.loadSnapshot(e.Request.Context(), owner, e.Request.PathValue("id"))
	if err != nil {
		return respondError(e, scope, err)
	}
	updated, created, warns, err := fn(snap)
	if err != nil {
		return respondError(e, scope, err)
	}
	saved, err := d.saveBudget(e, updated)
	if err != nil {
		return respondError(e, scope, err)
	}
	return e.JSON(status, treeResponse{Budget: newBudgetView(saved), Created: created, Warnings: warns})
}

func HandlePackageAdd(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req nameRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "package_add", err)
		}
		return d.mutateBudget(e, "package_add", http.StatusCreated, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, p, err := services.AddPackage(s.Budget, req.Name)
			return b, p, nil, err
		})
	}
}

func HandlePackageRename(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req nameRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "package_rename", err)
		}
		pkgID := e.Request.PathValue("pkgId")
		return d.mutateBudget(e, "package_rename", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.RenamePackage(s.Budget, pkgID, req.Name)
			return b, nil, nil, err
		})
	}
}

// HandlePackageDelete removes the package with its subgroups and instances.
func HandlePackageDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		pkgID := e.Request.PathValue("pkgId")
		return d.mutateBudget(e, "package_delete", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.DeletePackage(s.Budget, pkgID)
			return b, nil, nil, err
		})
	}
}

func HandlePackageMove(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req moveRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "package_move", err)
		}
		pkgID := e.Request.PathValue("pkgId")
		return d.mutateBudget(e, "package_move", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.MovePackage(s.Budget, pkgID, services.Direction(req.Direction))
			return b, nil, nil, err
		})
	}
}

func HandleSubgroupAdd(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req nameRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "subgroup_add", err)
		}
		pkgID := e.Request.PathValue("pkgId")
		return d.mutateBudget(e, "subgroup_add", http.StatusCreated, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, sg, err := services.AddSubgroup(s.Budget, pkgID, req.Name)
			return b, sg, nil, err
		})
	}
}

func HandleSubgroupRename(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req nameRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "subgroup_rename", err)
		}
		pkgID, sgID := e.Request.PathValue("pkgId"), e.Request.PathValue("sgId")
		return d.mutateBudget(e, "subgroup_rename", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.RenameSubgroup(s.Budget, pkgID, sgID, req.Name)
			return b, nil, nil, err
		})
	}
}

func HandleSubgroupDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		pkgID, sgID := e.Request.PathValue("pkgId"), e.Request.PathValue("sgId")
		return d.mutateBudget(e, "subgroup_delete", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.DeleteSubgroup(s.Budget, pkgID, sgID)
			return b, nil, nil, err
		})
	}
}

func HandleSubgroupMove(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req moveRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "subgroup_move", err)
		}
		pkgID, sgID := e.Request.PathValue("pkgId"), e.Request.PathValue("sgId")
		return d.mutateBudget(e, "subgroup_move", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.MoveSubgroup(s.Budget, pkgID, sgID, services.Direction(req.Direction))
			return b, nil, nil, err
		})
	}
}

// HandleInstanceBind freezes a composition into a subgroup at today's prices.
func HandleInstanceBind(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req bindRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "instance_bind", err)
		}
		return d.mutateBudget(e, "instance_bind", http.StatusCreated, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			c, err := d.Store.GetComposition(e.Request.Context(), s.Budget.OwnerID, req.CompositionID)
			if err != nil {
				return s.Budget, nil, nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrNotFound, "Composition not found"), err)
			}
			b, inst, warns, err := services.BindComposition(s.Budget, services.BindRequest{
				PackageID:   req.PackageID,
				SubgroupID:  req.SubgroupID,
				Composition: c,
				Quantity:    req.Quantity,
				UnitCost:    req.UnitCost,
			}, s.Inputs)
			return b, inst, warns, err
		})
	}
}

func HandleInstanceQuantity(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req quantityRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "instance_quantity", err)
		}
		instID := e.Request.PathValue("instId")
		return d.mutateBudget(e, "instance_quantity", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.UpdateInstanceQuantity(s.Budget, instID, req.Quantity)
			return b, nil, nil, err
		})
	}
}

func HandleInstanceDelete(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		instID := e.Request.PathValue("instId")
		return d.mutateBudget(e, "instance_delete", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.DeleteInstance(s.Budget, instID)
			return b, nil, nil, err
		})
	}
}

func HandleInstanceMove(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var req moveRequest
		if err := decodeBody(e, &req); err != nil {
			return respondError(e, "instance_move", err)
		}
		instID := e.Request.PathValue("instId")
		return d.mutateBudget(e, "instance_move", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			b, err := services.MoveInstance(s.Budget, instID, services.Direction(req.Direction))
			return b, nil, nil, err
		})
	}
}

// HandleInstanceResync re-freezes an instance from its source composition.
func HandleInstanceResync(d *Deps) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		instID := e.Request.PathValue("instId")
		return d.mutateBudget(e, "instance_resync", http.StatusOK, func(s snapshot) (models.Budget, any, []services.Warning, error) {
			var compositionID string
			for _, inst := range s.Budget.Instances {
				if inst.ID == instID {
					compositionID = inst.CompositionID
				}
			}
			if compositionID == "" {
				return s.Budget, nil, nil, apperrors.ErrInstanceNotFound
			}
			c, err := d.Store.GetComposition(e.Request.Context(), s.Budget.OwnerID, compositionID)
			if err != nil {
				return s.Budget, nil, nil, apperrors.Wrap(apperrors.WithMessage(apperrors.ErrNotFound, "Source composition no longer exists"), err)
			}
			b, warns, err := services.ResyncInstance(s.Budget, instID, c, s.Inputs)
			return b, nil, warns, err
		})
	}
}
