package services

import (
	"context"
	"sort"
	"strings"

	"budgetcraft/apperrors"
	"budgetcraft/models"
	"budgetcraft/store"
)

// Catalog applies the per-owner rules around inputs and compositions that the
// store does not enforce: unique names and the delete guard.
type Catalog struct {
	Store store.Store
}

func NewCatalog(s store.Store) *Catalog {
	return &Catalog{Store: s}
}

// CreateInput validates and stores a new input. A positive initial price
// becomes the first history entry.
func (c *Catalog) CreateInput(ctx context.Context, in *models.Input, initial models.PricePoint) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = in.Category.Normalize()
	in.UnitPrice = initial.Price
	if err := in.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	if err := initial.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	existing, err := c.Store.ListInputs(ctx, in.OwnerID)
	if err != nil {
		return err
	}
	if inputNameTaken(existing, in.Name, "") {
		return apperrors.ErrDuplicateName
	}
	in.ID = ""
	in.History = []models.PricePoint{initial}
	return c.Store.SaveInput(ctx, in)
}

// UpdateInput changes descriptive fields only; prices go through PriceUpdater.
func (c *Catalog) UpdateInput(ctx context.Context, in *models.Input) error {
	in.Name = strings.TrimSpace(in.Name)
	current, err := c.Store.GetInput(ctx, in.OwnerID, in.ID)
	if err != nil {
		return err
	}
	in.UnitPrice = current.UnitPrice
	if err := in.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	existing, err := c.Store.ListInputs(ctx, in.OwnerID)
	if err != nil {
		return err
	}
	if inputNameTaken(existing, in.Name, in.ID) {
		return apperrors.ErrDuplicateName
	}
	return c.Store.SaveInput(ctx, in)
}

// DeleteInput refuses to remove an input that any composition still uses.
func (c *Catalog) DeleteInput(ctx context.Context, ownerID, id string) error {
	if _, err := c.Store.GetInput(ctx, ownerID, id); err != nil {
		return err
	}
	comps, err := c.Store.ListCompositions(ctx, ownerID)
	if err != nil {
		return err
	}
	var users []string
	for _, comp := range comps {
		if comp.References(id) {
			users = append(users, comp.Name)
		}
	}
	if len(users) > 0 {
		return apperrors.WithMessage(apperrors.ErrInputInUse,
			"Input is used by: "+strings.Join(users, ", "))
	}
	return c.Store.DeleteInput(ctx, ownerID, id)
}

// SaveComposition creates or updates a composition after checking its items
// point at inputs the owner has.
func (c *Catalog) SaveComposition(ctx context.Context, comp *models.Composition) error {
	comp.Name = strings.TrimSpace(comp.Name)
	if err := comp.Validate(); err != nil {
		return apperrors.Validation(err)
	}
	inputs, err := c.Store.ListInputs(ctx, comp.OwnerID)
	if err != nil {
		return err
	}
	idx := IndexInputs(inputs)
	for _, it := range comp.Items {
		if it.InputID == "" {
			continue
		}
		if _, ok := idx[it.InputID]; !ok {
			return apperrors.WithMessage(apperrors.ErrValidation, "unknown input "+it.InputID)
		}
	}
	existing, err := c.Store.ListCompositions(ctx, comp.OwnerID)
	if err != nil {
		return err
	}
	for _, other := range existing {
		if other.ID != comp.ID && models.NormalizedName(other.Name) == models.NormalizedName(comp.Name) {
			return apperrors.ErrDuplicateName
		}
	}
	if !comp.IsLegacy() {
		comp.StoredTotal, _ = CompositionUnitCost(*comp, idx)
	}
	return c.Store.SaveComposition(ctx, comp)
}

func inputNameTaken(inputs []models.Input, name, exceptID string) bool {
	key := models.NormalizedName(name)
	for _, in := range inputs {
		if in.ID != exceptID && models.NormalizedName(in.Name) == key {
			return true
		}
	}
	return false
}

// FilterInputs keeps inputs whose name or category label contains q, ignoring
// case. An empty query keeps everything.
func FilterInputs(inputs []models.Input, q string) []models.Input {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Input, 0, len(inputs))
	for _, in := range inputs {
		if q == "" ||
			strings.Contains(strings.ToLower(in.Name), q) ||
			strings.Contains(strings.ToLower(string(in.Category)), q) ||
			strings.Contains(strings.ToLower(in.Category.Label()), q) {
			out = append(out, in)
		}
	}
	return out
}

func FilterCompositions(comps []models.Composition, q string) []models.Composition {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Composition, 0, len(comps))
	for _, c := range comps {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(string(c.Unit)), q) {
			out = append(out, c)
		}
	}
	return out
}

// FilterBudgets matches name, client or description and returns the result
// newest first.
func FilterBudgets(budgets []models.Budget, q string) []models.Budget {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]models.Budget, 0, len(budgets))
	for _, b := range budgets {
		if q == "" ||
			strings.Contains(strings.ToLower(b.Name), q) ||
			strings.Contains(strings.ToLower(b.Client), q) ||
			strings.Contains(strings.ToLower(b.Description), q) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out
}
