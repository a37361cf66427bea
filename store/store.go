// Package store is the persistence boundary for inputs, compositions and
// budgets. Every call is scoped to an owner; records belonging to someone
// else are reported as ErrNotFound.
package store

import (
	"context"
	"errors"

	"budgetcraft/models"
)

var ErrNotFound = errors.New("store: not found")

type InputStore interface {
	ListInputs(ctx context.Context, ownerID string) ([]models.Input, error)
	// GetInput returns the input with its full price history.
	GetInput(ctx context.Context, ownerID, id string) (models.Input, error)
	// SaveInput creates the input when ID is empty, otherwise updates its
	// descriptive fields. History entries are only written on create.
	SaveInput(ctx context.Context, in *models.Input) error
	// DeleteInput removes the input and its price history.
	DeleteInput(ctx context.Context, ownerID, id string) error
	// AppendInputPriceHistory stores p and moves the input's current price to
	// the newest history entry.
	AppendInputPriceHistory(ctx context.Context, ownerID, inputID string, p models.PricePoint) error
}

type CompositionStore interface {
	ListCompositions(ctx context.Context, ownerID string) ([]models.Composition, error)
	GetComposition(ctx context.Context, ownerID, id string) (models.Composition, error)
	SaveComposition(ctx context.Context, c *models.Composition) error
	DeleteComposition(ctx context.Context, ownerID, id string) error
}

type BudgetStore interface {
	ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error)
	GetBudget(ctx context.Context, ownerID, id string) (models.Budget, error)
	// SaveBudget overwrites the whole budget document (last write wins).
	SaveBudget(ctx context.Context, b *models.Budget) error
	DeleteBudget(ctx context.Context, ownerID, id string) error
}

type Store interface {
	InputStore
	CompositionStore
	BudgetStore
}
