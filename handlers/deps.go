package handlers

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetcraft/events"
	"budgetcraft/models"
	"budgetcraft/services"
	"budgetcraft/store"
)

// Deps carries what every handler needs. Handlers never reach PocketBase
// directly; all data goes through Store.
type Deps struct {
	Store         store.Store
	Bus           *events.Bus
	Export        services.ExportOptions
	MaxImportRows int
	Now           func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now == nil {
		return time.Now()
	}
	return d.Now()
}

func (d *Deps) catalog() *services.Catalog {
	return services.NewCatalog(d.Store)
}

func (d *Deps) importer() *services.InputImporter {
	imp := services.NewInputImporter(d.Store, d.MaxImportRows)
	imp.Now = d.now
	return imp
}

// snapshot is one budget together with the catalog it is priced against.
type snapshot struct {
	Budget models.Budget
	Inputs []models.Input
}

// loadSnapshot fetches the budget and the owner's inputs concurrently.
func (d *Deps) loadSnapshot(ctx context.Context, owner, budgetID string) (snapshot, error) {
	var s snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := d.Store.GetBudget(gctx, owner, budgetID)
		s.Budget = b
		return err
	})
	g.Go(func() error {
		inputs, err := d.Store.ListInputs(gctx, owner)
		s.Inputs = inputs
		return err
	})
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}
	return s, nil
}

// ownerData is everything an owner has, loaded for the dashboard.
type ownerData struct {
	Inputs       []models.Input
	Compositions []models.Composition
	Budgets      []models.Budget
}

func (d *Deps) loadOwnerData(ctx context.Context, owner string) (ownerData, error) {
	var o ownerData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := d.Store.ListInputs(gctx, owner)
		o.Inputs = v
		return err
	})
	g.Go(func() error {
		v, err := d.Store.ListCompositions(gctx, owner)
		o.Compositions = v
		return err
	})
	g.Go(func() error {
		v, err := d.Store.ListBudgets(gctx, owner)
		o.Budgets = v
		return err
	})
	if err := g.Wait(); err != nil {
		return ownerData{}, err
	}
	return o, nil
}

// loadPair fetches the two budgets of a comparison concurrently.
func (d *Deps) loadPair(ctx context.Context, owner, firstID, secondID string) (models.Budget, models.Budget, error) {
	var first, second models.Budget
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := d.Store.GetBudget(gctx, owner, firstID)
		first = b
		return err
	})
	g.Go(func() error {
		b, err := d.Store.GetBudget(gctx, owner, secondID)
		second = b
		return err
	})
	if err := g.Wait(); err != nil {
		return models.Budget{}, models.Budget{}, err
	}
	return first, second, nil
}
