// Package testhelpers provides utilities for testing the PocketBase-backed
// store, schema and handlers.
package testhelpers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"budgetcraft/collections"
	"budgetcraft/models"
	"budgetcraft/store"
)

// NewTestApp creates a PocketBase instance backed by a temporary directory.
// It bootstraps the app and runs collections.Setup to create all tables.
// The temporary directory is cleaned up automatically when the test finishes.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	tmpDir := t.TempDir()
	app := pocketbase.NewWithConfig(pocketbase.Config{
		DefaultDataDir: tmpDir,
	})

	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}

	if err := collections.Setup(app); err != nil {
		t.Fatalf("failed to set up collections: %v", err)
	}

	return app
}

// AuthRecord returns an unsaved auth record carrying id, for use as
// RequestEvent.Auth.
func AuthRecord(id string) *core.Record {
	r := core.NewRecord(core.NewAuthCollection("users"))
	r.Id = id
	return r
}

// CreateTestInput stores an input with one price history entry dated today.
func CreateTestInput(t *testing.T, app core.App, ownerID, name string, category models.Category, price float64) models.Input {
	t.Helper()

	in := models.Input{
		OwnerID:   ownerID,
		Name:      name,
		Category:  category,
		Unit:      "UN",
		UnitPrice: price,
		History:   []models.PricePoint{{Price: price, Date: time.Now().UTC()}},
	}
	if err := store.NewPocketBaseStore(app).SaveInput(context.Background(), &in); err != nil {
		t.Fatalf("failed to save test input: %v", err)
	}
	return in
}

// CreateTestComposition stores a composition with the given items as-is.
func CreateTestComposition(t *testing.T, app core.App, ownerID, name string, items ...models.CompositionItem) models.Composition {
	t.Helper()

	c := models.Composition{OwnerID: ownerID, Name: name, Unit: "M3", Items: items}
	if err := store.NewPocketBaseStore(app).SaveComposition(context.Background(), &c); err != nil {
		t.Fatalf("failed to save test composition: %v", err)
	}
	return c
}

// CreateTestBudget stores a budget with one package, one subgroup and no
// instances. Package and subgroup ids are "pkg-1" and "sg-1".
func CreateTestBudget(t *testing.T, app core.App, ownerID, name string) models.Budget {
	t.Helper()

	b := models.Budget{
		OwnerID: ownerID,
		Name:    name,
		Status:  models.StatusUnderReview,
		Packages: []models.Package{{
			ID:        "pkg-1",
			Name:      "Fundação",
			Subgroups: []models.Subgroup{{ID: "sg-1", Name: "Escavação"}},
		}},
	}
	if err := store.NewPocketBaseStore(app).SaveBudget(context.Background(), &b); err != nil {
		t.Fatalf("failed to save test budget: %v", err)
	}
	return b
}

// AssertBodyContains checks that body contains all specified fragments.
func AssertBodyContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected body to contain %q, but it was not found\nbody (first 500 chars): %s",
				frag, truncate(body, 500))
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
