package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"budgetcraft/models"
)

// Collection names shared with the schema setup.
const (
	InputsCollection       = "inputs"
	InputPricesCollection  = "input_prices"
	CompositionsCollection = "compositions"
	BudgetsCollection      = "budgets"
)

// PocketBaseStore persists entities as PocketBase records. Budget trees and
// composition item lists are stored as JSON fields.
type PocketBaseStore struct {
	app core.App
}

func NewPocketBaseStore(app core.App) *PocketBaseStore {
	return &PocketBaseStore{app: app}
}

// ── Inputs ──────────────────────────────────────────────────────────────

func (s *PocketBaseStore) ListInputs(ctx context.Context, ownerID string) ([]models.Input, error) {
	records, err := s.ownedRecords(ctx, InputsCollection, ownerID, "name ASC")
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	out := make([]models.Input, 0, len(records))
	for _, r := range records {
		out = append(out, recordToInput(r))
	}
	return out, nil
}

func (s *PocketBaseStore) GetInput(ctx context.Context, ownerID, id string) (models.Input, error) {
	rec, err := s.ownedRecord(ctx, InputsCollection, ownerID, id)
	if err != nil {
		return models.Input{}, err
	}
	in := recordToInput(rec)

	var prices []*core.Record
	err = s.app.RecordQuery(InputPricesCollection).
		WithContext(ctx).
		AndWhere(dbx.HashExp{"input": id}).
		OrderBy("date ASC", "created ASC").
		All(&prices)
	if err != nil {
		return models.Input{}, fmt.Errorf("load price history for %s: %w", id, err)
	}
	for _, p := range prices {
		in.History = append(in.History, models.PricePoint{
			Price:    p.GetFloat("price"),
			Date:     p.GetDateTime("date").Time(),
			Supplier: p.GetString("supplier"),
		})
	}
	return in, nil
}

func (s *PocketBaseStore) SaveInput(ctx context.Context, in *models.Input) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		var rec *core.Record
		if in.ID == "" {
			col, err := txApp.FindCollectionByNameOrId(InputsCollection)
			if err != nil {
				return fmt.Errorf("find %s collection: %w", InputsCollection, err)
			}
			rec = core.NewRecord(col)
			rec.Set("owner", in.OwnerID)
			rec.Set("unit_price", in.UnitPrice)
		} else {
			existing, err := findOwned(txApp, InputsCollection, in.OwnerID, in.ID)
			if err != nil {
				return err
			}
			rec = existing
		}
		rec.Set("name", in.Name)
		rec.Set("category", string(in.Category))
		rec.Set("unit", string(in.Unit))

		creating := in.ID == ""
		if err := txApp.SaveWithContext(ctx, rec); err != nil {
			return fmt.Errorf("save input %q: %w", in.Name, err)
		}

		if creating {
			for _, p := range in.History {
				if err := insertPrice(ctx, txApp, rec.Id, in.OwnerID, p); err != nil {
					return err
				}
			}
		}
		*in = recordToInputWithHistory(rec, in.History)
		return nil
	})
}

func (s *PocketBaseStore) DeleteInput(ctx context.Context, ownerID, id string) error {
	rec, err := s.ownedRecord(ctx, InputsCollection, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.app.DeleteWithContext(ctx, rec); err != nil {
		return fmt.Errorf("delete input %s: %w", id, err)
	}
	return nil
}

func (s *PocketBaseStore) AppendInputPriceHistory(ctx context.Context, ownerID, inputID string, p models.PricePoint) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		rec, err := findOwned(txApp, InputsCollection, ownerID, inputID)
		if err != nil {
			return err
		}
		if err := insertPrice(ctx, txApp, inputID, ownerID, p); err != nil {
			return err
		}

		// Current price follows the newest entry by date.
		var latest []*core.Record
		err = txApp.RecordQuery(InputPricesCollection).
			WithContext(ctx).
			AndWhere(dbx.HashExp{"input": inputID}).
			OrderBy("date DESC", "created DESC").
			Limit(1).
			All(&latest)
		if err != nil {
			return fmt.Errorf("find latest price for %s: %w", inputID, err)
		}
		if len(latest) == 1 {
			rec.Set("unit_price", latest[0].GetFloat("price"))
		}
		if err := txApp.SaveWithContext(ctx, rec); err != nil {
			return fmt.Errorf("update price of input %s: %w", inputID, err)
		}
		return nil
	})
}

func insertPrice(ctx context.Context, app core.App, inputID, ownerID string, p models.PricePoint) error {
	col, err := app.FindCollectionByNameOrId(InputPricesCollection)
	if err != nil {
		return fmt.Errorf("find %s collection: %w", InputPricesCollection, err)
	}
	rec := core.NewRecord(col)
	rec.Set("input", inputID)
	rec.Set("owner", ownerID)
	rec.Set("price", p.Price)
	rec.Set("date", p.Date)
	rec.Set("supplier", p.Supplier)
	if err := app.SaveWithContext(ctx, rec); err != nil {
		return fmt.Errorf("save price history for %s: %w", inputID, err)
	}
	return nil
}

func recordToInput(r *core.Record) models.Input {
	return models.Input{
		ID:        r.Id,
		OwnerID:   r.GetString("owner"),
		Name:      r.GetString("name"),
		Category:  models.Category(r.GetString("category")),
		Unit:      models.Unit(r.GetString("unit")),
		UnitPrice: r.GetFloat("unit_price"),
		Created:   r.GetDateTime("created").Time(),
		Updated:   r.GetDateTime("updated").Time(),
	}
}

func recordToInputWithHistory(r *core.Record, history []models.PricePoint) models.Input {
	in := recordToInput(r)
	in.History = history
	return in
}

// ── Compositions ────────────────────────────────────────────────────────

func (s *PocketBaseStore) ListCompositions(ctx context.Context, ownerID string) ([]models.Composition, error) {
	records, err := s.ownedRecords(ctx, CompositionsCollection, ownerID, "name ASC")
	if err != nil {
		return nil, fmt.Errorf("list compositions: %w", err)
	}
	out := make([]models.Composition, 0, len(records))
	for _, r := range records {
		c, err := recordToComposition(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *PocketBaseStore) GetComposition(ctx context.Context, ownerID, id string) (models.Composition, error) {
	rec, err := s.ownedRecord(ctx, CompositionsCollection, ownerID, id)
	if err != nil {
		return models.Composition{}, err
	}
	return recordToComposition(rec)
}

func (s *PocketBaseStore) SaveComposition(ctx context.Context, c *models.Composition) error {
	rec, err := s.recordForSave(ctx, CompositionsCollection, c.OwnerID, c.ID)
	if err != nil {
		return err
	}
	rec.Set("name", c.Name)
	rec.Set("description", c.Description)
	rec.Set("unit", string(c.Unit))
	rec.Set("items", c.Items)
	rec.Set("stored_total", c.StoredTotal)
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return fmt.Errorf("save composition %q: %w", c.Name, err)
	}
	saved, err := recordToComposition(rec)
	if err != nil {
		return err
	}
	*c = saved
	return nil
}

func (s *PocketBaseStore) DeleteComposition(ctx context.Context, ownerID, id string) error {
	rec, err := s.ownedRecord(ctx, CompositionsCollection, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.app.DeleteWithContext(ctx, rec); err != nil {
		return fmt.Errorf("delete composition %s: %w", id, err)
	}
	return nil
}

func recordToComposition(r *core.Record) (models.Composition, error) {
	c := models.Composition{
		ID:          r.Id,
		OwnerID:     r.GetString("owner"),
		Name:        r.GetString("name"),
		Description: r.GetString("description"),
		Unit:        models.Unit(r.GetString("unit")),
		StoredTotal: r.GetFloat("stored_total"),
		Created:     r.GetDateTime("created").Time(),
		Updated:     r.GetDateTime("updated").Time(),
	}
	if err := decodeJSONField(r, "items", &c.Items); err != nil {
		return models.Composition{}, fmt.Errorf("decode items of composition %s: %w", r.Id, err)
	}
	return c, nil
}

// ── Budgets ─────────────────────────────────────────────────────────────

func (s *PocketBaseStore) ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error) {
	records, err := s.ownedRecords(ctx, BudgetsCollection, ownerID, "created DESC")
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	out := make([]models.Budget, 0, len(records))
	for _, r := range records {
		b, err := recordToBudget(r)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *PocketBaseStore) GetBudget(ctx context.Context, ownerID, id string) (models.Budget, error) {
	rec, err := s.ownedRecord(ctx, BudgetsCollection, ownerID, id)
	if err != nil {
		return models.Budget{}, err
	}
	return recordToBudget(rec)
}

func (s *PocketBaseStore) SaveBudget(ctx context.Context, b *models.Budget) error {
	rec, err := s.recordForSave(ctx, BudgetsCollection, b.OwnerID, b.ID)
	if err != nil {
		return err
	}
	rec.Set("name", b.Name)
	rec.Set("description", b.Description)
	rec.Set("client", b.Client)
	rec.Set("address", b.Address)
	rec.Set("date", b.Date)
	rec.Set("status", string(b.Status))
	rec.Set("packages", nonNil(b.Packages))
	rec.Set("instances", nonNil(b.Instances))
	rec.Set("bdi", b.BDI)
	rec.Set("total_value", b.TotalValue)
	if !b.TreeUpdatedAt.IsZero() {
		rec.Set("tree_updated_at", b.TreeUpdatedAt)
	}
	if err := s.app.SaveWithContext(ctx, rec); err != nil {
		return fmt.Errorf("save budget %q: %w", b.Name, err)
	}
	saved, err := recordToBudget(rec)
	if err != nil {
		return err
	}
	*b = saved
	return nil
}

func (s *PocketBaseStore) DeleteBudget(ctx context.Context, ownerID, id string) error {
	rec, err := s.ownedRecord(ctx, BudgetsCollection, ownerID, id)
	if err != nil {
		return err
	}
	if err := s.app.DeleteWithContext(ctx, rec); err != nil {
		return fmt.Errorf("delete budget %s: %w", id, err)
	}
	return nil
}

func recordToBudget(r *core.Record) (models.Budget, error) {
	b := models.Budget{
		ID:            r.Id,
		OwnerID:       r.GetString("owner"),
		Name:          r.GetString("name"),
		Description:   r.GetString("description"),
		Client:        r.GetString("client"),
		Address:       r.GetString("address"),
		Date:          r.GetString("date"),
		Status:        models.BudgetStatus(r.GetString("status")),
		TotalValue:    r.GetFloat("total_value"),
		Created:       r.GetDateTime("created").Time(),
		TreeUpdatedAt: r.GetDateTime("tree_updated_at").Time(),
	}
	if err := decodeJSONField(r, "packages", &b.Packages); err != nil {
		return models.Budget{}, fmt.Errorf("decode packages of budget %s: %w", r.Id, err)
	}
	if err := decodeJSONField(r, "instances", &b.Instances); err != nil {
		return models.Budget{}, fmt.Errorf("decode instances of budget %s: %w", r.Id, err)
	}
	if err := decodeJSONField(r, "bdi", &b.BDI); err != nil {
		return models.Budget{}, fmt.Errorf("decode bdi of budget %s: %w", r.Id, err)
	}
	return b, nil
}

// ── helpers ─────────────────────────────────────────────────────────────

func (s *PocketBaseStore) ownedRecords(ctx context.Context, collection, ownerID, order string) ([]*core.Record, error) {
	var records []*core.Record
	err := s.app.RecordQuery(collection).
		WithContext(ctx).
		AndWhere(dbx.HashExp{"owner": ownerID}).
		OrderBy(order).
		All(&records)
	return records, err
}

func (s *PocketBaseStore) ownedRecord(ctx context.Context, collection, ownerID, id string) (*core.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return findOwned(s.app, collection, ownerID, id)
}

// recordForSave returns a fresh record when id is empty, otherwise the
// existing owned record.
func (s *PocketBaseStore) recordForSave(ctx context.Context, collection, ownerID, id string) (*core.Record, error) {
	if id != "" {
		return s.ownedRecord(ctx, collection, ownerID, id)
	}
	col, err := s.app.FindCollectionByNameOrId(collection)
	if err != nil {
		return nil, fmt.Errorf("find %s collection: %w", collection, err)
	}
	rec := core.NewRecord(col)
	rec.Set("owner", ownerID)
	return rec, nil
}

func findOwned(app core.App, collection, ownerID, id string) (*core.Record, error) {
	rec, err := app.FindRecordById(collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s %s: %w", collection, id, err)
	}
	if rec.GetString("owner") != ownerID {
		return nil, ErrNotFound
	}
	return rec, nil
}

// decodeJSONField unmarshals a JSON field, leaving dst untouched when the
// field is empty or null.
func decodeJSONField(r *core.Record, key string, dst any) error {
	var raw []byte
	switch v := r.Get(key).(type) {
	case nil:
		return nil
	case types.JSONRaw:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		raw = b
	}
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
