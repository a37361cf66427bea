package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"budgetcraft/models"
)

// MemoryStore is an in-process Store used by service tests and local tooling.
// FailCompositionSave, when set, is consulted before every composition save so
// callers can simulate partial failures.
type MemoryStore struct {
	mu           sync.RWMutex
	inputs       map[string]models.Input
	compositions map[string]models.Composition
	budgets      map[string]models.Budget

	FailCompositionSave func(c models.Composition) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		inputs:       make(map[string]models.Input),
		compositions: make(map[string]models.Composition),
		budgets:      make(map[string]models.Budget),
	}
}

func (s *MemoryStore) ListInputs(ctx context.Context, ownerID string) ([]models.Input, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Input
	for _, in := range s.inputs {
		if in.OwnerID == ownerID {
			out = append(out, copyInput(in))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetInput(ctx context.Context, ownerID, id string) (models.Input, error) {
	if err := ctx.Err(); err != nil {
		return models.Input{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	in, ok := s.inputs[id]
	if !ok || in.OwnerID != ownerID {
		return models.Input{}, ErrNotFound
	}
	return copyInput(in), nil
}

func (s *MemoryStore) SaveInput(ctx context.Context, in *models.Input) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if in.ID == "" {
		in.ID = uuid.NewString()
		in.Created = now
	} else {
		existing, ok := s.inputs[in.ID]
		if !ok || existing.OwnerID != in.OwnerID {
			return ErrNotFound
		}
		in.History = existing.History
		in.UnitPrice = existing.UnitPrice
		in.Created = existing.Created
	}
	in.Updated = now
	s.inputs[in.ID] = copyInput(*in)
	return nil
}

func (s *MemoryStore) DeleteInput(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inputs[id]
	if !ok || in.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.inputs, id)
	return nil
}

func (s *MemoryStore) AppendInputPriceHistory(ctx context.Context, ownerID, inputID string, p models.PricePoint) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inputs[inputID]
	if !ok || in.OwnerID != ownerID {
		return ErrNotFound
	}
	in = copyInput(in)
	in.ApplyPrice(p)
	in.Updated = time.Now()
	s.inputs[inputID] = in
	return nil
}

func (s *MemoryStore) ListCompositions(ctx context.Context, ownerID string) ([]models.Composition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Composition
	for _, c := range s.compositions {
		if c.OwnerID == ownerID {
			out = append(out, copyComposition(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) GetComposition(ctx context.Context, ownerID, id string) (models.Composition, error) {
	if err := ctx.Err(); err != nil {
		return models.Composition{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.compositions[id]
	if !ok || c.OwnerID != ownerID {
		return models.Composition{}, ErrNotFound
	}
	return copyComposition(c), nil
}

func (s *MemoryStore) SaveComposition(ctx context.Context, c *models.Composition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.FailCompositionSave != nil {
		if err := s.FailCompositionSave(*c); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if c.ID == "" {
		c.ID = uuid.NewString()
		c.Created = now
	} else if existing, ok := s.compositions[c.ID]; !ok || existing.OwnerID != c.OwnerID {
		return ErrNotFound
	}
	c.Updated = now
	s.compositions[c.ID] = copyComposition(*c)
	return nil
}

func (s *MemoryStore) DeleteComposition(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.compositions[id]
	if !ok || c.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.compositions, id)
	return nil
}

func (s *MemoryStore) ListBudgets(ctx context.Context, ownerID string) ([]models.Budget, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Budget
	for _, b := range s.budgets {
		if b.OwnerID == ownerID {
			out = append(out, b.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Created.After(out[j].Created) })
	return out, nil
}

func (s *MemoryStore) GetBudget(ctx context.Context, ownerID, id string) (models.Budget, error) {
	if err := ctx.Err(); err != nil {
		return models.Budget{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return models.Budget{}, ErrNotFound
	}
	return b.Clone(), nil
}

func (s *MemoryStore) SaveBudget(ctx context.Context, b *models.Budget) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == "" {
		b.ID = uuid.NewString()
		b.Created = time.Now()
	} else if existing, ok := s.budgets[b.ID]; !ok || existing.OwnerID != b.OwnerID {
		return ErrNotFound
	}
	s.budgets[b.ID] = b.Clone()
	return nil
}

func (s *MemoryStore) DeleteBudget(ctx context.Context, ownerID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok || b.OwnerID != ownerID {
		return ErrNotFound
	}
	delete(s.budgets, id)
	return nil
}

func copyInput(in models.Input) models.Input {
	in.History = append([]models.PricePoint(nil), in.History...)
	return in
}

func copyComposition(c models.Composition) models.Composition {
	c.Items = append([]models.CompositionItem(nil), c.Items...)
	return c
}
