package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"budgetcraft/apperrors"
	"budgetcraft/events"
	"budgetcraft/models"
	"budgetcraft/store"
)

// PriceUpdateResult reports the stored price change together with any
// secondary composition updates that failed. Failures never undo the price
// change.
type PriceUpdateResult struct {
	Input             models.Input `json:"input"`
	PropagationErrors []error      `json:"-"`
}

// Problems returns the propagation failures as plain messages.
func (r PriceUpdateResult) Problems() []string {
	out := make([]string, 0, len(r.PropagationErrors))
	for _, err := range r.PropagationErrors {
		out = append(out, err.Error())
	}
	return out
}

// PriceUpdater appends price history entries and announces the change on the
// bus so dependent compositions can be corrected.
type PriceUpdater struct {
	Store store.InputStore
	Bus   *events.Bus
}

func NewPriceUpdater(s store.InputStore, bus *events.Bus) *PriceUpdater {
	return &PriceUpdater{Store: s, Bus: bus}
}

func (u *PriceUpdater) UpdateInputPrice(ctx context.Context, ownerID, inputID string, p models.PricePoint) (PriceUpdateResult, error) {
	if err := p.Validate(); err != nil {
		return PriceUpdateResult{}, apperrors.Validation(err)
	}
	before, err := u.Store.GetInput(ctx, ownerID, inputID)
	if err != nil {
		return PriceUpdateResult{}, err
	}
	if err := u.Store.AppendInputPriceHistory(ctx, ownerID, inputID, p); err != nil {
		return PriceUpdateResult{}, err
	}
	after, err := u.Store.GetInput(ctx, ownerID, inputID)
	if err != nil {
		return PriceUpdateResult{}, err
	}

	res := PriceUpdateResult{Input: after}
	if u.Bus == nil {
		return res, nil
	}
	errs := u.Bus.Publish(events.New(ctx, events.InputPriceChangedType, events.InputPriceChanged{
		OwnerID:  ownerID,
		InputID:  inputID,
		OldPrice: before.UnitPrice,
		NewPrice: after.UnitPrice,
	}))
	res.PropagationErrors = flattenErrors(errs)
	if len(res.PropagationErrors) > 0 {
		log.WithFields(log.Fields{"input": inputID, "failures": len(res.PropagationErrors)}).
			Warn("price propagation finished with failures")
	}
	return res, nil
}

func flattenErrors(errs []error) []error {
	var out []error
	for _, err := range errs {
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			out = append(out, flattenErrors(joined.Unwrap())...)
			continue
		}
		out = append(out, err)
	}
	return out
}

// CompositionTotalsRecalculator rewrites the stored total of every
// composition that uses a repriced input. Bound budget instances are never
// touched.
type CompositionTotalsRecalculator struct {
	Store store.Store
}

// Register subscribes the recalculator to price changes on bus.
func (r *CompositionTotalsRecalculator) Register(bus *events.Bus) (unsubscribe func()) {
	return events.SubscribeTyped(bus, events.InputPriceChangedType, r.HandleInputPriceChanged)
}

// HandleInputPriceChanged keeps going after a failed save and returns every
// failure joined.
func (r *CompositionTotalsRecalculator) HandleInputPriceChanged(ctx context.Context, ev events.InputPriceChanged) error {
	inputs, err := r.Store.ListInputs(ctx, ev.OwnerID)
	if err != nil {
		return fmt.Errorf("list inputs: %w", err)
	}
	comps, err := r.Store.ListCompositions(ctx, ev.OwnerID)
	if err != nil {
		return fmt.Errorf("list compositions: %w", err)
	}
	idx := IndexInputs(inputs)
	changed, ok := idx[ev.InputID]
	if !ok {
		return nil
	}
	changed.UnitPrice = ev.NewPrice

	var errs []error
	for _, c := range comps {
		if !c.References(ev.InputID) {
			continue
		}
		total := RecalculateStoredTotal(c, idx, changed)
		if total == c.StoredTotal {
			continue
		}
		c.StoredTotal = total
		if err := r.Store.SaveComposition(ctx, &c); err != nil {
			log.WithFields(log.Fields{"composition": c.ID, "input": ev.InputID}).
				Errorf("recalculate composition total: %v", err)
			errs = append(errs, fmt.Errorf("composition %q: %w", c.Name, err))
		}
	}
	return errors.Join(errs...)
}
