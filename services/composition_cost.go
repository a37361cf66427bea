package services

import "budgetcraft/models"

// InputIndex looks inputs up by id.
type InputIndex map[string]models.Input

func IndexInputs(inputs []models.Input) InputIndex {
	idx := make(InputIndex, len(inputs))
	for _, in := range inputs {
		idx[in.ID] = in
	}
	return idx
}

// CompositionUnitCost is Σ quantity × current price over the composition's
// items. Items pointing at missing inputs contribute zero and are reported.
func CompositionUnitCost(c models.Composition, idx InputIndex) (float64, []Warning) {
	var total float64
	var warns warningSet
	for _, it := range c.Items {
		if it.InputID == "" {
			continue
		}
		in, ok := idx[it.InputID]
		if !ok {
			warns.add(missingInputWarning("", it.InputID))
			continue
		}
		total += it.Quantity * in.UnitPrice
	}
	return total, warns.items()
}

// CompositionValue is the cost shown for a composition. Linked compositions
// are priced live; legacy ones use the stored total, or the sum of their
// pre-aggregated line costs when no total was stored.
func CompositionValue(c models.Composition, idx InputIndex) (float64, []Warning) {
	if !c.IsLegacy() {
		return CompositionUnitCost(c, idx)
	}
	if c.StoredTotal != 0 {
		return c.StoredTotal, nil
	}
	var sum float64
	for _, it := range c.Items {
		sum += it.LegacyCost
	}
	return sum, nil
}

// RecalculateStoredTotal replays c's items with changed's new price and the
// current price of every other input.
func RecalculateStoredTotal(c models.Composition, idx InputIndex, changed models.Input) float64 {
	var total float64
	for _, it := range c.Items {
		if it.InputID == changed.ID {
			total += it.Quantity * changed.UnitPrice
			continue
		}
		if in, ok := idx[it.InputID]; ok {
			total += it.Quantity * in.UnitPrice
		}
	}
	return total
}
