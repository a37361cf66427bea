package services

import (
	"sort"

	"budgetcraft/models"
)

// Band is an ABC (Pareto) classification.
type Band string

const (
	BandA Band = "A"
	BandB Band = "B"
	BandC Band = "C"
)

// Cumulative share thresholds, inclusive.
const (
	bandALimit = 80.0
	bandBLimit = 95.0
)

// NoStructureMessage is reported when a budget has no packages to analyze.
const NoStructureMessage = "no cost structure to analyze"

// ABCEntry is one input's consumption across the whole budget.
type ABCEntry struct {
	InputID           string          `json:"input_id"`
	Name              string          `json:"name"`
	Category          models.Category `json:"category"`
	Unit              models.Unit     `json:"unit"`
	UnitPrice         float64         `json:"unit_price"`
	Quantity          float64         `json:"quantity"`
	Value             float64         `json:"value"`
	Percent           float64         `json:"percent"`
	CumulativePercent float64         `json:"cumulative_percent"`
	Band              Band            `json:"band"`
}

// BandSummary rolls up the entries of one band.
type BandSummary struct {
	Band    Band    `json:"band"`
	Count   int     `json:"count"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

type ABCReport struct {
	BudgetID    string        `json:"budget_id"`
	BudgetName  string        `json:"budget_name"`
	Entries     []ABCEntry    `json:"entries"`
	TotalValue  float64       `json:"total_value"`
	TotalInputs int           `json:"total_inputs"`
	Bands       []BandSummary `json:"bands"`
	Message     string        `json:"message,omitempty"`
	Warnings    []Warning     `json:"warnings,omitempty"`
}

// Band returns the rollup for b.
func (r ABCReport) Band(b Band) BandSummary {
	for _, s := range r.Bands {
		if s.Band == b {
			return s
		}
	}
	return BandSummary{Band: b}
}

// ClassifyABC re-aggregates the budget by underlying input and ranks inputs by
// consumed value. Ties are ordered by input id.
func ClassifyABC(b models.Budget, inputs []models.Input) ABCReport {
	report := ABCReport{
		BudgetID:   b.ID,
		BudgetName: b.Name,
		Entries:    []ABCEntry{},
		Bands:      []BandSummary{{Band: BandA}, {Band: BandB}, {Band: BandC}},
	}
	if !b.HasStructure() {
		report.Message = NoStructureMessage
		return report
	}

	agg := NewAggregator(b, inputs)
	idx := IndexInputs(inputs)
	consumed := make(map[string]float64)
	var order []string
	var warns warningSet
	for _, w := range agg.Warnings() {
		warns.add(w)
	}
	for _, inst := range b.Instances {
		if !agg.Counted(inst) {
			continue
		}
		for _, it := range inst.Items {
			if it.InputID == "" {
				continue
			}
			if _, ok := idx[it.InputID]; !ok {
				warns.add(missingInputWarning(inst.ID, it.InputID))
				continue
			}
			if _, seen := consumed[it.InputID]; !seen {
				order = append(order, it.InputID)
			}
			consumed[it.InputID] += it.Quantity * inst.Quantity
		}
	}
	report.Warnings = warns.items()

	for _, id := range order {
		qty := consumed[id]
		if qty == 0 {
			continue
		}
		in := idx[id]
		value := qty * in.UnitPrice
		if value <= 0 {
			continue
		}
		report.Entries = append(report.Entries, ABCEntry{
			InputID:   in.ID,
			Name:      in.Name,
			Category:  in.Category,
			Unit:      in.Unit,
			UnitPrice: in.UnitPrice,
			Quantity:  qty,
			Value:     value,
		})
		report.TotalValue += value
	}

	sort.SliceStable(report.Entries, func(i, j int) bool {
		ei, ej := report.Entries[i], report.Entries[j]
		if ei.Value != ej.Value {
			return ei.Value > ej.Value
		}
		return ei.InputID < ej.InputID
	})

	var cumulative float64
	for i := range report.Entries {
		e := &report.Entries[i]
		cumulative += e.Value
		e.Percent = PercentOf(e.Value, report.TotalValue)
		e.CumulativePercent = PercentOf(cumulative, report.TotalValue)
		e.Band = bandFor(e.CumulativePercent)

		s := &report.Bands[bandIndex(e.Band)]
		s.Count++
		s.Value += e.Value
	}
	for i := range report.Bands {
		report.Bands[i].Percent = PercentOf(report.Bands[i].Value, report.TotalValue)
	}
	report.TotalInputs = len(report.Entries)
	return report
}

func bandFor(cumulativePercent float64) Band {
	switch {
	case cumulativePercent <= bandALimit:
		return BandA
	case cumulativePercent <= bandBLimit:
		return BandB
	default:
		return BandC
	}
}

func bandIndex(b Band) int {
	switch b {
	case BandA:
		return 0
	case BandB:
		return 1
	default:
		return 2
	}
}
