package services

import (
	"testing"

	"budgetcraft/models"
)

// abcBudget consumes one unit of each input, so values equal prices.
func abcBudget(inputIDs ...string) models.Budget {
	var items []models.CompositionItem
	for _, id := range inputIDs {
		items = append(items, models.CompositionItem{InputID: id, Quantity: 1})
	}
	return models.Budget{
		ID: "b1", Name: "ABC",
		Packages:  []models.Package{{ID: "p1", Name: "P", Subgroups: []models.Subgroup{{ID: "s1", Name: "S"}}}},
		Instances: []models.CompositionInstance{{ID: "i1", PackageID: "p1", SubgroupID: "s1", Quantity: 1, Items: items}},
	}
}

func TestClassifyABC_BandBoundaries(t *testing.T) {
	inputs := []models.Input{
		{ID: "a", Name: "A", UnitPrice: 500},
		{ID: "b", Name: "B", UnitPrice: 300},
		{ID: "c", Name: "C", UnitPrice: 150},
		{ID: "d", Name: "D", UnitPrice: 50},
	}
	report := ClassifyABC(abcBudget("d", "c", "b", "a"), inputs)

	wantCum := []float64{50, 80, 95, 100}
	wantBand := []Band{BandA, BandA, BandB, BandC}
	if len(report.Entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(report.Entries))
	}
	for i, e := range report.Entries {
		if e.CumulativePercent != wantCum[i] {
			t.Errorf("entry %d cumulative = %v, want %v", i, e.CumulativePercent, wantCum[i])
		}
		if e.Band != wantBand[i] {
			t.Errorf("entry %d (%s) band = %s, want %s", i, e.InputID, e.Band, wantBand[i])
		}
	}
	if report.TotalValue != 1000 {
		t.Errorf("TotalValue = %v, want 1000", report.TotalValue)
	}
}

func TestClassifyABC_BandRollupsConserve(t *testing.T) {
	report := ClassifyABC(sampleBudget(), sampleCatalog())

	var value float64
	var count int
	for _, band := range []Band{BandA, BandB, BandC} {
		s := report.Band(band)
		value += s.Value
		count += s.Count
	}
	if !approx(value, report.TotalValue) {
		t.Errorf("band values sum to %v, want %v", value, report.TotalValue)
	}
	if count != report.TotalInputs {
		t.Errorf("band counts sum to %d, want %d", count, report.TotalInputs)
	}
	if !approx(report.TotalValue, 232) {
		t.Errorf("TotalValue = %v, want 232 at unchanged prices", report.TotalValue)
	}
}

func TestClassifyABC_AggregatesQuantityAcrossInstances(t *testing.T) {
	report := ClassifyABC(sampleBudget(), sampleCatalog())
	// cement: 10 per unit over 2 + 1.5 + 3 + 0.75 = 7.25 units
	cement := mustFind(t, report.Entries, "cement")
	if !approx(cement.Quantity, 72.5) {
		t.Errorf("cement quantity = %v, want 72.5", cement.Quantity)
	}
	if !approx(cement.Value, 36.25) {
		t.Errorf("cement value = %v, want 36.25", cement.Value)
	}
}

func TestClassifyABC_TiesOrderedByInputID(t *testing.T) {
	inputs := []models.Input{
		{ID: "zz", UnitPrice: 100},
		{ID: "aa", UnitPrice: 100},
		{ID: "mm", UnitPrice: 100},
	}
	report := ClassifyABC(abcBudget("zz", "mm", "aa"), inputs)
	got := []string{report.Entries[0].InputID, report.Entries[1].InputID, report.Entries[2].InputID}
	want := []string{"aa", "mm", "zz"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestClassifyABC_DropsZeroValues(t *testing.T) {
	inputs := []models.Input{
		{ID: "paid", UnitPrice: 10},
		{ID: "free", UnitPrice: 0},
	}
	report := ClassifyABC(abcBudget("paid", "free", "deleted"), inputs)
	if len(report.Entries) != 1 || report.Entries[0].InputID != "paid" {
		t.Errorf("entries = %+v, want only paid", report.Entries)
	}
	if len(report.Warnings) != 1 || report.Warnings[0].RefID != "deleted" {
		t.Errorf("warnings = %+v, want one for deleted input", report.Warnings)
	}
}

func TestClassifyABC_NoStructure(t *testing.T) {
	report := ClassifyABC(models.Budget{ID: "b1"}, sampleCatalog())
	if report.Message != NoStructureMessage {
		t.Errorf("Message = %q, want %q", report.Message, NoStructureMessage)
	}
	if len(report.Entries) != 0 || report.TotalValue != 0 {
		t.Errorf("expected empty report, got %+v", report)
	}
}
