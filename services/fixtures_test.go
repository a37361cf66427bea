package services

import (
	"math"
	"testing"

	"budgetcraft/models"
)

const eps = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) <= eps*math.Max(1, math.Abs(b)) }

// sampleCatalog has one input per category.
func sampleCatalog() []models.Input {
	return []models.Input{
		{ID: "cement", Name: "Cement", Category: models.CategoryMaterial, Unit: "KG", UnitPrice: 0.5},
		{ID: "mason", Name: "Mason", Category: models.CategoryLabor, Unit: "H", UnitPrice: 20},
		{ID: "mixer", Name: "Mixer", Category: models.CategoryEquipment, Unit: "H", UnitPrice: 8},
		{ID: "haul", Name: "Hauling", Category: models.CategoryService, Unit: "M3", UnitPrice: 12},
	}
}

// sampleBudget has two packages, three subgroups and four instances priced
// from sampleCatalog.
func sampleBudget() models.Budget {
	items := []models.CompositionItem{
		{InputID: "cement", Quantity: 10},
		{InputID: "mason", Quantity: 1},
		{InputID: "mixer", Quantity: 0.5},
		{InputID: "haul", Quantity: 0.25},
	}
	// 10*0.5 + 20 + 4 + 3 = 32
	inst := func(id, pkg, sg string, qty float64, order int) models.CompositionInstance {
		return models.CompositionInstance{
			ID: id, CompositionID: "slab", PackageID: pkg, SubgroupID: sg,
			Name: "Slab", Unit: "M3", Quantity: qty, UnitCost: 32, TotalCost: qty * 32,
			Items: append([]models.CompositionItem(nil), items...), Order: order,
		}
	}
	return models.Budget{
		ID: "b1", OwnerID: "u1", Name: "House", Status: models.StatusUnderReview,
		Packages: []models.Package{
			{ID: "p1", Name: "Foundation", Order: 0, Subgroups: []models.Subgroup{{ID: "s1", Name: "Excavation", Order: 0}, {ID: "s2", Name: "Footings", Order: 1}}},
			{ID: "p2", Name: "Structure", Order: 1, Subgroups: []models.Subgroup{{ID: "s3", Name: "Columns", Order: 0}}},
		},
		Instances: []models.CompositionInstance{
			inst("i1", "p1", "s1", 2, 0),
			inst("i2", "p1", "s1", 1.5, 1),
			inst("i3", "p1", "s2", 3, 0),
			inst("i4", "p2", "s3", 0.75, 0),
		},
	}
}

func mustFind(t *testing.T, entries []ABCEntry, inputID string) ABCEntry {
	t.Helper()
	for _, e := range entries {
		if e.InputID == inputID {
			return e
		}
	}
	t.Fatalf("input %s not in report", inputID)
	return ABCEntry{}
}
