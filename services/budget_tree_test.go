package services

import (
	"errors"
	"testing"

	"budgetcraft/apperrors"
	"budgetcraft/models"
)

func TestDeletePackage_Cascades(t *testing.T) {
	b := sampleBudget()
	out, err := DeletePackage(b, "p1")
	if err != nil {
		t.Fatalf("DeletePackage: %v", err)
	}

	if len(out.Packages) != 1 || out.Packages[0].ID != "p2" || out.Packages[0].Order != 0 {
		t.Errorf("packages = %+v, want only p2 renumbered to 0", out.Packages)
	}
	for _, inst := range out.Instances {
		if inst.PackageID == "p1" || inst.SubgroupID == "s1" || inst.SubgroupID == "s2" {
			t.Errorf("orphaned instance %s survived", inst.ID)
		}
	}
	if len(out.Instances) != 1 {
		t.Errorf("got %d instances, want 1", len(out.Instances))
	}
	if len(b.Packages) != 2 || len(b.Instances) != 4 {
		t.Error("DeletePackage modified its argument")
	}
}

func TestDeleteSubgroup_Cascades(t *testing.T) {
	out, err := DeleteSubgroup(sampleBudget(), "p1", "s1")
	if err != nil {
		t.Fatalf("DeleteSubgroup: %v", err)
	}
	if got := out.Packages[0].Subgroups; len(got) != 1 || got[0].ID != "s2" || got[0].Order != 0 {
		t.Errorf("subgroups = %+v, want only s2 at order 0", got)
	}
	if len(out.Instances) != 2 {
		t.Errorf("got %d instances, want 2", len(out.Instances))
	}
}

func TestTreeMutations_NotFound(t *testing.T) {
	b := sampleBudget()
	tests := []struct {
		name   string
		run    func() error
		expect error
	}{
		{"delete package", func() error { _, err := DeletePackage(b, "nope"); return err }, apperrors.ErrPackageNotFound},
		{"rename package", func() error { _, err := RenamePackage(b, "nope", "x"); return err }, apperrors.ErrPackageNotFound},
		{"add subgroup", func() error { _, _, err := AddSubgroup(b, "nope", "x"); return err }, apperrors.ErrPackageNotFound},
		{"subgroup in other package", func() error { _, err := DeleteSubgroup(b, "p2", "s1"); return err }, apperrors.ErrSubgroupNotFound},
		{"move instance", func() error { _, err := MoveInstance(b, "nope", MoveUp); return err }, apperrors.ErrInstanceNotFound},
		{"delete instance", func() error { _, err := DeleteInstance(b, "nope"); return err }, apperrors.ErrInstanceNotFound},
		{"bind into missing subgroup", func() error {
			_, _, _, err := BindComposition(b, BindRequest{PackageID: "p1", SubgroupID: "s3", Quantity: 1}, nil)
			return err
		}, apperrors.ErrSubgroupNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.expect) {
				t.Errorf("err = %v, want %v", err, tt.expect)
			}
		})
	}
}

func TestTreeMutations_Validation(t *testing.T) {
	b := sampleBudget()
	tests := []struct {
		name string
		run  func() error
	}{
		{"blank package name", func() error { _, _, err := AddPackage(b, "   "); return err }},
		{"blank rename", func() error { _, err := RenameSubgroup(b, "p1", "s1", ""); return err }},
		{"zero quantity", func() error { _, err := UpdateInstanceQuantity(b, "i1", 0); return err }},
		{"negative override", func() error {
			neg := -1.0
			_, _, _, err := BindComposition(b, BindRequest{PackageID: "p1", SubgroupID: "s1", Quantity: 1, UnitCost: &neg}, nil)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, apperrors.ErrValidation) {
				t.Errorf("err = %v, want validation error", err)
			}
		})
	}
}

func TestMovePackage(t *testing.T) {
	b := sampleBudget()
	out, err := MovePackage(b, "p2", MoveUp)
	if err != nil {
		t.Fatalf("MovePackage: %v", err)
	}
	if out.Packages[0].ID != "p2" || out.Packages[0].Order != 0 || out.Packages[1].Order != 1 {
		t.Errorf("packages after move = %+v", out.Packages)
	}

	same, err := MovePackage(out, "p2", MoveUp)
	if err != nil {
		t.Fatalf("MovePackage at top: %v", err)
	}
	if same.Packages[0].ID != "p2" {
		t.Error("moving the first package up should be a no-op")
	}
}

func TestMoveSubgroup(t *testing.T) {
	out, err := MoveSubgroup(sampleBudget(), "p1", "s1", MoveDown)
	if err != nil {
		t.Fatalf("MoveSubgroup: %v", err)
	}
	sgs := out.Packages[0].Subgroups
	if sgs[0].ID != "s2" || sgs[1].ID != "s1" || sgs[1].Order != 1 {
		t.Errorf("subgroups after move = %+v", sgs)
	}
}

func TestMoveInstance(t *testing.T) {
	out, err := MoveInstance(sampleBudget(), "i2", MoveUp)
	if err != nil {
		t.Fatalf("MoveInstance: %v", err)
	}
	ordered := SubgroupInstances(out, "p1", "s1")
	if ordered[0].ID != "i2" || ordered[1].ID != "i1" {
		t.Errorf("order = %s, %s; want i2, i1", ordered[0].ID, ordered[1].ID)
	}
}

func TestBindComposition_FreezesCurrentPrice(t *testing.T) {
	catalog := sampleCatalog()
	comp := models.Composition{ID: "c1", Name: "Slab", Unit: "M3", Items: []models.CompositionItem{
		{InputID: "cement", Quantity: 10},
		{InputID: "mason", Quantity: 1},
	}}
	b, inst, warns, err := BindComposition(sampleBudget(), BindRequest{PackageID: "p2", SubgroupID: "s3", Composition: comp, Quantity: 4}, catalog)
	if err != nil {
		t.Fatalf("BindComposition: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("unexpected warnings %+v", warns)
	}
	if inst.UnitCost != 25 || inst.TotalCost != 100 || inst.Order != 1 {
		t.Errorf("instance = %+v, want unit 25, total 100, order 1", inst)
	}

	// Price change after binding leaves the instance alone.
	catalog[0].ApplyPrice(models.PricePoint{Price: 2, Date: catalog[0].Updated.AddDate(1, 0, 0)})
	comp.Items[0].Quantity = 99
	agg := NewAggregator(b, catalog)
	if got := agg.PackageTotal("p2"); got != 124 {
		t.Errorf("PackageTotal(p2) = %v, want 124 (24 + frozen 100)", got)
	}
	if b.Instances[len(b.Instances)-1].Items[0].Quantity != 10 {
		t.Error("instance items must be a copy of the composition items")
	}

	// Re-binding picks up the new price.
	comp.Items[0].Quantity = 10
	_, again, _, err := BindComposition(b, BindRequest{PackageID: "p2", SubgroupID: "s3", Composition: comp, Quantity: 4}, catalog)
	if err != nil {
		t.Fatalf("BindComposition: %v", err)
	}
	if again.UnitCost != 40 {
		t.Errorf("rebound unit cost = %v, want 40", again.UnitCost)
	}
}

func TestBindComposition_UnitCostOverride(t *testing.T) {
	cost := 12.5
	_, inst, _, err := BindComposition(sampleBudget(), BindRequest{
		PackageID: "p1", SubgroupID: "s2", Composition: models.Composition{ID: "c1", Name: "X", Unit: "UN"}, Quantity: 2, UnitCost: &cost,
	}, sampleCatalog())
	if err != nil {
		t.Fatalf("BindComposition: %v", err)
	}
	if inst.TotalCost != 25 {
		t.Errorf("TotalCost = %v, want 25", inst.TotalCost)
	}
}

func TestUpdateInstanceQuantity_UsesFrozenUnitCost(t *testing.T) {
	out, err := UpdateInstanceQuantity(sampleBudget(), "i1", 10)
	if err != nil {
		t.Fatalf("UpdateInstanceQuantity: %v", err)
	}
	if out.Instances[0].TotalCost != 320 {
		t.Errorf("TotalCost = %v, want 320", out.Instances[0].TotalCost)
	}
}

func TestResyncInstance(t *testing.T) {
	catalog := sampleCatalog()
	catalog[1].UnitPrice = 30
	comp := models.Composition{ID: "slab", Name: "Slab v2", Unit: "M3", Items: []models.CompositionItem{{InputID: "mason", Quantity: 1}}}
	out, _, err := ResyncInstance(sampleBudget(), "i1", comp, catalog)
	if err != nil {
		t.Fatalf("ResyncInstance: %v", err)
	}
	inst := out.Instances[0]
	if inst.Name != "Slab v2" || inst.UnitCost != 30 || inst.TotalCost != 60 || len(inst.Items) != 1 {
		t.Errorf("resynced instance = %+v", inst)
	}
}

func TestDeleteInstance_Renumbers(t *testing.T) {
	out, err := DeleteInstance(sampleBudget(), "i1")
	if err != nil {
		t.Fatalf("DeleteInstance: %v", err)
	}
	left := SubgroupInstances(out, "p1", "s1")
	if len(left) != 1 || left[0].ID != "i2" || left[0].Order != 0 {
		t.Errorf("remaining = %+v", left)
	}
}
