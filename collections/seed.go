package collections

import (
	"context"
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"

	"budgetcraft/models"
	"budgetcraft/services"
	"budgetcraft/store"
)

// ── Definition structs ───────────────────────────────────────────────────

type inputDef struct {
	key      string
	name     string
	category models.Category
	unit     models.Unit
	price    float64
	supplier string
}

type itemDef struct {
	input    string
	quantity float64
}

type compositionDef struct {
	key         string
	name        string
	description string
	unit        models.Unit
	items       []itemDef
}

type instanceDef struct {
	composition string
	quantity    float64
}

type subgroupDef struct {
	name      string
	instances []instanceDef
}

type packageDef struct {
	name      string
	subgroups []subgroupDef
}

var seedInputs = []inputDef{
	{"cement", "Cimento Portland CP-II", models.CategoryMaterial, "KG", 0.75, "Votorantim"},
	{"sand", "Areia média lavada", models.CategoryMaterial, "M3", 120, "Areal São Jorge"},
	{"gravel", "Brita 1", models.CategoryMaterial, "M3", 110, "Pedreira Central"},
	{"mason", "Pedreiro", models.CategoryLabor, "H", 25, ""},
	{"helper", "Servente", models.CategoryLabor, "H", 20, ""},
	{"mixer", "Betoneira 400 L", models.CategoryEquipment, "H", 15, "Loca Máquinas"},
	{"debris", "Remoção de entulho", models.CategoryService, "M3", 50, "Caçambas Silva"},
}

var seedCompositions = []compositionDef{
	{"excavation", "Escavação manual de vala", "Escavação manual até 1,5 m com remoção", "M3", []itemDef{
		{"helper", 2},
		{"debris", 0.2},
	}},
	{"footing", "Concreto para sapata", "Concreto 25 MPa preparado em obra", "M3", []itemDef{
		{"cement", 350},
		{"sand", 0.5},
		{"gravel", 0.8},
		{"mason", 4},
		{"mixer", 1},
	}},
}

var seedTree = []packageDef{
	{"Fundação", []subgroupDef{
		{"Escavação", []instanceDef{{"excavation", 10}}},
	}},
}

var seedBDI = models.BDIConfig{Profit: 20, Taxes: 35, Financial: 5, Guarantees: 2}

// Seed creates a demo catalog and one budget for ownerID. It returns early
// when the owner already has inputs, so it is safe to call on every startup.
func Seed(app core.App, ownerID string) error {
	if ownerID == "" {
		return fmt.Errorf("seed: owner id is required")
	}
	ctx := context.Background()
	st := store.NewPocketBaseStore(app)

	existing, err := st.ListInputs(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("seed: could not query inputs: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	log.WithField("owner", ownerID).Info("seed: catalog is empty, inserting demo data")

	catalog := services.NewCatalog(st)
	priceDate := time.Now().UTC().Truncate(24 * time.Hour)

	inputIDs := make(map[string]string, len(seedInputs))
	for _, d := range seedInputs {
		in := models.Input{OwnerID: ownerID, Name: d.name, Category: d.category, Unit: d.unit}
		if err := catalog.CreateInput(ctx, &in, models.PricePoint{Price: d.price, Date: priceDate, Supplier: d.supplier}); err != nil {
			return fmt.Errorf("seed: input %q: %w", d.name, err)
		}
		inputIDs[d.key] = in.ID
	}

	comps := make(map[string]models.Composition, len(seedCompositions))
	for _, d := range seedCompositions {
		c := models.Composition{OwnerID: ownerID, Name: d.name, Description: d.description, Unit: d.unit}
		for _, it := range d.items {
			c.Items = append(c.Items, models.CompositionItem{InputID: inputIDs[it.input], Quantity: it.quantity})
		}
		if err := catalog.SaveComposition(ctx, &c); err != nil {
			return fmt.Errorf("seed: composition %q: %w", d.name, err)
		}
		comps[d.key] = c
	}

	inputs, err := st.ListInputs(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("seed: reload inputs: %w", err)
	}

	bdi := seedBDI
	b := models.Budget{
		OwnerID: ownerID,
		Name:    "Residência modelo",
		Client:  "Cliente demonstração",
		Date:    priceDate.Format("2006-01-02"),
		Status:  models.StatusUnderReview,
		BDI:     &bdi,
	}
	for _, pd := range seedTree {
		var pkg models.Package
		if b, pkg, err = services.AddPackage(b, pd.name); err != nil {
			return fmt.Errorf("seed: package %q: %w", pd.name, err)
		}
		for _, sd := range pd.subgroups {
			var sg models.Subgroup
			if b, sg, err = services.AddSubgroup(b, pkg.ID, sd.name); err != nil {
				return fmt.Errorf("seed: subgroup %q: %w", sd.name, err)
			}
			for _, id := range sd.instances {
				req := services.BindRequest{PackageID: pkg.ID, SubgroupID: sg.ID, Composition: comps[id.composition], Quantity: id.quantity}
				if b, _, _, err = services.BindComposition(b, req, inputs); err != nil {
					return fmt.Errorf("seed: bind %q: %w", id.composition, err)
				}
			}
		}
	}
	b = services.PrepareForSave(b)
	if err := st.SaveBudget(ctx, &b); err != nil {
		return fmt.Errorf("seed: budget: %w", err)
	}

	log.WithFields(log.Fields{
		"inputs":       len(seedInputs),
		"compositions": len(seedCompositions),
		"budget":       b.ID,
	}).Info("seed: demo data inserted")
	return nil
}
