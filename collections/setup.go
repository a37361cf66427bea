package collections

import (
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"

	"budgetcraft/models"
	"budgetcraft/store"
)

// jsonTreeMaxSize bounds a budget's packages/instances documents.
const jsonTreeMaxSize = 8 << 20

// Setup creates the inputs, input_prices, compositions and budgets
// collections when they are missing. Existing collections are left as is.
func Setup(app core.App) error {
	inputs, err := ensureCollection(app, store.InputsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "owner", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.SelectField{
			Name:      "category",
			Required:  true,
			Values:    categoryValues(),
			MaxSelect: 1,
		})
		c.Fields.Add(&core.SelectField{
			Name:      "unit",
			Required:  true,
			Values:    unitValues(),
			MaxSelect: 1,
		})
		c.Fields.Add(&core.NumberField{Name: "unit_price", Min: floatPtr(0)})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_inputs_owner", false, "owner", "")
	})
	if err != nil {
		return err
	}

	_, err = ensureCollection(app, store.InputPricesCollection, func(c *core.Collection) {
		c.Fields.Add(&core.RelationField{
			Name:          "input",
			Required:      true,
			CollectionId:  inputs.Id,
			CascadeDelete: true,
			MaxSelect:     1,
		})
		c.Fields.Add(&core.TextField{Name: "owner", Required: true})
		c.Fields.Add(&core.NumberField{Name: "price", Min: floatPtr(0)})
		c.Fields.Add(&core.DateField{Name: "date", Required: true})
		c.Fields.Add(&core.TextField{Name: "supplier"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.AddIndex("idx_input_prices_input", false, "input", "")
	})
	if err != nil {
		return err
	}

	_, err = ensureCollection(app, store.CompositionsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "owner", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.SelectField{
			Name:      "unit",
			Required:  true,
			Values:    unitValues(),
			MaxSelect: 1,
		})
		c.Fields.Add(&core.JSONField{Name: "items"})
		c.Fields.Add(&core.NumberField{Name: "stored_total"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_compositions_owner", false, "owner", "")
	})
	if err != nil {
		return err
	}

	_, err = ensureCollection(app, store.BudgetsCollection, func(c *core.Collection) {
		c.Fields.Add(&core.TextField{Name: "owner", Required: true})
		c.Fields.Add(&core.TextField{Name: "name", Required: true, Max: 200})
		c.Fields.Add(&core.TextField{Name: "description"})
		c.Fields.Add(&core.TextField{Name: "client"})
		c.Fields.Add(&core.TextField{Name: "address"})
		c.Fields.Add(&core.TextField{Name: "date"})
		c.Fields.Add(&core.SelectField{
			Name:      "status",
			Required:  true,
			Values:    statusValues(),
			MaxSelect: 1,
		})
		c.Fields.Add(&core.JSONField{Name: "packages", MaxSize: jsonTreeMaxSize})
		c.Fields.Add(&core.JSONField{Name: "instances", MaxSize: jsonTreeMaxSize})
		c.Fields.Add(&core.JSONField{Name: "bdi"})
		c.Fields.Add(&core.NumberField{Name: "total_value"})
		c.Fields.Add(&core.DateField{Name: "tree_updated_at"})
		c.Fields.Add(&core.AutodateField{Name: "created", OnCreate: true})
		c.Fields.Add(&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true})
		c.AddIndex("idx_budgets_owner", false, "owner", "")
	})
	return err
}

// ensureCollection returns the named collection, creating it with the fields
// added by addFields when it does not exist yet.
func ensureCollection(app core.App, name string, addFields func(*core.Collection)) (*core.Collection, error) {
	existing, err := app.FindCollectionByNameOrId(name)
	if err == nil && existing != nil {
		log.Debugf("collection %q already exists, skipping creation", name)
		return existing, nil
	}

	collection := core.NewBaseCollection(name)
	addFields(collection)

	if err := app.Save(collection); err != nil {
		return nil, fmt.Errorf("create collection %q: %w", name, err)
	}

	log.WithField("id", collection.Id).Infof("created collection %q", name)
	return collection, nil
}

func categoryValues() []string {
	out := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		out = append(out, string(c))
	}
	return out
}

func unitValues() []string {
	out := make([]string, 0, len(models.Units))
	for _, u := range models.Units {
		out = append(out, string(u))
	}
	return out
}

func statusValues() []string {
	out := make([]string, 0, len(models.Statuses))
	for _, s := range models.Statuses {
		out = append(out, string(s))
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }
