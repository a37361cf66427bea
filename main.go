package main

import (
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"

	"budgetcraft/collections"
	"budgetcraft/config"
	"budgetcraft/events"
	"budgetcraft/handlers"
	"budgetcraft/services"
	"budgetcraft/store"
)

func main() {
	cfg, err := config.Load("budgetcraft.yaml")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	log.SetLevel(cfg.LogLevel())

	app := pocketbase.New()
	st := store.NewPocketBaseStore(app)

	bus := events.NewBus()
	(&services.CompositionTotalsRecalculator{Store: st}).Register(bus)

	// Create collections, seed demo data and repair cached totals on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		if err := collections.Setup(app); err != nil {
			return err
		}
		if cfg.Seed.Enabled {
			if err := collections.Seed(app, cfg.Seed.Owner); err != nil {
				log.Warnf("seed data failed: %v", err)
			}
		}
		if cfg.Migrate.Totals {
			if n, err := collections.MigrateBudgetTotals(app); err != nil {
				log.Warnf("budget totals migration failed: %v", err)
			} else if n > 0 {
				log.Infof("budget totals migration updated %d budgets", n)
			}
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		handlers.RegisterRoutes(se, &handlers.Deps{
			Store: st,
			Bus:   bus,
			Export: services.ExportOptions{
				Company:     cfg.Export.Company,
				Orientation: cfg.Export.Orientation,
			},
			MaxImportRows: cfg.Import.MaxRows,
		})
		return se.Next()
	})

	app.RootCmd.AddCommand(newABCCommand(app, st), newRecalcCommand(app))

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}
