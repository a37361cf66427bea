package collections

import (
	"context"
	"fmt"
	"math"

	"github.com/pocketbase/pocketbase/core"
	log "github.com/sirupsen/logrus"

	"budgetcraft/services"
	"budgetcraft/store"
)

// totalTolerance is the largest drift accepted between a budget's cached
// total_value and the sum of its instances.
const totalTolerance = 0.005

// MigrateBudgetTotals recomputes the cached total_value of every budget whose
// stored value no longer matches its instances. Failures on one budget are
// logged and skipped. It returns the number of budgets updated.
func MigrateBudgetTotals(app core.App) (int, error) {
	records, err := app.FindAllRecords(store.BudgetsCollection)
	if err != nil {
		return 0, fmt.Errorf("migrate: could not query budgets: %w", err)
	}

	ctx := context.Background()
	st := store.NewPocketBaseStore(app)
	updated := 0
	for _, rec := range records {
		owner := rec.GetString("owner")
		b, err := st.GetBudget(ctx, owner, rec.Id)
		if err != nil {
			log.Warnf("migrate: failed to load budget %s: %v", rec.Id, err)
			continue
		}

		total := services.NewAggregator(b, nil).BudgetTotal()
		if math.Abs(total-b.TotalValue) <= totalTolerance {
			continue
		}

		log.WithFields(log.Fields{"budget": b.ID, "stored": b.TotalValue, "computed": total}).
			Info("migrate: correcting budget total")
		b.TotalValue = total
		if err := st.SaveBudget(ctx, &b); err != nil {
			log.Warnf("migrate: failed to save budget %s: %v", b.ID, err)
			continue
		}
		updated++
	}

	if updated > 0 {
		log.Infof("migrate: budget total migration complete, %d updated", updated)
	}
	return updated, nil
}
