package services

import "budgetcraft/models"

type InstanceSummary struct {
	models.CompositionInstance
	Breakdown CategorySplit `json:"breakdown"`
	Percent   float64       `json:"percent"`
}

type SubgroupSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Order     int               `json:"order"`
	Total     float64           `json:"total"`
	Percent   float64           `json:"percent"`
	Breakdown CategorySplit     `json:"breakdown"`
	Instances []InstanceSummary `json:"instances"`
}

type PackageSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Order     int               `json:"order"`
	Total     float64           `json:"total"`
	Percent   float64           `json:"percent"`
	Breakdown CategorySplit     `json:"breakdown"`
	Subgroups []SubgroupSummary `json:"subgroups"`
}

// BudgetSummary is the priced cost tree of one budget.
type BudgetSummary struct {
	BudgetID    string           `json:"budget_id"`
	Name        string           `json:"name"`
	Client      string           `json:"client"`
	Address     string           `json:"address"`
	Date        string           `json:"date"`
	Status      string           `json:"status"`
	StatusClass string           `json:"status_class"`
	Packages    []PackageSummary `json:"packages"`
	Total       float64          `json:"total"`
	Breakdown   CategorySplit    `json:"breakdown"`
	Markup      Markup           `json:"markup"`
	Warnings    []Warning        `json:"warnings,omitempty"`
}

// Summarize prices the whole tree of b against one catalog snapshot.
func Summarize(b models.Budget, inputs []models.Input) BudgetSummary {
	agg := NewAggregator(b, inputs)
	total := agg.BudgetTotal()
	out := BudgetSummary{
		BudgetID:    b.ID,
		Name:        b.Name,
		Client:      b.Client,
		Address:     b.Address,
		Date:        b.Date,
		Status:      string(b.Status),
		StatusClass: b.Status.DisplayClass(),
		Packages:    make([]PackageSummary, 0, len(b.Packages)),
		Total:       total,
		Markup:      ApplyBDI(total, b.BDI),
	}
	for _, p := range b.Packages {
		ps := PackageSummary{
			ID:        p.ID,
			Name:      p.Name,
			Order:     p.Order,
			Total:     agg.PackageTotal(p.ID),
			Subgroups: make([]SubgroupSummary, 0, len(p.Subgroups)),
		}
		ps.Percent = PercentOf(ps.Total, total)
		for _, sg := range p.Subgroups {
			ss := SubgroupSummary{
				ID:        sg.ID,
				Name:      sg.Name,
				Order:     sg.Order,
				Total:     agg.SubgroupTotal(p.ID, sg.ID),
				Instances: []InstanceSummary{},
			}
			ss.Percent = PercentOf(ss.Total, total)
			for _, inst := range SubgroupInstances(b, p.ID, sg.ID) {
				split := agg.CategoryBreakdown(inst)
				ss.Breakdown = ss.Breakdown.Plus(split)
				ss.Instances = append(ss.Instances, InstanceSummary{
					CompositionInstance: inst,
					Breakdown:           split,
					Percent:             PercentOf(inst.TotalCost, total),
				})
			}
			ps.Breakdown = ps.Breakdown.Plus(ss.Breakdown)
			ps.Subgroups = append(ps.Subgroups, ss)
		}
		out.Breakdown = out.Breakdown.Plus(ps.Breakdown)
		out.Packages = append(out.Packages, ps)
	}
	out.Warnings = agg.Warnings()
	return out
}
