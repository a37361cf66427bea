package services

import (
	"net/http"

	"budgetcraft/apperrors"
	"budgetcraft/models"
)

var (
	ErrBudgetsRequired = &apperrors.AppError{Code: "BUDGETS_REQUIRED", Message: "Select two budgets to compare", StatusCode: http.StatusUnprocessableEntity}
	ErrSameBudget      = &apperrors.AppError{Code: "SAME_BUDGET", Message: "Select two different budgets to compare", StatusCode: http.StatusUnprocessableEntity}
)

// Display classes for a signed difference.
const (
	ClassNeutral = "neutral"
	ClassSuccess = "success"
	ClassDanger  = "danger"
)

// Presence of a package name in the compared budgets.
const (
	OnlyInFirst  = "first"
	OnlyInSecond = "second"
	InBoth       = "both"
)

// DiffClass maps the sign of d to a display class.
func DiffClass(d float64) string {
	switch {
	case d > 0:
		return ClassSuccess
	case d < 0:
		return ClassDanger
	default:
		return ClassNeutral
	}
}

type BudgetTotals struct {
	BudgetID string `json:"budget_id"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Markup   Markup `json:"markup"`
}

// Difference is second minus first. Percent is relative to first and only
// meaningful when HasRelative is set.
type Difference struct {
	Value       float64 `json:"value"`
	Percent     float64 `json:"percent"`
	HasRelative bool    `json:"has_relative"`
	Class       string  `json:"class"`
}

func diff(first, second float64) Difference {
	d := Difference{Value: second - first}
	if first != 0 {
		d.Percent = d.Value / first * 100
		d.HasRelative = true
	}
	d.Class = DiffClass(d.Value)
	return d
}

// PackageComparison aligns packages of both budgets by name. Totals include
// each budget's own BDI.
type PackageComparison struct {
	Name       string     `json:"name"`
	First      float64    `json:"first"`
	Second     float64    `json:"second"`
	Difference Difference `json:"difference"`
	OnlyIn     string     `json:"only_in"`
}

type Comparison struct {
	First    BudgetTotals        `json:"first"`
	Second   BudgetTotals        `json:"second"`
	Base     Difference          `json:"base"`
	MarkedUp Difference          `json:"marked_up"`
	Packages []PackageComparison `json:"packages"`
	Warnings []Warning           `json:"warnings,omitempty"`
}

// CompareBudgets diffs second against first. Packages sharing a name within
// one budget are summed; names are listed in first-budget order, then the
// names only the second budget has.
func CompareBudgets(first, second models.Budget) (Comparison, error) {
	if first.ID == "" || second.ID == "" {
		return Comparison{}, ErrBudgetsRequired
	}
	if first.ID == second.ID {
		return Comparison{}, ErrSameBudget
	}

	aggFirst := NewAggregator(first, nil)
	aggSecond := NewAggregator(second, nil)

	out := Comparison{
		First:    budgetTotals(first, aggFirst),
		Second:   budgetTotals(second, aggSecond),
		Packages: []PackageComparison{},
	}
	out.Base = diff(out.First.Markup.Base, out.Second.Markup.Base)
	out.MarkedUp = diff(out.First.Markup.Total, out.Second.Markup.Total)

	firstTotals, firstNames := packageTotalsByName(first, aggFirst)
	secondTotals, secondNames := packageTotalsByName(second, aggSecond)

	names := append([]string(nil), firstNames...)
	for _, n := range secondNames {
		if _, ok := firstTotals[n]; !ok {
			names = append(names, n)
		}
	}
	for _, n := range names {
		a, inFirst := firstTotals[n]
		b, inSecond := secondTotals[n]
		pc := PackageComparison{Name: n, First: a, Second: b, Difference: diff(a, b), OnlyIn: InBoth}
		switch {
		case !inSecond:
			pc.OnlyIn = OnlyInFirst
		case !inFirst:
			pc.OnlyIn = OnlyInSecond
		}
		out.Packages = append(out.Packages, pc)
	}

	out.Warnings = append(aggFirst.Warnings(), aggSecond.Warnings()...)
	return out, nil
}

func budgetTotals(b models.Budget, agg *Aggregator) BudgetTotals {
	return BudgetTotals{
		BudgetID: b.ID,
		Name:     b.Name,
		Status:   string(b.Status),
		Markup:   ApplyBDI(agg.BudgetTotal(), b.BDI),
	}
}

func packageTotalsByName(b models.Budget, agg *Aggregator) (map[string]float64, []string) {
	totals := make(map[string]float64, len(b.Packages))
	var names []string
	for _, p := range b.Packages {
		if _, ok := totals[p.Name]; !ok {
			names = append(names, p.Name)
		}
		totals[p.Name] += MarkedUpTotal(agg.PackageTotal(p.ID), b.BDI)
	}
	return totals, names
}
