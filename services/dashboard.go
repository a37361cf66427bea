package services

import "budgetcraft/models"

// Dashboard is the owner's landing overview. Totals use each budget's cached
// base value.
type Dashboard struct {
	Inputs        int                         `json:"inputs"`
	Compositions  int                         `json:"compositions"`
	Budgets       int                         `json:"budgets"`
	BaseTotal     float64                     `json:"base_total"`
	MarkedUpTotal float64                     `json:"marked_up_total"`
	ByStatus      map[models.BudgetStatus]int `json:"by_status"`
	Recent        []BudgetCard                `json:"recent"`
}

// BudgetCard is the short form of a budget shown in lists.
type BudgetCard struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Client      string  `json:"client"`
	Status      string  `json:"status"`
	StatusClass string  `json:"status_class"`
	Total       float64 `json:"total"`
	TotalLabel  string  `json:"total_label"`
	BDILabel    string  `json:"bdi_label"`
}

const recentBudgets = 5

func NewBudgetCard(b models.Budget) BudgetCard {
	return BudgetCard{
		ID:          b.ID,
		Name:        b.Name,
		Client:      b.Client,
		Status:      string(b.Status),
		StatusClass: b.Status.DisplayClass(),
		Total:       b.TotalValue,
		TotalLabel:  FormatBRL(b.TotalValue),
		BDILabel:    FormatBDI(b.BDI),
	}
}

func BuildDashboard(inputs []models.Input, comps []models.Composition, budgets []models.Budget) Dashboard {
	d := Dashboard{
		Inputs:       len(inputs),
		Compositions: len(comps),
		Budgets:      len(budgets),
		ByStatus:     make(map[models.BudgetStatus]int),
		Recent:       []BudgetCard{},
	}
	for _, b := range budgets {
		d.BaseTotal += b.TotalValue
		d.MarkedUpTotal += MarkedUpTotal(b.TotalValue, b.BDI)
		d.ByStatus[b.Status]++
	}
	for _, b := range FilterBudgets(budgets, "") {
		if len(d.Recent) == recentBudgets {
			break
		}
		d.Recent = append(d.Recent, NewBudgetCard(b))
	}
	return d
}
