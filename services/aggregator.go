package services

import (
	"fmt"

	"budgetcraft/models"
)

// CategorySplit is a cost broken down by input category.
type CategorySplit struct {
	Material  float64 `json:"material"`
	Labor     float64 `json:"labor"`
	Equipment float64 `json:"equipment"`
	Service   float64 `json:"service"`
}

// FallbackSplit is applied to an instance's total when replaying its items
// yields nothing (empty item list or deleted inputs).
var FallbackSplit = CategorySplit{Material: 0.70, Labor: 0.20, Equipment: 0.05, Service: 0.05}

// Add credits v to category c; unknown categories count as Material.
func (s *CategorySplit) Add(c models.Category, v float64) {
	switch c.Normalize() {
	case models.CategoryLabor:
		s.Labor += v
	case models.CategoryEquipment:
		s.Equipment += v
	case models.CategoryService:
		s.Service += v
	default:
		s.Material += v
	}
}

func (s CategorySplit) Get(c models.Category) float64 {
	switch c.Normalize() {
	case models.CategoryLabor:
		return s.Labor
	case models.CategoryEquipment:
		return s.Equipment
	case models.CategoryService:
		return s.Service
	default:
		return s.Material
	}
}

func (s CategorySplit) Scale(f float64) CategorySplit {
	return CategorySplit{Material: s.Material * f, Labor: s.Labor * f, Equipment: s.Equipment * f, Service: s.Service * f}
}

func (s CategorySplit) Plus(o CategorySplit) CategorySplit {
	return CategorySplit{
		Material:  s.Material + o.Material,
		Labor:     s.Labor + o.Labor,
		Equipment: s.Equipment + o.Equipment,
		Service:   s.Service + o.Service,
	}
}

func (s CategorySplit) Total() float64 {
	return s.Material + s.Labor + s.Equipment + s.Service
}

// Aggregator derives totals from one budget snapshot and one input catalog
// snapshot. It never mutates either.
type Aggregator struct {
	budget   models.Budget
	inputs   InputIndex
	orphaned map[string]bool
	warnings warningSet
}

// NewAggregator indexes the snapshot and flags instances whose package or
// subgroup tags do not resolve; those contribute zero everywhere.
func NewAggregator(b models.Budget, inputs []models.Input) *Aggregator {
	a := &Aggregator{budget: b, inputs: IndexInputs(inputs), orphaned: make(map[string]bool)}
	for _, inst := range b.Instances {
		switch {
		case b.PackageIndex(inst.PackageID) < 0:
			a.orphaned[inst.ID] = true
			a.warnings.add(Warning{
				Code:       WarnMissingPackage,
				Message:    fmt.Sprintf("instance %q references missing package %s", inst.Name, inst.PackageID),
				InstanceID: inst.ID,
				RefID:      inst.PackageID,
			})
		case !b.HasSubgroup(inst.PackageID, inst.SubgroupID):
			a.orphaned[inst.ID] = true
			a.warnings.add(Warning{
				Code:       WarnMissingSubgroup,
				Message:    fmt.Sprintf("instance %q references subgroup %s outside package %s", inst.Name, inst.SubgroupID, inst.PackageID),
				InstanceID: inst.ID,
				RefID:      inst.SubgroupID,
			})
		}
	}
	return a
}

// Counted reports whether inst resolves to a package and subgroup of the
// budget. Instances that do not are costed as zero.
func (a *Aggregator) Counted(inst models.CompositionInstance) bool {
	return !a.orphaned[inst.ID]
}

func (a *Aggregator) PackageTotal(packageID string) float64 {
	var total float64
	for _, inst := range a.budget.Instances {
		if !a.orphaned[inst.ID] && inst.PackageID == packageID {
			total += inst.TotalCost
		}
	}
	return total
}

func (a *Aggregator) SubgroupTotal(packageID, subgroupID string) float64 {
	var total float64
	for _, inst := range a.budget.Instances {
		if !a.orphaned[inst.ID] && inst.PackageID == packageID && inst.SubgroupID == subgroupID {
			total += inst.TotalCost
		}
	}
	return total
}

func (a *Aggregator) BudgetTotal() float64 {
	var total float64
	for _, inst := range a.budget.Instances {
		if !a.orphaned[inst.ID] {
			total += inst.TotalCost
		}
	}
	return total
}

// CategoryBreakdown replays the instance's frozen items against current
// input categories and prices, scaled by the instance quantity. Legacy items
// have no input to replay and fall through to FallbackSplit.
func (a *Aggregator) CategoryBreakdown(inst models.CompositionInstance) CategorySplit {
	var perUnit CategorySplit
	for _, it := range inst.Items {
		if it.InputID == "" {
			continue
		}
		in, ok := a.inputs[it.InputID]
		if !ok {
			a.warnings.add(missingInputWarning(inst.ID, it.InputID))
			continue
		}
		perUnit.Add(in.Category, it.Quantity*in.UnitPrice)
	}
	split := perUnit.Scale(inst.Quantity)
	if split.Material == 0 && split.Labor == 0 && split.Equipment == 0 && split.Service == 0 {
		return FallbackSplit.Scale(inst.TotalCost)
	}
	return split
}

func (a *Aggregator) SubgroupBreakdown(packageID, subgroupID string) CategorySplit {
	var out CategorySplit
	for _, inst := range a.budget.Instances {
		if !a.orphaned[inst.ID] && inst.PackageID == packageID && inst.SubgroupID == subgroupID {
			out = out.Plus(a.CategoryBreakdown(inst))
		}
	}
	return out
}

func (a *Aggregator) PackageBreakdown(packageID string) CategorySplit {
	var out CategorySplit
	for _, inst := range a.budget.Instances {
		if !a.orphaned[inst.ID] && inst.PackageID == packageID {
			out = out.Plus(a.CategoryBreakdown(inst))
		}
	}
	return out
}

func (a *Aggregator) BudgetBreakdown() CategorySplit {
	var out CategorySplit
	for _, inst := range a.budget.Instances {
		if !a.orphaned[inst.ID] {
			out = out.Plus(a.CategoryBreakdown(inst))
		}
	}
	return out
}

// Warnings lists every inconsistency seen so far, including those found by
// breakdown calls.
func (a *Aggregator) Warnings() []Warning {
	return a.warnings.items()
}

// PercentOf returns part as a percentage of total, or 0 when total is 0.
func PercentOf(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part * 100 / total
}
