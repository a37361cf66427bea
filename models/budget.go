package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// BDIConfig holds the four compounding markup percentages.
type BDIConfig struct {
	Profit     float64 `json:"profit"`
	Taxes      float64 `json:"taxes"`
	Financial  float64 `json:"financial"`
	Guarantees float64 `json:"guarantees"`
}

// Validate implements validation.Validatable.
func (c BDIConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Profit, validation.Min(0.0)),
		validation.Field(&c.Taxes, validation.Min(0.0)),
		validation.Field(&c.Financial, validation.Min(0.0)),
		validation.Field(&c.Guarantees, validation.Min(0.0)),
	)
}

type Subgroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

type Package struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Order     int        `json:"order"`
	Subgroups []Subgroup `json:"subgroups"`
}

// CompositionInstance is a composition frozen into a budget at bind time.
// Items is a copy of the composition's item list as it was when bound, and
// UnitCost never follows later catalog price changes.
type CompositionInstance struct {
	ID            string            `json:"id"`
	CompositionID string            `json:"composition_id"`
	PackageID     string            `json:"package_id"`
	SubgroupID    string            `json:"subgroup_id"`
	Name          string            `json:"name"`
	Unit          Unit              `json:"unit"`
	Quantity      float64           `json:"quantity"`
	UnitCost      float64           `json:"unit_cost"`
	TotalCost     float64           `json:"total_cost"`
	Items         []CompositionItem `json:"items"`
	Order         int               `json:"order"`
	BoundAt       time.Time         `json:"bound_at"`
}

// Budget is the aggregate root of the cost tree. Instances are kept flat and
// tagged with their package and subgroup ids.
type Budget struct {
	ID            string                `json:"id"`
	OwnerID       string                `json:"owner_id"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	Client        string                `json:"client"`
	Address       string                `json:"address"`
	Date          string                `json:"date"`
	Status        BudgetStatus          `json:"status"`
	Packages      []Package             `json:"packages"`
	Instances     []CompositionInstance `json:"instances"`
	BDI           *BDIConfig            `json:"bdi,omitempty"`
	TotalValue    float64               `json:"total_value"`
	Created       time.Time             `json:"created"`
	TreeUpdatedAt time.Time             `json:"tree_updated_at"`
}

// Validate implements validation.Validatable.
func (b Budget) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.OwnerID, validation.Required),
		validation.Field(&b.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&b.Date, validation.Date("2006-01-02")),
		validation.Field(&b.Status, validation.Required, validation.By(func(v interface{}) error {
			if s, _ := v.(BudgetStatus); !s.Valid() {
				return validation.NewError("validation_status", "must be a known budget status")
			}
			return nil
		})),
		validation.Field(&b.BDI),
	)
}

// Clone returns a deep copy so tree mutations never touch the caller's value.
func (b Budget) Clone() Budget {
	out := b
	out.Packages = make([]Package, len(b.Packages))
	for i, p := range b.Packages {
		p.Subgroups = append([]Subgroup(nil), p.Subgroups...)
		out.Packages[i] = p
	}
	out.Instances = make([]CompositionInstance, len(b.Instances))
	for i, inst := range b.Instances {
		inst.Items = append([]CompositionItem(nil), inst.Items...)
		out.Instances[i] = inst
	}
	if b.BDI != nil {
		cfg := *b.BDI
		out.BDI = &cfg
	}
	return out
}

// PackageIndex returns the slice position of the package with the given id, or -1.
func (b Budget) PackageIndex(packageID string) int {
	for i, p := range b.Packages {
		if p.ID == packageID {
			return i
		}
	}
	return -1
}

// HasSubgroup reports whether subgroupID belongs to packageID.
func (b Budget) HasSubgroup(packageID, subgroupID string) bool {
	idx := b.PackageIndex(packageID)
	if idx < 0 {
		return false
	}
	for _, sg := range b.Packages[idx].Subgroups {
		if sg.ID == subgroupID {
			return true
		}
	}
	return false
}

// HasStructure reports whether the budget has at least one package.
func (b Budget) HasStructure() bool {
	return len(b.Packages) > 0
}
