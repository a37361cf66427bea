package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CompositionItem is one input line of a composition. LegacyCost is only set on
// compositions imported with pre-aggregated line costs and no input linkage.
type CompositionItem struct {
	InputID    string  `json:"input_id"`
	Quantity   float64 `json:"quantity"`
	LegacyCost float64 `json:"legacy_cost,omitempty"`
}

// Validate implements validation.Validatable.
func (ci CompositionItem) Validate() error {
	return validation.ValidateStruct(&ci,
		validation.Field(&ci.InputID, validation.When(ci.LegacyCost == 0, validation.Required)),
		validation.Field(&ci.Quantity, validation.Required, validation.Min(0.0).Exclusive()),
	)
}

// Composition is a named assembly of inputs. Its unit cost is derived from live
// input prices; StoredTotal is the persisted copy kept in sync by price
// propagation and used as-is for legacy compositions.
type Composition struct {
	ID          string            `json:"id"`
	OwnerID     string            `json:"owner_id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Unit        Unit              `json:"unit"`
	Items       []CompositionItem `json:"items"`
	StoredTotal float64           `json:"stored_total"`
	Created     time.Time         `json:"created"`
	Updated     time.Time         `json:"updated"`
}

// Validate implements validation.Validatable.
func (c Composition) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.OwnerID, validation.Required),
		validation.Field(&c.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&c.Unit, validation.Required, validation.By(validUnit)),
		validation.Field(&c.Items),
	)
}

// IsLegacy reports whether no item carries an input reference.
func (c Composition) IsLegacy() bool {
	for _, it := range c.Items {
		if it.InputID != "" {
			return false
		}
	}
	return true
}

// References reports whether inputID appears in the item list.
func (c Composition) References(inputID string) bool {
	for _, it := range c.Items {
		if it.InputID == inputID {
			return true
		}
	}
	return false
}
