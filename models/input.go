package models

import (
	"sort"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// PricePoint is one entry of an input's price history.
type PricePoint struct {
	Price    float64   `json:"price"`
	Date     time.Time `json:"date"`
	Supplier string    `json:"supplier"`
}

// Validate implements validation.Validatable.
func (p PricePoint) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Price, validation.Min(0.0)),
		validation.Field(&p.Date, validation.Required),
	)
}

// Input is a priced catalog item. UnitPrice always mirrors the most recent
// History entry; use ApplyPrice to change it.
type Input struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Name      string       `json:"name"`
	Category  Category     `json:"category"`
	Unit      Unit         `json:"unit"`
	UnitPrice float64      `json:"unit_price"`
	History   []PricePoint `json:"history,omitempty"`
	Created   time.Time    `json:"created"`
	Updated   time.Time    `json:"updated"`
}

// Validate implements validation.Validatable.
func (i Input) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.OwnerID, validation.Required),
		validation.Field(&i.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&i.Category, validation.Required, validation.By(func(v interface{}) error {
			if c, _ := v.(Category); !c.Valid() {
				return validation.NewError("validation_category", "must be a known category")
			}
			return nil
		})),
		validation.Field(&i.Unit, validation.Required, validation.By(validUnit)),
		validation.Field(&i.UnitPrice, validation.Min(0.0)),
	)
}

func validUnit(v interface{}) error {
	if u, _ := v.(Unit); !u.Valid() {
		return validation.NewError("validation_unit", "must be a unit from the catalog list")
	}
	return nil
}

// LatestPrice returns the most recent history entry.
func (i Input) LatestPrice() (PricePoint, bool) {
	if len(i.History) == 0 {
		return PricePoint{}, false
	}
	return i.History[len(i.History)-1], true
}

// ApplyPrice inserts p into the history in date order and resyncs UnitPrice
// with the newest entry.
func (i *Input) ApplyPrice(p PricePoint) {
	i.History = append(i.History, p)
	sort.SliceStable(i.History, func(a, b int) bool {
		return i.History[a].Date.Before(i.History[b].Date)
	})
	latest, _ := i.LatestPrice()
	i.UnitPrice = latest.Price
}

// NormalizedName is the key used for per-owner name uniqueness.
func NormalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
