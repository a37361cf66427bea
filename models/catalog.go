// Package models holds the budgeting domain types shared by the store,
// the cost services and the HTTP handlers.
package models

import "strings"

// Category is the resource class an input belongs to.
type Category string

const (
	CategoryMaterial  Category = "Material"
	CategoryLabor     Category = "Labor"
	CategoryEquipment Category = "Equipment"
	CategoryService   Category = "Service"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMaterial, CategoryLabor, CategoryEquipment, CategoryService}

var categoryLabels = map[Category]string{
	CategoryMaterial:  "Material",
	CategoryLabor:     "Mão de Obra",
	CategoryEquipment: "Equipamento",
	CategoryService:   "Serviço",
}

// Label returns the Portuguese label used in exports and imports.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Normalize maps unknown categories to Material so aggregation never loses a bucket.
func (c Category) Normalize() Category {
	if c.Valid() {
		return c
	}
	return CategoryMaterial
}

// ParseCategory accepts either the canonical name or the Portuguese label,
// ignoring case and surrounding whitespace.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) || strings.EqualFold(s, c.Label()) {
			return c, true
		}
	}
	return "", false
}

// Unit is a unit of measure from the fixed catalog list.
type Unit string

// Units is the fixed unit list offered for inputs and compositions.
var Units = []Unit{
	"CJ", "DIA", "DM3", "H", "HA", "HxMÊS", "JG", "KG", "KM", "KWH",
	"L", "M", "M/L", "M2", "M2xMÊS", "M3", "M3xMÊS", "MÊS", "MIL", "ML",
	"PAR", "PÇ", "RL", "T", "UN", "UNxMÊS",
}

// Valid reports whether u is in Units (exact match).
func (u Unit) Valid() bool {
	for _, known := range Units {
		if u == known {
			return true
		}
	}
	return false
}

// ParseUnit finds the canonical spelling of s in Units, ignoring case.
func ParseUnit(s string) (Unit, bool) {
	s = strings.TrimSpace(s)
	for _, known := range Units {
		if strings.EqualFold(s, string(known)) {
			return known, true
		}
	}
	return "", false
}

// BudgetStatus is a free label; any value from Statuses may be set at any time.
type BudgetStatus string

const (
	StatusUnderReview BudgetStatus = "Under Review"
	StatusApproved    BudgetStatus = "Approved"
	StatusRejected    BudgetStatus = "Rejected"
	StatusInExecution BudgetStatus = "In Execution"
	StatusCompleted   BudgetStatus = "Completed"
)

// Statuses lists the selectable budget statuses.
var Statuses = []BudgetStatus{StatusUnderReview, StatusApproved, StatusRejected, StatusInExecution, StatusCompleted}

// Valid reports whether s is one of Statuses.
func (s BudgetStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// DisplayClass returns the badge class shown next to a status.
func (s BudgetStatus) DisplayClass() string {
	switch s {
	case StatusUnderReview:
		return "warning"
	case StatusApproved:
		return "success"
	case StatusRejected:
		return "danger"
	case StatusInExecution:
		return "info"
	case StatusCompleted:
		return "primary"
	}
	return "secondary"
}
