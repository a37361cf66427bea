package services

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"budgetcraft/models"
)

// brlFormat groups thousands with dots and uses a comma for cents.
const brlFormat = "#.###,##"

// FormatBRL formats an amount in Brazilian Real notation, e.g. R$ 1.234,56.
// Negative amounts carry a leading minus sign before the currency symbol.
func FormatBRL(amount float64) string {
	if amount < 0 {
		return "-R$ " + humanize.FormatFloat(brlFormat, -amount)
	}
	return "R$ " + humanize.FormatFloat(brlFormat, amount)
}

// FormatSignedBRL is FormatBRL with an explicit plus sign on positive
// amounts, used for comparison differences.
func FormatSignedBRL(amount float64) string {
	if amount > 0 {
		return "+" + FormatBRL(amount)
	}
	return FormatBRL(amount)
}

// FormatPercent renders a percentage with one decimal. Shares that are
// positive but would round to 0.0 are shown as "<0.1".
func FormatPercent(p float64) string {
	if p > 0 && p < 0.1 {
		return "<0.1"
	}
	if p == 0 {
		return "0.0"
	}
	return fmt.Sprintf("%.1f", p)
}

// FormatBDI renders the composite BDI percentage, or "Não aplicado" when the
// budget carries no BDI configuration.
func FormatBDI(cfg *models.BDIConfig) string {
	if cfg == nil {
		return "Não aplicado"
	}
	return humanize.FormatFloat(brlFormat, BDIPercent(*cfg)) + "%"
}

// RoundMoney rounds to whole cents.
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
