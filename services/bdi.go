package services

import "budgetcraft/models"

// BDIFactor is the compounded markup fraction:
// (1+profit)(1+taxes)(1+financial)(1+guarantees) - 1, each as a percentage.
func BDIFactor(cfg models.BDIConfig) float64 {
	return (1+cfg.Profit/100)*(1+cfg.Taxes/100)*(1+cfg.Financial/100)*(1+cfg.Guarantees/100) - 1
}

// BDIPercent is BDIFactor expressed as a percentage.
func BDIPercent(cfg models.BDIConfig) float64 {
	return BDIFactor(cfg) * 100
}

// MarkedUpTotal applies the markup to base. A nil config leaves base unchanged.
func MarkedUpTotal(base float64, cfg *models.BDIConfig) float64 {
	if cfg == nil {
		return base
	}
	return base * (1 + BDIFactor(*cfg))
}

// BDIValue is the markup amount alone.
func BDIValue(base float64, cfg *models.BDIConfig) float64 {
	if cfg == nil {
		return 0
	}
	return base * BDIFactor(*cfg)
}

// Markup is the result of applying a budget's BDI to its base total.
// Configured is false when the budget has no BDI at all, which is distinct
// from a configuration whose factors are all zero.
type Markup struct {
	Configured bool              `json:"configured"`
	Config     *models.BDIConfig `json:"config,omitempty"`
	Factor     float64           `json:"factor"`
	Percent    float64           `json:"percent"`
	Base       float64           `json:"base"`
	BDIValue   float64           `json:"bdi_value"`
	Total      float64           `json:"total"`
}

func ApplyBDI(base float64, cfg *models.BDIConfig) Markup {
	m := Markup{Base: base, Total: base}
	if cfg == nil {
		return m
	}
	c := *cfg
	m.Configured = true
	m.Config = &c
	m.Factor = BDIFactor(c)
	m.Percent = m.Factor * 100
	m.BDIValue = base * m.Factor
	m.Total = base + m.BDIValue
	return m
}
