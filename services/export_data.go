package services

import (
	"fmt"
	"time"
)

// ExportRow represents a single row in the budget export (package, subgroup
// or composition instance).
type ExportRow struct {
	Level       int    // 0 = package, 1 = subgroup, 2 = composition instance
	Index       string // "1", "1.1", "1.1.1" etc
	Description string
	Unit        string
	Qty         float64
	UnitCost    float64
	Total       float64
	Percent     float64
}

// ExportOptions carries presentation settings shared by every export.
type ExportOptions struct {
	Company     string
	Orientation string // "landscape" or "portrait"
}

// ExportData holds all data needed for a budget export.
type ExportData struct {
	Title         string
	Client        string
	Address       string
	BudgetDate    string
	Status        string
	CreatedDate   string
	Rows          []ExportRow
	BaseTotal     float64
	Breakdown     CategorySplit
	BDIConfigured bool
	BDILabel      string
	BDIValue      float64
	MarkedUpTotal float64
}

// BuildBudgetExport flattens a priced tree into indexed export rows.
func BuildBudgetExport(s BudgetSummary, generated time.Time) ExportData {
	data := ExportData{
		Title:         s.Name,
		Client:        s.Client,
		Address:       s.Address,
		BudgetDate:    s.Date,
		Status:        s.Status,
		CreatedDate:   generated.Format("02/01/2006"),
		Rows:          []ExportRow{},
		BaseTotal:     s.Total,
		Breakdown:     s.Breakdown,
		BDIConfigured: s.Markup.Configured,
		BDILabel:      FormatBDI(s.Markup.Config),
		BDIValue:      s.Markup.BDIValue,
		MarkedUpTotal: s.Markup.Total,
	}
	for pi, p := range s.Packages {
		pIdx := fmt.Sprintf("%d", pi+1)
		data.Rows = append(data.Rows, ExportRow{Level: 0, Index: pIdx, Description: p.Name, Total: p.Total, Percent: p.Percent})
		for si, sg := range p.Subgroups {
			sIdx := fmt.Sprintf("%s.%d", pIdx, si+1)
			data.Rows = append(data.Rows, ExportRow{Level: 1, Index: sIdx, Description: sg.Name, Total: sg.Total, Percent: sg.Percent})
			for ii, inst := range sg.Instances {
				data.Rows = append(data.Rows, ExportRow{
					Level:       2,
					Index:       fmt.Sprintf("%s.%d", sIdx, ii+1),
					Description: inst.Name,
					Unit:        string(inst.Unit),
					Qty:         inst.Quantity,
					UnitCost:    inst.UnitCost,
					Total:       inst.TotalCost,
					Percent:     inst.Percent,
				})
			}
		}
	}
	return data
}
