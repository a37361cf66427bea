package services

import "fmt"

// WarningCode classifies a referential inconsistency found while costing.
type WarningCode string

const (
	WarnMissingPackage  WarningCode = "missing_package"
	WarnMissingSubgroup WarningCode = "missing_subgroup"
	WarnMissingInput    WarningCode = "missing_input"
)

// Warning reports an entry that was costed as zero instead of failing the
// whole computation.
type Warning struct {
	Code       WarningCode `json:"code"`
	Message    string      `json:"message"`
	InstanceID string      `json:"instance_id,omitempty"`
	RefID      string      `json:"ref_id"`
}

func missingInputWarning(instanceID, inputID string) Warning {
	return Warning{
		Code:       WarnMissingInput,
		Message:    fmt.Sprintf("input %s no longer exists in the catalog", inputID),
		InstanceID: instanceID,
		RefID:      inputID,
	}
}

// warningSet keeps warnings in first-seen order without duplicates.
type warningSet struct {
	seen map[Warning]bool
	list []Warning
}

func (w *warningSet) add(warn Warning) {
	if w.seen == nil {
		w.seen = make(map[Warning]bool)
	}
	if w.seen[warn] {
		return
	}
	w.seen[warn] = true
	w.list = append(w.list, warn)
}

func (w *warningSet) items() []Warning {
	return append([]Warning(nil), w.list...)
}
