package domain

import "fmt"

// WarningKind classifies non-fatal findings.
type WarningKind int

const (
	// WarnUnused is a declared container, tool or ingredient never referenced.
	WarnUnused WarningKind = iota
	// WarnConversion is an ingredient/unit pair rendered without an imperial
	// annotation or with a default ratio.
	WarnConversion
	// WarnDuplicate is a closure name declared twice in one module.
	WarnDuplicate
	// WarnAggregation is a unit mismatch skipped under lenient units.
	WarnAggregation
)

// String returns a human-readable warning kind.
func (k WarningKind) String() string {
	switch k {
	case WarnUnused:
		return "unused"
	case WarnConversion:
		return "conversion"
	case WarnDuplicate:
		return "duplicate"
	case WarnAggregation:
		return "aggregation"
	default:
		return "unknown"
	}
}

// Warning is a consistency or conversion issue that does not stop
// processing.
type Warning struct {
	Kind    WarningKind
	Symbol  string
	Loc     Location
	Message string
}

func (w Warning) String() string {
	if w.Loc == (Location{}) {
		return fmt.Sprintf("%s: %s", w.Kind, w.Message)
	}
	return fmt.Sprintf("%s: %s at %s", w.Kind, w.Message, w.Loc)
}
