package domain

import (
	"errors"
	"fmt"

	"github.com/hammamikhairi/bwyd/internal/measure"
)

// Sentinel errors used across layers.
var (
	ErrNotFound          = errors.New("not found")
	ErrUndefined         = errors.New("used but not defined")
	ErrFocusNotDefined   = errors.New("used before any FOCUS is defined")
	ErrExternalUndefined = errors.New("used but not produced by any closure")
	ErrBadURL            = errors.New("badly formatted URL")
	ErrUnknownLicense    = errors.New("unknown SPDX license ID")
	ErrRedundant         = errors.New("redundant declaration")
	ErrBadDate           = errors.New("unparseable date")
	ErrUnitMismatch      = errors.New("wrong units for ingredient list")
	ErrUnsupportedNode   = errors.New("unsupported node")
	ErrUnknownUnit       = measure.ErrUnknownUnit
)

// ResolutionError is a fatal interpretation error tied to one symbol at
// one source location.
type ResolutionError struct {
	Kind   string // what was referenced, e.g. "INGREDIENT", "BAKE CONTAINER"
	Symbol string
	Loc    Location
	Err    error
}

func (e *ResolutionError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s %v at %s", e.Kind, e.Err, e.Loc)
	}
	return fmt.Sprintf("%s `%s` %v at %s", e.Kind, e.Symbol, e.Err, e.Loc)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// AggregationError reports two Add operations on one ingredient with
// different units.
type AggregationError struct {
	Symbol string
	Units  string
	Want   string
	Loc    Location
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("%v `%s`: got %q, want %q at %s", ErrUnitMismatch, e.Symbol, e.Units, e.Want, e.Loc)
}

func (e *AggregationError) Unwrap() error { return ErrUnitMismatch }
