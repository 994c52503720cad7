// Package measure implements the measured quantities of the recipe
// language (amounts, durations, temperatures) and renders them as
// approximate, human-readable text.
//
// Everything here is a pure value type. Nothing in this package performs
// I/O; conversion warnings are reported through a caller-supplied WarnFunc.
package measure

import (
	"errors"
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Units understood by the humanization routines.
const (
	Teaspoon   = "tsp"
	Tablespoon = "tbsp"
	Cup        = "cup"
	Pound      = "pound"
	Ounce      = "ounce"
	Liter      = "l"
	Milliliter = "ml"
	Gram       = "g"
	Kilogram   = "kg"
)

// Fixed default ratios used when an ingredient has no registered density.
const (
	OuncePerPound = 16.0
	CupPerLiter   = 4.226753
	PoundPerGram  = 0.002204623
)

// ErrNegativeAmount is returned when a measure is built from a negative
// or non-finite amount.
var ErrNegativeAmount = errors.New("amount must be a non-negative number")

// WarnFunc receives non-fatal conversion warnings. Its signature matches
// logger.Logger.Warn.
type WarnFunc func(format string, args ...any)

// Measure is an amount with optional units. Units is empty for unitless
// quantities ("3 eggs").
type Measure struct {
	Amount float64 `json:"amount"`
	Units  string  `json:"units,omitempty"`
}

// New builds a Measure, rejecting negative amounts.
func New(amount float64, units string) (Measure, error) {
	if err := checkAmount(amount); err != nil {
		return Measure{}, err
	}
	return Measure{Amount: amount, Units: units}, nil
}

func checkAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return fmt.Errorf("%w: %v", ErrNegativeAmount, amount)
	}
	return nil
}

// Humanize renders the amount without a trailing ".0", followed by the
// units when present.
func (m Measure) Humanize() string {
	s := formatAmount(m.Amount)
	if m.Units != "" {
		s += " " + m.Units
	}
	return s
}

// HumanizeConvert renders the measure and, where possible, appends a
// parenthesized imperial approximation.
//
// A registered Conversion is used when its metric unit matches. Without
// one, grams and liters fall back to fixed ratios; the missing density is
// reported through warn unless the ingredient is external, since those
// come from another closure and have no local density data.
func (m Measure) HumanizeConvert(symbol string, external bool, conv Converter, warn WarnFunc) string {
	amount := m.Humanize()
	if conv == nil {
		return amount
	}
	if warn == nil {
		warn = func(string, ...any) {}
	}

	if c, ok := conv.Lookup(symbol); ok {
		if m.Units == c.Metric {
			amount += humanizeImperial(m.Amount/c.Density, c.Imperial).Denormalize()
		}
		return amount
	}

	if m.Units == "" {
		return amount
	}
	if !external {
		warn("no conversion ratio for %s", symbol)
	}

	switch m.Units {
	case Gram:
		imperial := m.Amount * PoundPerGram
		if imperial < 0.25 {
			amount += HumanizeGeneric(imperial*OuncePerPound, Ounce).Denormalize()
		} else {
			amount += HumanizeGeneric(imperial, Pound).Denormalize()
		}
	case Liter:
		amount += HumanizeGeneric(m.Amount*CupPerLiter, Cup).Denormalize()
	default:
		warn("no default conversion for unit `%s`", m.Units)
	}
	return amount
}

// formatAmount prints f without trailing zeros. Twelve digits keep every
// significant decimal of an authored amount.
func formatAmount(f float64) string {
	return humanize.FtoaWithDigits(f, 12)
}
