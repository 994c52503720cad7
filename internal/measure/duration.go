package measure

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jinzhu/inflection"
)

// Duration units. Months and years are fixed approximations (30 and 365
// days), not calendar arithmetic.
const (
	Second = "second"
	Minute = "minute"
	Hour   = "hour"
	Day    = "day"
	Month  = "month"
	Year   = "year"
)

// Temperature units.
const (
	Celsius    = "C"
	Fahrenheit = "F"
)

// ErrUnknownUnit is returned when a duration or temperature is built with
// units outside its fixed set.
var ErrUnknownUnit = errors.New("unknown unit")

// cascade lists the duration units from largest to smallest with their
// length in seconds.
var cascade = []struct {
	label string
	ratio float64
}{
	{Year, 60 * 60 * 24 * 365},
	{Month, 60 * 60 * 24 * 30},
	{Day, 60 * 60 * 24},
	{Hour, 60 * 60},
	{Minute, 60},
	{Second, 1},
}

var normRatio = func() map[string]float64 {
	m := make(map[string]float64, len(cascade))
	for _, c := range cascade {
		m[c.label] = c.ratio
	}
	return m
}()

// Duration is a Measure whose units are one of the duration units.
type Duration struct {
	Measure
}

// NewDuration builds a Duration, validating amount and units.
func NewDuration(amount float64, units string) (Duration, error) {
	if err := checkAmount(amount); err != nil {
		return Duration{}, err
	}
	if _, ok := normRatio[units]; !ok {
		return Duration{}, fmt.Errorf("%w: duration units %q", ErrUnknownUnit, units)
	}
	return Duration{Measure{Amount: amount, Units: units}}, nil
}

// Seconds builds a Duration of the given number of seconds.
func Seconds(n float64) Duration {
	return Duration{Measure{Amount: n, Units: Second}}
}

// Normalize returns the duration in seconds.
func (d Duration) Normalize() float64 {
	return d.Amount * normRatio[d.Units]
}

// Humanize cascades the duration through years, months, days, hours,
// minutes and seconds, e.g. "1 hour, 30 minutes". Zero components are
// omitted; a zero duration renders as the empty string.
func (d Duration) Humanize() string {
	// Whole seconds only; float noise from the unit ratios is dropped.
	remainder := math.Round(d.Normalize())
	var parts []string

	for i, c := range cascade {
		amount := remainder
		if i < len(cascade)-1 {
			rest := math.Mod(remainder, c.ratio)
			amount = (remainder - rest) / c.ratio
			remainder = rest
		}
		n := int64(amount)
		if n <= 0 {
			continue
		}
		label := c.label
		if n > 1 {
			label = inflection.Plural(label)
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	return strings.Join(parts, ", ")
}

// Temperature is a Measure in degrees Celsius or Fahrenheit.
type Temperature struct {
	Measure
}

// NewTemperature builds a Temperature, validating amount and units.
func NewTemperature(amount float64, units string) (Temperature, error) {
	if err := checkAmount(amount); err != nil {
		return Temperature{}, err
	}
	if units != Celsius && units != Fahrenheit {
		return Temperature{}, fmt.Errorf("%w: temperature units %q", ErrUnknownUnit, units)
	}
	return Temperature{Measure{Amount: amount, Units: units}}, nil
}

// CelsiusToFahrenheit converts between the two scales.
func CelsiusToFahrenheit(c float64) float64 {
	return c/5.0*9.0 + 32.0
}

// FahrenheitToCelsius converts between the two scales.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32.0) / 9.0 * 5.0
}

// Humanize renders the stored temperature; Celsius values also carry the
// Fahrenheit equivalent rounded to the nearest 5 degrees.
func (t Temperature) Humanize() string {
	s := fmt.Sprintf("%s °%s", formatAmount(t.Amount), t.Units)
	if t.Units == Celsius {
		fahr := int64(math.RoundToEven(CelsiusToFahrenheit(t.Amount)/5.0) * 5.0)
		s += fmt.Sprintf(" (%d °%s)", fahr, Fahrenheit)
	}
	return s
}
