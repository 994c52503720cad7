package measure

import (
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/jinzhu/inflection"
)

// Humanized is an imperial approximation ready to be appended to a
// metric measure, e.g. " (1 1/2 cups)".
type Humanized struct {
	Amount float64
	Human  string
	Units  string
}

// abbreviated units are never pluralized: "2 tsp", not "2 tsps".
var abbreviated = map[string]bool{
	Teaspoon:   true,
	Tablespoon: true,
	Liter:      true,
	Milliliter: true,
	Gram:       true,
	Kilogram:   true,
	"oz":       true,
	"lb":       true,
}

// Denormalize renders the approximation in parentheses with a leading space.
func (h Humanized) Denormalize() string {
	if h.Units == "" {
		return fmt.Sprintf(" (%s)", h.Human)
	}
	units := h.Units
	if h.Amount > 1.0 && h.Human != "1" && !abbreviated[units] {
		units = inflection.Plural(units)
	}
	return fmt.Sprintf(" (%s %s)", h.Human, units)
}

// humanizeImperial picks the rendering for the imperial unit named by a
// Conversion. Cups may switch down to teaspoons for small amounts.
func humanizeImperial(amount float64, units string) Humanized {
	switch units {
	case Cup:
		return HumanizeCup(amount)
	case Teaspoon:
		return HumanizeTeaspoon(amount)
	default:
		return HumanizeGeneric(amount, units)
	}
}

// HumanizeGeneric renders an imperial amount with fractions limited to
// quarters.
func HumanizeGeneric(amount float64, units string) Humanized {
	var human string
	if amount > 0.95 {
		human = FixFraction(amount)
	} else {
		human = FormatFraction(roundTo(amount, 2), 4)
	}
	return Humanized{Amount: amount, Human: human, Units: units}
}

// HumanizeCup renders an amount of cups. At 0.24 cup or less it switches to
// teaspoons at 16x scale.
func HumanizeCup(amount float64) Humanized {
	if amount <= 0.24 {
		return HumanizeTeaspoon(amount * 16.0)
	}
	var human string
	if amount >= 1.0 {
		human = FixFraction(amount)
	} else {
		human = FormatFraction(roundTo(amount, 2), 4)
	}
	return Humanized{Amount: amount, Human: human, Units: Cup}
}

// HumanizeTeaspoon renders an amount of teaspoons with fractions limited
// to eighths.
func HumanizeTeaspoon(amount float64) Humanized {
	var human string
	switch {
	case amount >= 0.95:
		human = FixFraction(amount)
	case amount >= 0.4:
		human = FormatFraction(roundTo(amount, 1), 8)
	default:
		human = FormatFraction(roundTo(amount, 2), 8)
	}
	return Humanized{Amount: amount, Human: human, Units: Teaspoon}
}

// FixFraction renders a ratio >= 1 as a whole number plus a fraction of at
// most quarters. A remainder of 0.9 or more rounds up, below 0.2 it is
// dropped.
func FixFraction(amount float64) string {
	base := int64(amount)
	frac := amount - float64(base)

	if frac >= 0.9 {
		return strconv.FormatInt(int64(math.RoundToEven(amount)), 10)
	}
	if frac < 0.2 {
		return strconv.FormatInt(base, 10)
	}
	fraction := FormatFraction(roundTo(frac, 2), 4)
	if fraction == "1" {
		return strconv.FormatInt(base+1, 10)
	}
	return fmt.Sprintf("%d %s", base, fraction)
}

// FormatFraction renders x as the closest fraction whose denominator does
// not exceed maxDenom: "1/3", "3/8", or a whole number.
func FormatFraction(x float64, maxDenom int64) string {
	r := LimitDenominator(x, maxDenom)
	if r == nil {
		return formatAmount(x)
	}
	return r.RatString()
}

// LimitDenominator finds the closest rational to x with a denominator of
// at most maxDenom, using the continued fraction expansion of the exact
// binary value of x. It returns nil for non-finite x.
func LimitDenominator(x float64, maxDenom int64) *big.Rat {
	if maxDenom < 1 {
		maxDenom = 1
	}
	r := new(big.Rat).SetFloat64(x)
	if r == nil {
		return nil
	}

	limit := big.NewInt(maxDenom)
	if r.Denom().Cmp(limit) <= 0 {
		return r
	}

	p0, q0, p1, q1 := big.NewInt(0), big.NewInt(1), big.NewInt(1), big.NewInt(0)
	n := new(big.Int).Set(r.Num())
	d := new(big.Int).Set(r.Denom())
	for {
		a := new(big.Int).Div(n, d)
		q2 := new(big.Int).Add(q0, new(big.Int).Mul(a, q1))
		if q2.Cmp(limit) > 0 {
			break
		}
		p0, q0, p1, q1 = p1, q1, new(big.Int).Add(p0, new(big.Int).Mul(a, p1)), q2
		n, d = d, new(big.Int).Sub(n, new(big.Int).Mul(a, d))
	}

	k := new(big.Int).Div(new(big.Int).Sub(limit, q0), q1)
	bound1 := new(big.Rat).SetFrac(
		new(big.Int).Add(p0, new(big.Int).Mul(k, p1)),
		new(big.Int).Add(q0, new(big.Int).Mul(k, q1)),
	)
	bound2 := new(big.Rat).SetFrac(p1, q1)

	dist1 := new(big.Rat).Abs(new(big.Rat).Sub(bound1, r))
	dist2 := new(big.Rat).Abs(new(big.Rat).Sub(bound2, r))
	if dist2.Cmp(dist1) <= 0 {
		return bound2
	}
	return bound1
}

// roundTo rounds x to the given number of decimal digits, ties to even on
// the exact binary value.
func roundTo(x float64, digits int) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', digits, 64), 64)
	if err != nil {
		return x
	}
	return v
}
