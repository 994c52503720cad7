package measure

import (
	"errors"
	"fmt"
)

// ErrInvalidConversion is returned for a conversion record that cannot be
// used (missing symbol or non-positive density).
var ErrInvalidConversion = errors.New("invalid conversion")

// Conversion holds the density of one ingredient: how many metric units
// make up one imperial unit (e.g. grams per cup).
type Conversion struct {
	Symbol   string  `json:"symbol" yaml:"symbol"`
	Density  float64 `json:"density" yaml:"density"`
	Imperial string  `json:"imperial" yaml:"imperial"`
	Metric   string  `json:"metric" yaml:"metric"`
}

// WithDefaults fills the units left empty: cups for imperial, grams for metric.
func (c Conversion) WithDefaults() Conversion {
	if c.Imperial == "" {
		c.Imperial = Cup
	}
	if c.Metric == "" {
		c.Metric = Gram
	}
	return c
}

// Validate checks that the record can be used for conversion.
func (c Conversion) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("%w: empty symbol", ErrInvalidConversion)
	}
	if !(c.Density > 0) {
		return fmt.Errorf("%w: density for %s must be positive, got %v", ErrInvalidConversion, c.Symbol, c.Density)
	}
	return nil
}

// Converter looks up the Conversion registered for an ingredient symbol.
type Converter interface {
	Lookup(symbol string) (Conversion, bool)
}

// ConverterMap is a plain, unsynchronized Converter. Use convert.Table
// when the set of conversions has to grow at runtime.
type ConverterMap map[string]Conversion

// Lookup implements Converter.
func (m ConverterMap) Lookup(symbol string) (Conversion, bool) {
	c, ok := m[symbol]
	return c, ok
}
