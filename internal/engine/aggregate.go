package engine

import (
	"fmt"
	"sort"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/measure"
)

// IngredientTotal is one line of a module's ingredient list.
type IngredientTotal struct {
	Symbol  string
	Text    string
	Measure measure.Measure
}

// Summary holds the module-wide totals consumed by the renderers.
type Summary struct {
	Duration    string
	Serves      []string
	Keywords    []string
	Ingredients []IngredientTotal
}

// Summarize computes every module-wide total. It fails only on an
// ingredient unit mismatch, unless the engine was built WithLenientUnits.
func (e *Engine) Summarize(m *domain.Module) (*Summary, error) {
	ings, err := e.Ingredients(m)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Duration:    TotalDuration(m),
		Serves:      TotalYields(m),
		Keywords:    Keywords(m),
		Ingredients: ings,
	}, nil
}

// TotalDuration sums the duration of every operation, truncated to whole
// seconds, and renders it as a cascade ("1 hour, 30 minutes").
func TotalDuration(m *domain.Module) string {
	var total float64
	for _, c := range m.Closures() {
		c.Ops(func(op domain.Operation) {
			total += op.Duration().Normalize()
		})
	}
	return measure.Seconds(float64(int64(total))).Humanize()
}

// TotalYields concatenates the non-intermediate products of every closure.
func TotalYields(m *domain.Module) []string {
	out := []string{}
	for _, c := range m.Closures() {
		out = append(out, c.TotalYields(false)...)
	}
	return out
}

// Keywords returns the sorted union of every closure's supers and keywords.
func Keywords(m *domain.Module) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, c := range m.Closures() {
		for _, group := range [][]string{c.Supers, c.Keywords} {
			for _, k := range group {
				if !seen[k] {
					seen[k] = true
					out = append(out, k)
				}
			}
		}
	}
	sort.Strings(out)
	return out
}

// Ingredients rolls up every Add operation of the module by ingredient
// symbol, in order of first use. External ingredients are skipped. Amounts
// for one symbol must share units.
func (e *Engine) Ingredients(m *domain.Module) ([]IngredientTotal, error) {
	var out []IngredientTotal
	index := make(map[string]int)
	var err error

	for _, c := range m.Closures() {
		c.Ops(func(op domain.Operation) {
			add, ok := op.(*domain.Add)
			if !ok || err != nil {
				return
			}
			dep := c.Dep(add.Entity)
			if dep.External {
				return
			}

			i, seen := index[dep.Symbol]
			if !seen {
				index[dep.Symbol] = len(out)
				out = append(out, IngredientTotal{
					Symbol:  dep.Symbol,
					Text:    dep.Text,
					Measure: add.Measure,
				})
				return
			}

			total := &out[i]
			if add.Measure.Units == total.Measure.Units {
				total.Measure.Amount += add.Measure.Amount
				return
			}

			mismatch := &domain.AggregationError{
				Symbol: dep.Symbol,
				Units:  add.Measure.Units,
				Want:   total.Measure.Units,
				Loc:    add.Location(),
			}
			if !e.lenient {
				err = mismatch
				return
			}
			e.Warn(m, domain.Warning{
				Kind:    domain.WarnAggregation,
				Symbol:  dep.Symbol,
				Loc:     add.Location(),
				Message: fmt.Sprintf("ingredient %s in %q, want %q: amount skipped", dep.Symbol, mismatch.Units, mismatch.Want),
			})
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
