package engine

import (
	"fmt"
	"strings"

	"github.com/hammamikhairi/bwyd/internal/domain"
)

// Validate runs the module-wide pass: every declared but unreferenced
// dependency is reported as a warning, and every external ingredient must
// be a product of some closure in the module.
func (e *Engine) Validate(m *domain.Module) error {
	products := make(map[string][]*domain.Product)
	for _, c := range m.Closures() {
		for i := range c.Products {
			p := &c.Products[i]
			products[p.Symbol] = append(products[p.Symbol], p)
		}
	}

	for _, c := range m.Closures() {
		for _, reg := range []*domain.Registry{c.Containers, c.Tools, c.Ingredients} {
			for _, dep := range reg.Bound() {
				if dep.RefCount >= 1 {
					continue
				}
				e.Warn(m, domain.Warning{
					Kind:    domain.WarnUnused,
					Symbol:  dep.Symbol,
					Loc:     dep.Loc,
					Message: fmt.Sprintf("%s %s defined but not used", label(reg.Kind()), dep.Symbol),
				})
			}
		}

		for _, pending := range c.Pending {
			sources, ok := products[pending.Symbol]
			if !ok {
				return &domain.ResolutionError{
					Kind:   "CLOSURE",
					Symbol: pending.Symbol,
					Loc:    pending.Loc,
					Err:    domain.ErrExternalUndefined,
				}
			}
			for _, p := range sources {
				p.RefCount++
			}
		}
	}
	return nil
}

// label turns "CONTAINER" into "Container".
func label(k domain.DepKind) string {
	s := k.String()
	return s[:1] + strings.ToLower(s[1:])
}
