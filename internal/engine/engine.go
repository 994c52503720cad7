// Package engine interprets decoded recipe scripts into the domain model,
// validates the result and computes module-wide totals.
//
// An Engine keeps no per-module state, so one Engine may interpret many
// modules concurrently as long as its converter and warning sink are safe
// for concurrent use.
package engine

import (
	"fmt"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/measure"
	"github.com/hammamikhairi/bwyd/internal/syntax"
)

// Option configures the engine.
type Option func(*Engine)

// WithLicenses replaces the built-in SPDX id to name table.
func WithLicenses(licenses map[string]string) Option {
	return func(e *Engine) {
		e.licenses = licenses
	}
}

// WithLenientUnits makes an ingredient unit mismatch during aggregation a
// warning: the mismatching amount is skipped instead of failing the module.
func WithLenientUnits() Option {
	return func(e *Engine) {
		e.lenient = true
	}
}

// WithWarningSink forwards every warning to fn as it is produced.
func WithWarningSink(fn func(domain.Warning)) Option {
	return func(e *Engine) {
		e.sink = fn
	}
}

// Engine turns syntax trees into validated modules.
type Engine struct {
	conv     measure.Converter
	log      *logger.Logger
	licenses map[string]string
	lenient  bool
	sink     func(domain.Warning)
}

// New creates an engine with the given converter and options. conv may be
// nil, in which case amounts are never annotated.
func New(conv measure.Converter, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		conv:     conv,
		log:      log,
		licenses: DefaultLicenses(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Converter returns the converter the engine was built with.
func (e *Engine) Converter() measure.Converter {
	return e.conv
}

// Interpret builds and validates the module described by tree. Any
// resolution error aborts the whole module.
func (e *Engine) Interpret(tree *syntax.Module) (*domain.Module, error) {
	m := domain.NewModule(tree.File)
	m.Title = tree.Title
	m.Text = tree.Text

	if err := e.interpretMeta(m, tree.Meta); err != nil {
		return nil, fmt.Errorf("interpreting metadata: %w", err)
	}

	for _, ct := range tree.Closures {
		c, err := e.interpretClosure(ct)
		if err != nil {
			return nil, fmt.Errorf("interpreting closure %s: %w", ct.Name, err)
		}
		if m.AddClosure(c) {
			e.Warn(m, domain.Warning{
				Kind:    domain.WarnDuplicate,
				Symbol:  c.Name,
				Loc:     c.Loc,
				Message: fmt.Sprintf("closure %s declared twice, keeping the last one", c.Name),
			})
		}
	}

	if err := e.Validate(m); err != nil {
		return nil, fmt.Errorf("validating %s: %w", m.Path, err)
	}

	e.log.Debug("interpreted %s: %d closures", m.Path, len(m.Closures()))
	return m, nil
}

// Warn records w on the module, logs it and forwards it to the sink. A
// warning already recorded on m is dropped, so rendering a module more
// than once reports each finding once.
func (e *Engine) Warn(m *domain.Module, w domain.Warning) {
	for _, seen := range m.Warnings {
		if seen == w {
			return
		}
	}
	m.Warnings = append(m.Warnings, w)
	e.log.Warn("%s", w)
	if e.sink != nil {
		e.sink(w)
	}
}
