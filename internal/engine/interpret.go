package engine

import (
	"fmt"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/measure"
	"github.com/hammamikhairi/bwyd/internal/syntax"
)

// focusState is the per-closure interpreter state.
type focusState int

const (
	noActiveFocus focusState = iota
	inFocus
)

// closureInterp walks one closure's commands top to bottom. Declarations
// must precede use; only Use defers resolution to module validation.
type closureInterp struct {
	c        *domain.Closure
	state    focusState
	focus    *domain.Focus
	activity *domain.Activity
}

func (e *Engine) interpretClosure(ct *syntax.Closure) (*domain.Closure, error) {
	c := domain.NewClosure(ct.Name, ct.Text, ct.Loc)
	c.Supers = append([]string{}, ct.Supers...)
	c.Keywords = append([]string{}, ct.Keywords...)

	for _, p := range ct.Products {
		amount, err := measure.New(p.Amount, p.Units)
		if err != nil {
			return nil, &domain.ResolutionError{Kind: "PRODUCT", Symbol: p.Symbol, Loc: p.Loc, Err: err}
		}
		c.Products = append(c.Products, domain.Product{
			Loc:          p.Loc,
			Symbol:       p.Symbol,
			Amount:       amount,
			Intermediate: p.Intermediate,
		})
	}

	in := &closureInterp{c: c}
	for _, n := range ct.Commands {
		if err := in.step(n); err != nil {
			return nil, err
		}
	}

	e.log.Debug("closure %s: %d foci, %d containers, %d tools, %d ingredients",
		c.Name, len(c.Foci), c.Containers.Len(), c.Tools.Len(), c.Ingredients.Len())
	return c, nil
}

func (in *closureInterp) step(n syntax.Node) error {
	loc := n.Location()

	switch n := n.(type) {
	case *syntax.Container:
		in.c.Containers.Declare(domain.Dependency{Loc: loc, Symbol: n.Symbol, Text: n.Text})
		return nil

	case *syntax.Tool:
		in.c.Tools.Declare(domain.Dependency{Loc: loc, Symbol: n.Symbol, Text: n.Text})
		return nil

	case *syntax.Ingredient:
		in.c.Ingredients.Declare(domain.Dependency{Loc: loc, Symbol: n.Symbol, Text: n.Text})
		return nil

	case *syntax.Use:
		pending := in.c.Ingredients.MarkExternal(domain.Dependency{Loc: loc, Symbol: n.Symbol, Text: n.Text})
		in.c.Pending = append(in.c.Pending, pending)
		return nil

	case *syntax.Focus:
		ref, ok := in.c.Containers.ResolveLocal(n.Symbol)
		if !ok {
			return undefined("CONTAINER", n.Symbol, loc)
		}
		in.focus = &domain.Focus{Container: ref}
		in.c.Foci = append(in.c.Foci, in.focus)
		in.activity = nil
		in.state = inFocus
		return nil

	case *syntax.Activity:
		if in.state != inFocus {
			return noFocus("ACTIVITY", n.Text, loc)
		}
		in.activity = &domain.Activity{Text: n.Text}
		in.focus.Activities = append(in.focus.Activities, in.activity)
		return nil

	case *syntax.Ratio:
		for _, part := range n.Parts {
			if len(part.Components) > 0 {
				continue
			}
			if _, ok := in.c.Ingredients.ResolveLocal(part.Symbol); !ok {
				return undefined("RATIO part", part.Symbol, part.Loc)
			}
		}
		return nil

	case *syntax.Note:
		if in.state != inFocus {
			return noFocus("NOTE", "", loc)
		}
		in.attach(domain.NewNote(loc, n.Text))
		return nil

	case *syntax.Transfer:
		if in.state != inFocus {
			return noFocus("TRANSFER", n.Symbol, loc)
		}
		ref, ok := in.c.Ingredients.ResolveLocal(n.Symbol)
		if !ok {
			return undefined("INGREDIENT", n.Symbol, loc)
		}
		in.attach(domain.NewTransfer(loc, n.Symbol, ref))
		return nil

	case *syntax.Add:
		if in.state != inFocus {
			return noFocus("ADD", n.Symbol, loc)
		}
		ref, ok := in.c.Ingredients.ResolveLocal(n.Symbol)
		if !ok {
			return undefined("INGREDIENT", n.Symbol, loc)
		}
		m, err := measure.New(n.Amount, n.Units)
		if err != nil {
			return &domain.ResolutionError{Kind: "MEASURE", Symbol: n.Symbol, Loc: loc, Err: err}
		}
		in.attach(domain.NewAdd(loc, n.Symbol, m, n.Text, ref))
		return nil

	case *syntax.Action:
		if in.state != inFocus {
			return noFocus("ACTION", n.Symbol, loc)
		}
		ref, ok := in.c.Tools.ResolveLocal(n.Symbol)
		if !ok {
			ref, ok = in.c.Containers.ResolveLocal(n.Symbol)
		}
		if !ok {
			return undefined("ACTION OBJECT", n.Symbol, loc)
		}
		d, err := buildDuration(n.Duration, loc)
		if err != nil {
			return err
		}
		in.attach(domain.NewAction(loc, ref, n.Modifier, n.Until, d))
		return nil

	case *syntax.Bake:
		if in.state != inFocus {
			return noFocus("BAKE", n.Symbol, loc)
		}
		ref, ok := in.c.Containers.ResolveLocal(n.Symbol)
		if !ok {
			return undefined("BAKE CONTAINER", n.Symbol, loc)
		}
		d, err := buildDuration(n.Duration, loc)
		if err != nil {
			return err
		}
		temp, err := buildTemperature(n.Temperature, loc)
		if err != nil {
			return err
		}
		in.attach(domain.NewBake(loc, ref, n.Modifier, n.Until, d, temp))
		return nil

	case *syntax.Heat:
		if in.state != inFocus {
			return noFocus("HEAT", n.Symbol, loc)
		}
		ref, ok := in.c.Containers.ResolveLocal(n.Symbol)
		if !ok {
			return undefined("HEAT CONTAINER", n.Symbol, loc)
		}
		d, err := buildDuration(n.Duration, loc)
		if err != nil {
			return err
		}
		in.attach(domain.NewHeat(loc, ref, n.Modifier, n.Until, d))
		return nil

	case *syntax.Chill:
		if in.state != inFocus {
			return noFocus("CHILL", n.Symbol, loc)
		}
		ref, ok := in.c.Containers.ResolveLocal(n.Symbol)
		if !ok {
			return undefined("CHILL CONTAINER", n.Symbol, loc)
		}
		d, err := buildDuration(n.Duration, loc)
		if err != nil {
			return err
		}
		in.attach(domain.NewChill(loc, ref, n.Modifier, n.Until, d))
		return nil

	case *syntax.Store:
		if in.state != inFocus {
			return noFocus("STORE", n.Symbol, loc)
		}
		ref, ok := in.c.Containers.ResolveLocal(n.Symbol)
		if !ok {
			return undefined("STORE CONTAINER", n.Symbol, loc)
		}
		d, err := buildDuration(n.Duration, loc)
		if err != nil {
			return err
		}
		in.attach(domain.NewStore(loc, ref, n.Modifier, d))
		return nil

	default:
		return fmt.Errorf("%w: %s at %s", domain.ErrUnsupportedNode, n.Kind(), loc)
	}
}

// attach appends op to the current activity, opening an untitled one when
// the focus has none yet.
func (in *closureInterp) attach(op domain.Operation) {
	if in.activity == nil {
		in.activity = &domain.Activity{}
		in.focus.Activities = append(in.focus.Activities, in.activity)
	}
	in.activity.Ops = append(in.activity.Ops, op)
}

func undefined(kind, symbol string, loc domain.Location) error {
	return &domain.ResolutionError{Kind: kind, Symbol: symbol, Loc: loc, Err: domain.ErrUndefined}
}

func noFocus(kind, symbol string, loc domain.Location) error {
	return &domain.ResolutionError{Kind: kind, Symbol: symbol, Loc: loc, Err: domain.ErrFocusNotDefined}
}

// buildDuration treats a missing duration as zero seconds.
func buildDuration(q *syntax.Quantity, loc domain.Location) (measure.Duration, error) {
	if q == nil {
		return measure.Seconds(0), nil
	}
	d, err := measure.NewDuration(q.Amount, q.Units)
	if err != nil {
		return measure.Duration{}, &domain.ResolutionError{Kind: "DURATION", Symbol: q.Units, Loc: loc, Err: err}
	}
	return d, nil
}

func buildTemperature(q *syntax.Quantity, loc domain.Location) (measure.Temperature, error) {
	if q == nil {
		return measure.Temperature{}, &domain.ResolutionError{Kind: "TEMPERATURE", Loc: loc, Err: domain.ErrUndefined}
	}
	t, err := measure.NewTemperature(q.Amount, q.Units)
	if err != nil {
		return measure.Temperature{}, &domain.ResolutionError{Kind: "TEMPERATURE", Symbol: q.Units, Loc: loc, Err: err}
	}
	return t, nil
}
