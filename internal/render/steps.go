package render

import (
	"encoding/json"
	"fmt"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/measure"
)

// StepKind names the single key of a step object.
type StepKind string

const (
	StepIngredients StepKind = "ingredients"
	StepNote        StepKind = "note"
	StepTransfer    StepKind = "transfer"
	StepAction      StepKind = "action"
	StepBake        StepKind = "bake"
	StepHeat        StepKind = "heat"
	StepChill       StepKind = "chill"
	StepStore       StepKind = "store"
)

// Step is one element of an activity's steps. Exactly the field matching
// Kind is set. The first step of every activity is the ingredients step.
type Step struct {
	Kind StepKind `json:"-"`

	Ingredients []StepIngredient `json:"ingredients,omitempty"`
	Note        *NoteStep        `json:"note,omitempty"`
	Transfer    *TransferStep    `json:"transfer,omitempty"`
	Action      *ActionStep      `json:"action,omitempty"`
	Bake        *BakeStep        `json:"bake,omitempty"`
	Heat        *TimedStep       `json:"heat,omitempty"`
	Chill       *TimedStep       `json:"chill,omitempty"`
	Store       *StoreStep       `json:"store,omitempty"`
}

// MarshalJSON keeps an empty ingredients step as {"ingredients": []}.
func (s Step) MarshalJSON() ([]byte, error) {
	if s.Kind == StepIngredients {
		ings := s.Ingredients
		if ings == nil {
			ings = []StepIngredient{}
		}
		return json.Marshal(struct {
			Ingredients []StepIngredient `json:"ingredients"`
		}{ings})
	}
	type plain Step
	return json.Marshal(plain(s))
}

type StepIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
	Text   string `json:"text"`
}

type NoteStep struct {
	Text string `json:"text"`
}

type TransferStep struct {
	Name string `json:"name"`
}

type ActionStep struct {
	Tool string `json:"tool"`
	Verb string `json:"verb"`
	Text string `json:"text"`
	Time string `json:"time"`
}

type BakeStep struct {
	Mode        string `json:"mode"`
	Temperature string `json:"temperature"`
	Text        string `json:"text"`
	Until       string `json:"until"`
	Time        string `json:"time"`
}

// TimedStep is the body of heat and chill steps.
type TimedStep struct {
	Text  string `json:"text"`
	Until string `json:"until"`
	Time  string `json:"time"`
}

type StoreStep struct {
	Text string `json:"text"`
	Upto string `json:"upto"`
}

type builder struct {
	r    *Renderer
	m    *domain.Module
	seen map[string]bool
}

// amount renders a measure with its imperial annotation and records each
// distinct conversion warning once.
func (b *builder) amount(symbol string, external bool, m measure.Measure) string {
	return m.HumanizeConvert(symbol, external, b.r.eng.Converter(), func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if b.seen[msg] {
			return
		}
		b.seen[msg] = true
		b.r.eng.Warn(b.m, domain.Warning{
			Kind:    domain.WarnConversion,
			Symbol:  symbol,
			Message: msg,
		})
	})
}

func (b *builder) closure(c *domain.Closure) Closure {
	out := Closure{
		Title:    c.Name,
		Yields:   c.TotalYields(true),
		Text:     c.Text,
		Supers:   nonNil(c.Supers),
		Keywords: nonNil(c.Keywords),
		Requires: []Dependency{},
		Foci:     []Focus{},
	}
	for _, dep := range c.Requires() {
		out.Requires = append(out.Requires, Dependency{Name: dep.Symbol, Text: dep.Text})
	}
	for _, f := range c.Foci {
		focus := Focus{
			Container:  c.Dep(f.Container).Symbol,
			Activities: []Activity{},
		}
		for _, a := range f.Activities {
			focus.Activities = append(focus.Activities, b.activity(c, a))
		}
		out.Foci = append(out.Foci, focus)
	}
	return out
}

func (b *builder) activity(c *domain.Closure, a *domain.Activity) Activity {
	ings := Step{Kind: StepIngredients, Ingredients: []StepIngredient{}}
	var rest []Step

	for _, op := range a.Ops {
		switch op := op.(type) {
		case *domain.Add:
			dep := c.Dep(op.Entity)
			ings.Ingredients = append(ings.Ingredients, StepIngredient{
				Name:   op.Symbol,
				Amount: b.amount(op.Symbol, dep.External, op.Measure),
				Text:   op.Text,
			})
		case *domain.Note:
			rest = append(rest, Step{Kind: StepNote, Note: &NoteStep{Text: op.Text}})
		case *domain.Transfer:
			rest = append(rest, Step{Kind: StepTransfer, Transfer: &TransferStep{Name: op.Symbol}})
		case *domain.Action:
			rest = append(rest, Step{Kind: StepAction, Action: &ActionStep{
				Tool: c.Dep(op.Tool).Symbol,
				Verb: op.Modifier,
				Text: op.Until,
				Time: op.Duration().Humanize(),
			}})
		case *domain.Bake:
			rest = append(rest, Step{Kind: StepBake, Bake: &BakeStep{
				Mode:        string(StepBake),
				Temperature: op.Temperature.Humanize(),
				Text:        op.Modifier,
				Until:       op.Until,
				Time:        op.Duration().Humanize(),
			}})
		case *domain.Heat:
			rest = append(rest, Step{Kind: StepHeat, Heat: &TimedStep{
				Text:  op.Modifier,
				Until: op.Until,
				Time:  op.Duration().Humanize(),
			}})
		case *domain.Chill:
			rest = append(rest, Step{Kind: StepChill, Chill: &TimedStep{
				Text:  op.Modifier,
				Until: op.Until,
				Time:  op.Duration().Humanize(),
			}})
		case *domain.Store:
			rest = append(rest, Step{Kind: StepStore, Store: &StoreStep{
				Text: op.Modifier,
				Upto: op.Duration().Humanize(),
			}})
		}
	}

	return Activity{Title: a.Text, Steps: append([]Step{ings}, rest...)}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
