package display

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/bwyd/internal/conversation"
	"github.com/hammamikhairi/bwyd/internal/convert"
	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/render"
)

func strPtr(s string) *string { return &s }

func fixture() (*domain.Module, *render.Model) {
	module := domain.NewModule("lasagne.yaml")
	for _, name := range []string{"ragu", "bechamel", "lasagne"} {
		module.AddClosure(domain.NewClosure(name, "", domain.Location{}))
	}
	module.Warnings = append(module.Warnings, domain.Warning{Kind: domain.WarnUnused, Symbol: "whisk"})

	model := &render.Model{
		Path:  "lasagne.yaml",
		Title: "Lasagne",
		Text:  "Sunday lasagne.",
		Details: render.Details{
			Serves:   []string{"6 portions"},
			Duration: "3 hours, 20 minutes",
			Keywords: []string{"pasta"},
			Author:   "Ada",
			Updated:  strPtr("2024-01-05"),
		},
		License: &render.License{ID: "MIT", Name: "MIT License"},
		Ingredients: []render.Ingredient{
			{Amount: "500 g", Text: "minced beef"},
			{Amount: "1 l", Text: "milk"},
		},
		Closures: []render.Closure{
			{
				Title:    "ragu",
				Yields:   []string{"1 l ragu"},
				Keywords: []string{"sauce", "meat"},
				Requires: []render.Dependency{{Name: "pot", Text: "heavy pot"}},
				Foci: []render.Focus{{
					Container: "pot",
					Activities: []render.Activity{{
						Title: "Brown",
						Steps: []render.Step{
							{Kind: render.StepIngredients, Ingredients: []render.StepIngredient{{Name: "minced_beef", Amount: "500 g", Text: "coarse"}}},
							{Kind: render.StepHeat, Heat: &render.TimedStep{Text: "high", Until: "browned", Time: "10 minutes"}},
						},
					}},
				}},
			},
			{Title: "bechamel", Keywords: []string{"sauce"}},
			{Title: "lasagne", Supers: []string{"pasta"}},
		},
	}
	return module, model
}

func newTestBrowser(t *testing.T) browserModel {
	t.Helper()
	module, model := fixture()
	log := logger.New(logger.LevelOff, nil)
	parser := conversation.NewKeywordParser(log)
	return newBrowserModel(context.Background(), module, model, parser, convert.NewTable(log))
}

func TestRenderStep(t *testing.T) {
	tests := []struct {
		name string
		step render.Step
		want string
	}{
		{"ingredients", render.Step{Kind: render.StepIngredients, Ingredients: []render.StepIngredient{
			{Name: "flour", Amount: "250 g (2 cups)", Text: "sifted"},
			{Name: "sea_salt", Amount: "5 g"},
		}}, "add 250 g (2 cups) flour, sifted\nadd 5 g sea salt"},
		{"empty ingredients", render.Step{Kind: render.StepIngredients}, ""},
		{"note", render.Step{Kind: render.StepNote, Note: &render.NoteStep{Text: "Keep warm."}}, "note: Keep warm."},
		{"transfer", render.Step{Kind: render.StepTransfer, Transfer: &render.TransferStep{Name: "dough"}}, "transfer the dough"},
		{"action", render.Step{Kind: render.StepAction, Action: &render.ActionStep{Tool: "spatula", Verb: "flip", Text: "blistered", Time: "2 minutes"}},
			"flip with the spatula until blistered (2 minutes)"},
		{"bake", render.Step{Kind: render.StepBake, Bake: &render.BakeStep{Mode: "bake", Temperature: "200 °C (390 °F)", Text: "uncovered", Until: "golden", Time: "45 minutes"}},
			"bake uncovered at 200 °C (390 °F) until golden (45 minutes)"},
		{"heat without modifier", render.Step{Kind: render.StepHeat, Heat: &render.TimedStep{Until: "smoking", Time: "5 minutes"}},
			"heat until smoking (5 minutes)"},
		{"chill without time", render.Step{Kind: render.StepChill, Chill: &render.TimedStep{Text: "covered"}}, "chill covered"},
		{"store", render.Step{Kind: render.StepStore, Store: &render.StoreStep{Text: "refrigerate", Upto: "3 days"}},
			"store refrigerate up to 3 days"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderStep(tt.step))
		})
	}
}

func TestRenderModel(t *testing.T) {
	_, model := fixture()
	out := RenderModel(model)

	for _, want := range []string{
		"Lasagne",
		"Sunday lasagne.",
		"6 portions",
		"3 hours, 20 minutes",
		"2024-01-05",
		"MIT License (MIT)",
		"500 g",
		"minced beef",
		"[1/3] ragu",
		"1 l ragu",
		"sauce, meat",
		"pot (heavy pot)",
		"in the pot",
		"Brown",
		"add 500 g minced beef, coarse",
		"heat high until browned (10 minutes)",
		"[3/3] lasagne",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderIngredientsEmpty(t *testing.T) {
	assert.Contains(t, RenderIngredients(&render.Model{}), "(none)")
}

func TestBrowserNavigation(t *testing.T) {
	m := newTestBrowser(t)

	out, quit := m.exec("next")
	assert.False(t, quit)
	assert.Contains(t, out, "[2/3] bechamel")

	out, _ = m.exec("next")
	assert.Contains(t, out, "[3/3] lasagne")

	out, _ = m.exec("next")
	assert.Contains(t, out, "already at the last closure")
	assert.Equal(t, 2, m.cursor)

	out, _ = m.exec("1")
	assert.Contains(t, out, "[1/3] ragu")

	out, _ = m.exec("prev")
	assert.Contains(t, out, "already at the first closure")

	out, _ = m.exec("open lasagne")
	assert.Contains(t, out, "[3/3] lasagne")

	out, _ = m.exec("open 9")
	assert.Contains(t, out, "no closure 9")
	assert.Equal(t, 2, m.cursor)

	out, _ = m.exec("open pudding")
	assert.Contains(t, out, `no closure named "pudding"`)
}

func TestBrowserFilter(t *testing.T) {
	m := newTestBrowser(t)

	out, _ := m.exec("filter sauce")
	assert.Contains(t, out, `2 closures tagged "sauce"`)
	assert.Contains(t, out, "ragu")
	assert.NotContains(t, out, "lasagne")
	assert.Equal(t, []int{0, 1}, m.visible)
	assert.Equal(t, "sauce", m.filter)

	out, _ = m.exec("next")
	assert.Contains(t, out, "[2/3] bechamel")
	out, _ = m.exec("next")
	assert.Contains(t, out, "already at the last closure")

	// Supers count as tags.
	out, _ = m.exec("tag PASTA")
	assert.Contains(t, out, `1 closures tagged "PASTA"`)
	assert.Equal(t, []int{2}, m.visible)

	// A filter matching nothing keeps the current view.
	out, _ = m.exec("filter dessert")
	assert.Contains(t, out, `no closure tagged "dessert"`)
	assert.Equal(t, []int{2}, m.visible)

	// Opening a hidden closure drops the filter.
	out, _ = m.exec("open ragu")
	assert.Contains(t, out, "[1/3] ragu")
	assert.Empty(t, m.filter)
	assert.Len(t, m.visible, 3)

	m.exec("filter meat")
	out, _ = m.exec("clear")
	assert.Contains(t, out, "showing all closures")
	assert.Len(t, m.visible, 3)
	assert.Equal(t, 0, m.cursor)
}

func TestBrowserViews(t *testing.T) {
	m := newTestBrowser(t)

	out, _ := m.exec("ls")
	assert.Contains(t, out, "›  1  ragu")
	assert.Contains(t, out, "sauce, meat")
	assert.Contains(t, out, "3  lasagne")

	out, _ = m.exec("ingredients")
	assert.Contains(t, out, "minced beef")

	out, _ = m.exec("summary")
	assert.Contains(t, out, "6 portions")

	out, _ = m.exec("help")
	assert.Contains(t, out, "filter <keyword>")

	out, _ = m.exec("make it spicy")
	assert.Contains(t, out, `unknown command "make it spicy"`)

	out, quit := m.exec("quit")
	assert.True(t, quit)
	assert.Contains(t, out, "bye")
}

func TestBrowserUpdate(t *testing.T) {
	m := newTestBrowser(t)

	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = next.(browserModel)
	assert.Equal(t, 100, m.width)
	assert.Equal(t, 100-len(prompt), m.input.Width)

	m.input.SetValue("next")
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(browserModel)
	require.NotNil(t, cmd)
	assert.Equal(t, 1, m.cursor)
	assert.Empty(t, m.input.Value())

	// Blank input does nothing.
	m.input.SetValue("   ")
	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(browserModel)
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.cursor)

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestBrowserBar(t *testing.T) {
	m := newTestBrowser(t)
	m.exec("filter sauce")
	m.exec("next")

	bar := m.renderBar()
	assert.Contains(t, bar, "Lasagne")
	assert.Contains(t, bar, "closure 2/3: ")
	assert.Contains(t, bar, "bechamel")
	assert.Contains(t, bar, "sauce")
	assert.Contains(t, bar, "1 warnings")

	assert.Contains(t, m.View(), prompt)
}

func TestCenter(t *testing.T) {
	plain := func(s ...string) string { return s[0] }
	assert.Equal(t, "   ab\n   c\n", center("ab\nc", 8, plain))
	assert.Equal(t, "wide\n", center("wide", 2, plain))
}

func TestBrowserConversions(t *testing.T) {
	m := newTestBrowser(t)

	out, _ := m.exec("conv sugar")
	assert.Contains(t, out, "brown sugar")
	assert.Contains(t, out, "200 g per cup")
	assert.Contains(t, out, "12.5 g per tbsp")

	out, _ = m.exec("density unobtainium")
	assert.Contains(t, out, `no conversion matches "unobtainium"`)

	m.conv = nil
	out, _ = m.exec("conv sugar")
	assert.Contains(t, out, "no conversion table loaded")
}

func TestRenderIndex(t *testing.T) {
	out := RenderIndex([]*domain.IndexEntry{
		{Slug: "pancakes", Title: "Pancakes", Duration: "3 minutes", Keywords: []string{"breakfast"}, Updated: "2024-03-01"},
		{Slug: "toast", Title: "Toast"},
	})
	assert.Contains(t, out, "Index (2)")
	assert.Contains(t, out, "Pancakes")
	assert.Contains(t, out, "3 minutes · breakfast · 2024-03-01")
	assert.Contains(t, out, "toast")
}
