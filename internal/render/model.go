// Package render turns an interpreted module into its serializable
// representations: the JSON model consumed by templates and the terminal
// display, and Schema.org Recipe metadata.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/engine"
	"github.com/hammamikhairi/bwyd/internal/logger"
)

// Model is the JSON-friendly view of one module.
type Model struct {
	Path        string       `json:"path"`
	Title       string       `json:"title"`
	Text        string       `json:"text"`
	License     *License     `json:"license"`
	Details     Details      `json:"details"`
	Ingredients []Ingredient `json:"ingredients"`
	Sources     []string     `json:"sources"`
	Gallery     []string     `json:"gallery"`
	Image       string       `json:"image"`
	Closures    []Closure    `json:"closures"`
}

type License struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Details struct {
	Serves   []string `json:"serves"`
	Duration string   `json:"duration"`
	Keywords []string `json:"keywords"`
	Author   string   `json:"author"`
	Updated  *string  `json:"updated"`
}

// Ingredient is one line of the module-wide ingredient list.
type Ingredient struct {
	Amount string `json:"amount"`
	Text   string `json:"text"`
}

type Closure struct {
	Title    string       `json:"title"`
	Yields   []string     `json:"yields"`
	Text     string       `json:"text"`
	Supers   []string     `json:"supers"`
	Keywords []string     `json:"keywords"`
	Requires []Dependency `json:"requires"`
	Foci     []Focus      `json:"foci"`
}

type Dependency struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

type Focus struct {
	Container  string     `json:"container"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	Title string `json:"title"`
	Steps []Step `json:"steps"`
}

// Renderer builds models with the engine's converter and aggregation rules.
type Renderer struct {
	eng *engine.Engine
	log *logger.Logger
}

// New creates a renderer.
func New(eng *engine.Engine, log *logger.Logger) *Renderer {
	return &Renderer{eng: eng, log: log}
}

// Model builds the JSON model of m. Conversion warnings are recorded on m
// once per ingredient and message.
func (r *Renderer) Model(m *domain.Module) (*Model, error) {
	sum, err := r.eng.Summarize(m)
	if err != nil {
		return nil, fmt.Errorf("summarizing %s: %w", m.Path, err)
	}

	b := &builder{r: r, m: m, seen: make(map[string]bool)}

	out := &Model{
		Path:  m.Path,
		Title: m.Title,
		Text:  m.Text,
		Details: Details{
			Serves:   sum.Serves,
			Duration: sum.Duration,
			Keywords: sum.Keywords,
			Author:   m.Author,
		},
		Ingredients: []Ingredient{},
		Sources:     append([]string{}, m.Cites...),
		Gallery:     []string{},
		Image:       m.Image(),
		Closures:    []Closure{},
	}
	if m.License != nil {
		out.License = &License{ID: m.License.ID, Name: m.License.Name}
	}
	if m.Updated != nil {
		s := m.Updated.Format("2006-01-02")
		out.Details.Updated = &s
	}
	for _, p := range m.Posts {
		out.Gallery = append(out.Gallery, p.URL)
	}

	external := externals(m)
	for _, ing := range sum.Ingredients {
		out.Ingredients = append(out.Ingredients, Ingredient{
			Amount: b.amount(ing.Symbol, external[ing.Symbol], ing.Measure),
			Text:   ing.Text,
		})
	}

	for _, c := range m.Closures() {
		out.Closures = append(out.Closures, b.closure(c))
	}

	r.log.Debug("rendered %s: %d closures, %d ingredients", m.Path, len(out.Closures), len(out.Ingredients))
	return out, nil
}

// externals reports which ingredient symbols are external in every closure
// that declares them.
func externals(m *domain.Module) map[string]bool {
	out := make(map[string]bool)
	for _, c := range m.Closures() {
		for _, dep := range c.Ingredients.Bound() {
			if prev, ok := out[dep.Symbol]; ok {
				out[dep.Symbol] = prev && dep.External
				continue
			}
			out[dep.Symbol] = dep.External
		}
	}
	return out
}

// WriteJSON writes v as indented JSON.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
