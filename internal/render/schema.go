package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hammamikhairi/bwyd/internal/domain"
)

// Recipe is Schema.org Recipe metadata, serialized as JSON-LD.
// See https://schema.org/Recipe.
type Recipe struct {
	Context          string   `json:"@context"`
	Type             string   `json:"@type"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Keywords         []string `json:"keywords"`
	RecipeYield      string   `json:"recipeYield,omitempty"`
	RecipeIngredient []string `json:"recipeIngredient"`
	Image            string   `json:"image,omitempty"`
	IsBasedOn        string   `json:"isBasedOn,omitempty"`
	DateModified     string   `json:"dateModified,omitempty"`
	Author           string   `json:"author,omitempty"`
	License          string   `json:"license,omitempty"`
}

// leadingWords keeps the name part of an author line such as
// "Paco Nathan <paco@example.com>".
var leadingWords = regexp.MustCompile(`^([\p{L}\p{N}_\s]+)`)

// SchemaOrg builds the Schema.org metadata of m.
func (r *Renderer) SchemaOrg(m *domain.Module) (*Recipe, error) {
	sum, err := r.eng.Summarize(m)
	if err != nil {
		return nil, fmt.Errorf("summarizing %s: %w", m.Path, err)
	}

	b := &builder{r: r, m: m, seen: make(map[string]bool)}
	external := externals(m)

	out := &Recipe{
		Context:          "https://schema.org",
		Type:             "Recipe",
		Name:             m.Title,
		Description:      m.Text,
		Keywords:         sum.Keywords,
		RecipeIngredient: []string{},
		Image:            m.Image(),
	}
	if len(sum.Serves) > 0 {
		out.RecipeYield = sum.Serves[0]
	}
	for _, ing := range sum.Ingredients {
		out.RecipeIngredient = append(out.RecipeIngredient,
			b.amount(ing.Symbol, external[ing.Symbol], ing.Measure)+" "+ing.Text)
	}
	if len(m.Cites) > 0 {
		out.IsBasedOn = m.Cites[0]
	}
	if m.Updated != nil {
		out.DateModified = m.Updated.Format("2006-01-02")
	}
	if m.Author != "" {
		out.Author = m.Author
		if match := leadingWords.FindStringSubmatch(m.Author); match != nil {
			out.Author = strings.TrimSpace(match[1])
		}
	}
	if m.License != nil {
		out.License = m.License.URL()
	}
	return out, nil
}
