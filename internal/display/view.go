package display

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/measure"
	"github.com/hammamikhairi/bwyd/internal/render"
)

// RenderModel renders a whole module for the terminal: header, ingredient
// list, then every closure.
func RenderModel(m *render.Model) string {
	var b strings.Builder
	b.WriteString(RenderSummary(m))
	b.WriteByte('\n')
	b.WriteString(RenderIngredients(m))
	for i, c := range m.Closures {
		b.WriteByte('\n')
		b.WriteString(RenderClosure(c, i+1, len(m.Closures)))
	}
	return b.String()
}

// RenderSummary renders the title block and details of a module.
func RenderSummary(m *render.Model) string {
	var b strings.Builder
	line(&b, titleStyle, m.Title)
	if m.Text != "" {
		line(&b, secondaryStyle, m.Text)
	}
	field(&b, "serves", strings.Join(m.Details.Serves, ", "))
	field(&b, "time", m.Details.Duration)
	field(&b, "tags", strings.Join(m.Details.Keywords, ", "))
	field(&b, "author", m.Details.Author)
	if m.Details.Updated != nil {
		field(&b, "updated", *m.Details.Updated)
	}
	if m.License != nil {
		field(&b, "license", m.License.Name+" ("+m.License.ID+")")
	}
	for _, s := range m.Sources {
		field(&b, "source", s)
	}
	return b.String()
}

// RenderIngredients renders the module-wide ingredient list.
func RenderIngredients(m *render.Model) string {
	var b strings.Builder
	line(&b, stepStyle, "Ingredients")
	if len(m.Ingredients) == 0 {
		line(&b, secondaryStyle, "  (none)")
	}
	for _, ing := range m.Ingredients {
		b.WriteString("    " + sepStyle.Render("•") + " " +
			primaryStyle.Render(ing.Amount) + " " + secondaryStyle.Render(ing.Text) + "\n")
	}
	return b.String()
}

// RenderClosure renders closure n of total.
func RenderClosure(c render.Closure, n, total int) string {
	var b strings.Builder
	line(&b, stepStyle, fmt.Sprintf("[%d/%d] %s", n, total, c.Title))
	if c.Text != "" {
		line(&b, secondaryStyle, c.Text)
	}
	if len(c.Yields) > 0 {
		field(&b, "makes", strings.Join(c.Yields, ", "))
	}
	if tags := append(append([]string{}, c.Supers...), c.Keywords...); len(tags) > 0 {
		field(&b, "tags", strings.Join(tags, ", "))
	}
	if len(c.Requires) > 0 {
		needs := make([]string, 0, len(c.Requires))
		for _, d := range c.Requires {
			if d.Text != "" && d.Text != d.Name {
				needs = append(needs, d.Name+" ("+d.Text+")")
			} else {
				needs = append(needs, d.Name)
			}
		}
		field(&b, "needs", strings.Join(needs, ", "))
	}

	for _, f := range c.Foci {
		line(&b, labelStyle, "in the "+human(f.Container))
		for _, a := range f.Activities {
			if a.Title != "" {
				line(&b, chatStyle, "  "+a.Title)
			}
			for _, s := range a.Steps {
				for _, l := range stepLines(s) {
					b.WriteString("      " + sepStyle.Render("-") + " " + primaryStyle.Render(l) + "\n")
				}
			}
		}
	}
	return b.String()
}

// RenderStep renders one step as plain text, one line per instruction.
// An empty ingredients step renders as "".
func RenderStep(s render.Step) string {
	return strings.Join(stepLines(s), "\n")
}

func stepLines(s render.Step) []string {
	switch s.Kind {
	case render.StepIngredients:
		out := make([]string, 0, len(s.Ingredients))
		for _, ing := range s.Ingredients {
			out = append(out, phrase("add", ing.Amount, human(ing.Name)+comma(ing.Text)))
		}
		return out
	case render.StepNote:
		return []string{"note: " + s.Note.Text}
	case render.StepTransfer:
		return []string{"transfer the " + human(s.Transfer.Name)}
	case render.StepAction:
		a := s.Action
		return []string{phrase(a.Verb, "with the "+human(a.Tool), until(a.Text)) + minutes(a.Time)}
	case render.StepBake:
		k := s.Bake
		return []string{phrase(k.Mode, k.Text, "at "+k.Temperature, until(k.Until)) + minutes(k.Time)}
	case render.StepHeat:
		h := s.Heat
		return []string{phrase("heat", h.Text, until(h.Until)) + minutes(h.Time)}
	case render.StepChill:
		c := s.Chill
		return []string{phrase("chill", c.Text, until(c.Until)) + minutes(c.Time)}
	case render.StepStore:
		st := s.Store
		out := phrase("store", st.Text)
		if st.Upto != "" {
			out += " up to " + st.Upto
		}
		return []string{out}
	}
	return nil
}

// RenderIndex renders the corpus index, one line per module.
func RenderIndex(entries []*domain.IndexEntry) string {
	var b strings.Builder
	line(&b, stepStyle, fmt.Sprintf("Index (%d)", len(entries)))
	for _, e := range entries {
		b.WriteString("    " + primaryStyle.Render(fmt.Sprintf("%-20s %s", e.Slug, e.Title)))
		var meta []string
		for _, part := range []string{e.Duration, strings.Join(e.Keywords, ", "), e.Updated} {
			if part != "" {
				meta = append(meta, part)
			}
		}
		if len(meta) > 0 {
			b.WriteString(secondaryStyle.Render("  " + strings.Join(meta, " · ")))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderConversions renders the conversion records matching a search.
func RenderConversions(query string, convs []measure.Conversion) string {
	if len(convs) == 0 {
		return hint(fmt.Sprintf("no conversion matches %q", query))
	}
	var b strings.Builder
	for _, c := range convs {
		b.WriteString("  " + primaryStyle.Render(human(c.Symbol)) + " " +
			secondaryStyle.Render(fmt.Sprintf("%s %s per %s", humanize.Ftoa(c.Density), c.Metric, c.Imperial)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderError renders a per-script failure.
func RenderError(path string, err error) string {
	return urgentOutputStyle.Render("  " + path + ": " + err.Error())
}

// ── Helpers ──────────────────────────────────────────────────────

func line(b *strings.Builder, style interface{ Render(...string) string }, text string) {
	b.WriteString(style.Render("  "+text) + "\n")
}

func field(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString("  " + labelStyle.Render(fmt.Sprintf("%-8s", label)) + primaryStyle.Render(value) + "\n")
}

// phrase joins the non-empty parts with spaces.
func phrase(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func until(s string) string {
	if s == "" {
		return ""
	}
	return "until " + s
}

func minutes(t string) string {
	if t == "" {
		return ""
	}
	return " (" + t + ")"
}

func comma(s string) string {
	if s == "" {
		return ""
	}
	return ", " + s
}

// human turns a symbol into display text.
func human(symbol string) string {
	return strings.ReplaceAll(symbol, "_", " ")
}
