// Package domain defines the interpreted recipe model: closures with their
// resource registries, foci, activities and operations, and the module that
// owns them. All other packages depend on domain; domain depends only on
// the measure value types.
package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/hammamikhairi/bwyd/internal/measure"
)

// Product is a yield declared by a closure. Intermediate products feed
// other closures and are left out of the module's serving totals.
type Product struct {
	Loc          Location
	Symbol       string
	Amount       measure.Measure
	Intermediate bool
	RefCount     int
}

// Render returns "<amount> <symbol>" with underscores as spaces.
func (p Product) Render() string {
	return strings.ReplaceAll(strings.TrimSpace(p.Amount.Humanize())+" "+p.Symbol, "_", " ")
}

// Activity is a titled group of operations inside a Focus.
type Activity struct {
	Text string
	Ops  []Operation
}

// Focus is work happening in or on one container.
type Focus struct {
	Container  DepRef
	Activities []*Activity
}

// Closure is one recipe unit. It owns its registries, foci and products.
type Closure struct {
	Name     string
	Text     string
	Supers   []string
	Keywords []string
	Loc      Location

	Containers  *Registry
	Tools       *Registry
	Ingredients *Registry

	Foci     []*Focus
	Products []Product
	Pending  []PendingRef
}

// NewClosure creates a closure with empty registries.
func NewClosure(name, text string, loc Location) *Closure {
	return &Closure{
		Name:        name,
		Text:        text,
		Loc:         loc,
		Containers:  NewRegistry(DepContainer),
		Tools:       NewRegistry(DepTool),
		Ingredients: NewRegistry(DepIngredient),
	}
}

// Registry returns the registry holding dependencies of the given kind.
func (c *Closure) Registry(kind DepKind) *Registry {
	switch kind {
	case DepContainer:
		return c.Containers
	case DepTool:
		return c.Tools
	default:
		return c.Ingredients
	}
}

// Dep dereferences a DepRef held by one of this closure's operations.
func (c *Closure) Dep(ref DepRef) *Dependency {
	return c.Registry(ref.Kind).At(ref.Index)
}

// Requires lists the containers, then the tools, in declaration order.
func (c *Closure) Requires() []*Dependency {
	return append(c.Containers.Bound(), c.Tools.Bound()...)
}

// TotalYields renders the closure's products, including intermediate ones
// only when intermediaries is set.
func (c *Closure) TotalYields(intermediaries bool) []string {
	out := []string{}
	for _, p := range c.Products {
		if intermediaries || !p.Intermediate {
			out = append(out, p.Render())
		}
	}
	return out
}

// Ops walks every operation of the closure in order.
func (c *Closure) Ops(fn func(op Operation)) {
	for _, f := range c.Foci {
		for _, a := range f.Activities {
			for _, op := range a.Ops {
				fn(op)
			}
		}
	}
}

// License is an SPDX license reference.
type License struct {
	ID   string
	Name string
}

// URL returns the SPDX page for the license.
func (l License) URL() string {
	return "https://spdx.org/licenses/" + l.ID + ".html"
}

// Post is a gallery entry.
type Post struct {
	URL string
}

// Image returns an embeddable URL: Instagram posts get their /embed page,
// anything else is returned as is.
func (p Post) Image() string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return p.URL
	}
	host := u.Hostname()
	if host == "instagram.com" || strings.HasSuffix(host, ".instagram.com") {
		return strings.TrimSuffix(p.URL, "/") + "/embed"
	}
	return p.URL
}

// Module is one interpreted script. Closures keep their declaration order.
type Module struct {
	Path    string
	Slug    string
	Title   string
	Text    string
	Author  string
	License *License
	Updated *time.Time
	Cites   []string
	Posts   []Post

	// Warnings collects the non-fatal findings of interpretation and
	// aggregation.
	Warnings []Warning

	closures []*Closure
	index    map[string]int
}

// NewModule creates an empty module for the script at path.
func NewModule(path string) *Module {
	return &Module{
		Path:  path,
		Slug:  Slugify(path),
		index: make(map[string]int),
	}
}

// AddClosure appends c, or replaces a closure of the same name in place.
// It reports whether a closure was replaced.
func (m *Module) AddClosure(c *Closure) bool {
	if i, ok := m.index[c.Name]; ok {
		m.closures[i] = c
		return true
	}
	m.index[c.Name] = len(m.closures)
	m.closures = append(m.closures, c)
	return false
}

// Closures returns the closures in declaration order.
func (m *Module) Closures() []*Closure {
	return m.closures
}

// Closure finds a closure by name.
func (m *Module) Closure(name string) (*Closure, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	return m.closures[i], true
}

// Image is the embeddable URL of the first gallery post, or "".
func (m *Module) Image() string {
	if len(m.Posts) == 0 {
		return ""
	}
	return m.Posts[0].Image()
}

// Slugify derives an index key from a script path: the base name without
// its extension.
func Slugify(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}
