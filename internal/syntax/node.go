// Package syntax holds the tree the recipe grammar produces and decodes it
// from its YAML (or JSON) exchange form. Every node knows where it came from.
package syntax

import "github.com/hammamikhairi/bwyd/internal/domain"

// Kind names a node. The values double as the command keys of the
// exchange document.
type Kind string

const (
	KindContainer  Kind = "container"
	KindTool       Kind = "tool"
	KindIngredient Kind = "ingredient"
	KindUse        Kind = "use"
	KindFocus      Kind = "focus"
	KindActivity   Kind = "activity"
	KindAdd        Kind = "add"
	KindAction     Kind = "action"
	KindBake       Kind = "bake"
	KindHeat       Kind = "heat"
	KindChill      Kind = "chill"
	KindStore      Kind = "store"
	KindTransfer   Kind = "transfer"
	KindNote       Kind = "note"
	KindRatio      Kind = "ratio"

	KindAuthor  Kind = "author"
	KindLicense Kind = "license"
	KindUpdated Kind = "updated"
	KindCite    Kind = "cite"
	KindPost    Kind = "post"
)

// Node is one element of a closure's command list or of the module
// metadata. The set of implementations is closed.
type Node interface {
	Kind() Kind
	Location() domain.Location
	isNode()
}

type nodeImpl struct {
	kind Kind
	loc  domain.Location
}

func (n nodeImpl) Kind() Kind                { return n.kind }
func (n nodeImpl) Location() domain.Location { return n.loc }
func (nodeImpl) isNode()                     {}

// Quantity is an amount with units as written in the source.
type Quantity struct {
	Amount float64 `yaml:"amount"`
	Units  string  `yaml:"units"`
}

// Declarations.

type Container struct {
	nodeImpl `yaml:"-"`
	Symbol   string `yaml:"symbol"`
	Text     string `yaml:"text"`
}

type Tool struct {
	nodeImpl `yaml:"-"`
	Symbol   string `yaml:"symbol"`
	Text     string `yaml:"text"`
}

type Ingredient struct {
	nodeImpl `yaml:"-"`
	Symbol   string `yaml:"symbol"`
	Text     string `yaml:"text"`
}

// Use declares an ingredient produced by another closure.
type Use struct {
	nodeImpl `yaml:"-"`
	Symbol   string `yaml:"symbol"`
	Text     string `yaml:"text"`
}

// Structure.

type Focus struct {
	nodeImpl
	Symbol string
}

type Activity struct {
	nodeImpl
	Text string
}

// Operations.

type Add struct {
	nodeImpl `yaml:"-"`
	Symbol   string  `yaml:"symbol"`
	Amount   float64 `yaml:"amount"`
	Units    string  `yaml:"units"`
	Text     string  `yaml:"text"`
}

type Action struct {
	nodeImpl `yaml:"-"`
	Symbol   string    `yaml:"symbol"`
	Modifier string    `yaml:"modifier"`
	Until    string    `yaml:"until"`
	Duration *Quantity `yaml:"duration"`
}

type Bake struct {
	nodeImpl    `yaml:"-"`
	Symbol      string    `yaml:"symbol"`
	Modifier    string    `yaml:"modifier"`
	Until       string    `yaml:"until"`
	Duration    *Quantity `yaml:"duration"`
	Temperature *Quantity `yaml:"temperature"`
}

type Heat struct {
	nodeImpl `yaml:"-"`
	Symbol   string    `yaml:"symbol"`
	Modifier string    `yaml:"modifier"`
	Until    string    `yaml:"until"`
	Duration *Quantity `yaml:"duration"`
}

type Chill struct {
	nodeImpl `yaml:"-"`
	Symbol   string    `yaml:"symbol"`
	Modifier string    `yaml:"modifier"`
	Until    string    `yaml:"until"`
	Duration *Quantity `yaml:"duration"`
}

type Store struct {
	nodeImpl `yaml:"-"`
	Symbol   string    `yaml:"symbol"`
	Modifier string    `yaml:"modifier"`
	Duration *Quantity `yaml:"duration"`
}

type Transfer struct {
	nodeImpl
	Symbol string
}

type Note struct {
	nodeImpl
	Text string
}

// Ratio relates ingredients by proportion. Parts without components refer
// to declared ingredients.
type Ratio struct {
	nodeImpl `yaml:"-"`
	Name     string      `yaml:"name"`
	Parts    []RatioPart `yaml:"parts"`
}

type RatioPart struct {
	Symbol     string          `yaml:"symbol"`
	Components []string        `yaml:"components"`
	Loc        domain.Location `yaml:"-"`
}

// Metadata.

type Author struct {
	nodeImpl
	Name string
}

type License struct {
	nodeImpl
	ID string
}

type Updated struct {
	nodeImpl
	Date string
}

type Cite struct {
	nodeImpl
	URL string
}

type Post struct {
	nodeImpl
	URL string
}

// Product is a yield declared in a closure header.
type Product struct {
	Symbol       string          `yaml:"symbol"`
	Amount       float64         `yaml:"amount"`
	Units        string          `yaml:"units"`
	Intermediate bool            `yaml:"intermediate"`
	Loc          domain.Location `yaml:"-"`
}

// Closure is one recipe unit: header fields plus its commands in source
// order.
type Closure struct {
	Name     string
	Text     string
	Supers   []string
	Keywords []string
	Products []Product
	Commands []Node
	Loc      domain.Location
}

// Module is the root of a decoded document.
type Module struct {
	File     string
	Title    string
	Text     string
	Meta     []Node
	Closures []*Closure
}

// at stamps kind and location onto a freshly decoded node.
func at(kind Kind, loc domain.Location) nodeImpl {
	return nodeImpl{kind: kind, loc: loc}
}
