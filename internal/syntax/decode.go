package syntax

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/bwyd/internal/domain"
)

// ErrMalformed is returned when the document does not have the expected
// shape: wrong node kinds, missing symbols, unknown fields.
var ErrMalformed = errors.New("malformed document")

// DecodeFile opens and decodes one script.
func DecodeFile(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode reads one module document. name is recorded as the file of every
// node location.
func Decode(r io.Reader, name string) (*Module, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s is empty", ErrMalformed, name)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, name, err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	d := &decoder{file: name}
	return d.module(root)
}

type decoder struct {
	file string
}

func (d *decoder) loc(n *yaml.Node) domain.Location {
	return domain.Location{File: d.file, Line: n.Line, Column: n.Column}
}

func (d *decoder) errorf(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: %s at %s", ErrMalformed, fmt.Sprintf(format, args...), d.loc(n))
}

func (d *decoder) module(n *yaml.Node) (*Module, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "module must be a mapping")
	}

	m := &Module{File: d.file}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case "title":
			m.Title, err = d.scalar(val)
		case "text":
			m.Text, err = d.scalar(val)
		case "meta":
			m.Meta, err = d.meta(val)
		case "closures":
			m.Closures, err = d.closures(val)
		default:
			err = d.errorf(key, "unknown module field %q", key.Value)
		}
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (d *decoder) meta(n *yaml.Node) ([]Node, error) {
	items, err := d.sequence(n, "meta")
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		key, val, err := d.singleKey(item)
		if err != nil {
			return nil, err
		}
		value, err := d.scalar(val)
		if err != nil {
			return nil, err
		}

		loc := d.loc(item)
		switch Kind(key.Value) {
		case KindAuthor:
			nodes = append(nodes, &Author{nodeImpl: at(KindAuthor, loc), Name: value})
		case KindLicense:
			nodes = append(nodes, &License{nodeImpl: at(KindLicense, loc), ID: value})
		case KindUpdated:
			nodes = append(nodes, &Updated{nodeImpl: at(KindUpdated, loc), Date: value})
		case KindCite:
			nodes = append(nodes, &Cite{nodeImpl: at(KindCite, loc), URL: value})
		case KindPost:
			nodes = append(nodes, &Post{nodeImpl: at(KindPost, loc), URL: value})
		default:
			return nil, fmt.Errorf("%w: metadata %q at %s", domain.ErrUnsupportedNode, key.Value, loc)
		}
	}
	return nodes, nil
}

func (d *decoder) closures(n *yaml.Node) ([]*Closure, error) {
	items, err := d.sequence(n, "closures")
	if err != nil {
		return nil, err
	}

	out := make([]*Closure, 0, len(items))
	for _, item := range items {
		c, err := d.closure(item)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (d *decoder) closure(n *yaml.Node) (*Closure, error) {
	if n.Kind != yaml.MappingNode {
		return nil, d.errorf(n, "closure must be a mapping")
	}

	c := &Closure{Loc: d.loc(n)}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var err error
		switch key.Value {
		case "name":
			c.Name, err = d.scalar(val)
		case "text":
			c.Text, err = d.scalar(val)
		case "supers":
			c.Supers, err = d.strings(val)
		case "keywords":
			c.Keywords, err = d.strings(val)
		case "products":
			c.Products, err = d.products(val)
		case "commands":
			c.Commands, err = d.commands(val)
		default:
			err = d.errorf(key, "unknown closure field %q", key.Value)
		}
		if err != nil {
			return nil, err
		}
	}

	if c.Name == "" {
		return nil, d.errorf(n, "closure without a name")
	}
	return c, nil
}

func (d *decoder) products(n *yaml.Node) ([]Product, error) {
	items, err := d.sequence(n, "products")
	if err != nil {
		return nil, err
	}

	out := make([]Product, 0, len(items))
	for _, item := range items {
		var p Product
		if err := d.payload(item, "product", &p); err != nil {
			return nil, err
		}
		if p.Symbol == "" {
			return nil, d.errorf(item, "product without a symbol")
		}
		p.Loc = d.loc(item)
		out = append(out, p)
	}
	return out, nil
}

func (d *decoder) commands(n *yaml.Node) ([]Node, error) {
	items, err := d.sequence(n, "commands")
	if err != nil {
		return nil, err
	}

	out := make([]Node, 0, len(items))
	for _, item := range items {
		node, err := d.command(item)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

func (d *decoder) command(item *yaml.Node) (Node, error) {
	key, val, err := d.singleKey(item)
	if err != nil {
		return nil, err
	}
	kind := Kind(key.Value)
	loc := d.loc(item)

	switch kind {
	case KindContainer:
		n := &Container{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindTool:
		n := &Tool{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindIngredient:
		n := &Ingredient{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindUse:
		n := &Use{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindFocus:
		sym, err := d.symbol(item, val, kind)
		if err != nil {
			return nil, err
		}
		return &Focus{nodeImpl: at(kind, loc), Symbol: sym}, nil

	case KindTransfer:
		sym, err := d.symbol(item, val, kind)
		if err != nil {
			return nil, err
		}
		return &Transfer{nodeImpl: at(kind, loc), Symbol: sym}, nil

	case KindActivity:
		text, err := d.scalar(val)
		if err != nil {
			return nil, err
		}
		return &Activity{nodeImpl: at(kind, loc), Text: text}, nil

	case KindNote:
		text, err := d.scalar(val)
		if err != nil {
			return nil, err
		}
		return &Note{nodeImpl: at(kind, loc), Text: text}, nil

	case KindAdd:
		n := &Add{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindAction:
		n := &Action{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindBake:
		n := &Bake{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		if n.Temperature == nil {
			return nil, d.errorf(item, "bake without a temperature")
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindHeat:
		n := &Heat{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindChill:
		n := &Chill{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindStore:
		n := &Store{}
		if err := d.declaration(item, val, kind, &n.Symbol, n); err != nil {
			return nil, err
		}
		n.nodeImpl = at(kind, loc)
		return n, nil

	case KindRatio:
		return d.ratio(item, val)

	default:
		return nil, fmt.Errorf("%w: command %q at %s", domain.ErrUnsupportedNode, key.Value, loc)
	}
}

func (d *decoder) ratio(item, val *yaml.Node) (Node, error) {
	n := &Ratio{}
	if err := d.payload(val, string(KindRatio), n); err != nil {
		return nil, err
	}
	if n.Name == "" {
		return nil, d.errorf(item, "ratio without a name")
	}

	// Parts carry their own location for resolution errors.
	parts := d.field(val, "parts")
	for i := range n.Parts {
		n.Parts[i].Loc = d.loc(item)
		if parts != nil && i < len(parts.Content) {
			n.Parts[i].Loc = d.loc(parts.Content[i])
		}
		if n.Parts[i].Symbol == "" {
			return nil, d.errorf(item, "ratio part without a symbol")
		}
	}
	n.nodeImpl = at(KindRatio, d.loc(item))
	return n, nil
}

// declaration decodes a mapping payload into v and checks that the symbol
// it filled in is present.
func (d *decoder) declaration(item, val *yaml.Node, kind Kind, symbol *string, v any) error {
	if err := d.payload(val, string(kind), v); err != nil {
		return err
	}
	if *symbol == "" {
		return d.errorf(item, "%s without a symbol", kind)
	}
	return nil
}

func (d *decoder) symbol(item, val *yaml.Node, kind Kind) (string, error) {
	sym, err := d.scalar(val)
	if err != nil {
		return "", err
	}
	if sym == "" {
		return "", d.errorf(item, "%s without a symbol", kind)
	}
	return sym, nil
}

func (d *decoder) payload(n *yaml.Node, what string, v any) error {
	if n.Kind != yaml.MappingNode {
		return d.errorf(n, "%s expects a mapping", what)
	}
	// Node.Decode ignores unknown keys, so the payload goes through a
	// strict decoder instead.
	raw, err := yaml.Marshal(n)
	if err != nil {
		return d.errorf(n, "decoding %s: %v", what, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return d.errorf(n, "decoding %s: %v", what, err)
	}
	return nil
}

func (d *decoder) singleKey(n *yaml.Node) (key, val *yaml.Node, err error) {
	if n.Kind != yaml.MappingNode || len(n.Content) != 2 {
		return nil, nil, d.errorf(n, "expected a single-key mapping")
	}
	return n.Content[0], n.Content[1], nil
}

func (d *decoder) sequence(n *yaml.Node, what string) ([]*yaml.Node, error) {
	switch {
	case n.Kind == yaml.ScalarNode && n.Tag == "!!null":
		return nil, nil
	case n.Kind == yaml.SequenceNode:
		return n.Content, nil
	default:
		return nil, d.errorf(n, "%s must be a list", what)
	}
}

func (d *decoder) scalar(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", d.errorf(n, "expected a scalar")
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}

func (d *decoder) strings(n *yaml.Node) ([]string, error) {
	items, err := d.sequence(n, "tag list")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, err := d.scalar(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *decoder) field(n *yaml.Node, name string) *yaml.Node {
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == name {
			return n.Content[i+1]
		}
	}
	return nil
}
