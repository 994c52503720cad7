package domain

import "fmt"

// Location points into a source document.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// DepKind enumerates the three resource registries of a closure.
type DepKind int

const (
	DepContainer DepKind = iota
	DepTool
	DepIngredient
)

// String returns the upper-case label used in diagnostics.
func (k DepKind) String() string {
	switch k {
	case DepContainer:
		return "CONTAINER"
	case DepTool:
		return "TOOL"
	case DepIngredient:
		return "INGREDIENT"
	default:
		return "UNKNOWN"
	}
}

// Dependency is a declared Container, Tool or Ingredient. External
// ingredients come from another closure's product.
type Dependency struct {
	Loc      Location
	Symbol   string
	Text     string
	RefCount int
	External bool
}

// DepRef addresses one slot of a closure's registries. Operations hold
// DepRefs, never pointers.
type DepRef struct {
	Kind  DepKind
	Index int
}

// PendingRef is an external ingredient waiting for module validation.
type PendingRef struct {
	Ref    DepRef
	Symbol string
	Loc    Location
}

// Registry is the arena of dependencies of one kind inside one closure.
// Slots are append-only; redeclaring a symbol binds it to a new slot and
// the old one stays addressable by the operations that already hold it.
type Registry struct {
	kind  DepKind
	slots []Dependency
	index map[string]int
	order []string
}

// NewRegistry creates an empty registry of the given kind.
func NewRegistry(kind DepKind) *Registry {
	return &Registry{
		kind:  kind,
		index: make(map[string]int),
	}
}

// Kind returns the registry's dependency kind.
func (r *Registry) Kind() DepKind { return r.kind }

// Declare binds dep.Symbol to a new slot with a zero reference count.
// It reports whether the symbol was already bound.
func (r *Registry) Declare(dep Dependency) (DepRef, bool) {
	dep.RefCount = 0
	_, redeclared := r.index[dep.Symbol]
	if !redeclared {
		r.order = append(r.order, dep.Symbol)
	}
	r.slots = append(r.slots, dep)
	r.index[dep.Symbol] = len(r.slots) - 1
	return DepRef{Kind: r.kind, Index: len(r.slots) - 1}, redeclared
}

// ResolveLocal looks symbol up and counts the reference. A miss is the
// caller's fatal error to report.
func (r *Registry) ResolveLocal(symbol string) (DepRef, bool) {
	i, ok := r.index[symbol]
	if !ok {
		return DepRef{}, false
	}
	r.slots[i].RefCount++
	return DepRef{Kind: r.kind, Index: i}, true
}

// MarkExternal declares an ingredient sourced from another closure. It
// never fails locally; the returned PendingRef is checked by module
// validation.
func (r *Registry) MarkExternal(dep Dependency) PendingRef {
	dep.External = true
	ref, _ := r.Declare(dep)
	return PendingRef{Ref: ref, Symbol: dep.Symbol, Loc: dep.Loc}
}

// Lookup finds the current binding of symbol without counting a reference.
func (r *Registry) Lookup(symbol string) (*Dependency, bool) {
	i, ok := r.index[symbol]
	if !ok {
		return nil, false
	}
	return &r.slots[i], true
}

// At returns the slot a DepRef points to.
func (r *Registry) At(i int) *Dependency {
	return &r.slots[i]
}

// Len returns the number of live bindings.
func (r *Registry) Len() int { return len(r.order) }

// Bound returns the live bindings in first-declaration order.
func (r *Registry) Bound() []*Dependency {
	out := make([]*Dependency, 0, len(r.order))
	for _, sym := range r.order {
		out = append(out, &r.slots[r.index[sym]])
	}
	return out
}
