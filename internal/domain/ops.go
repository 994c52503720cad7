package domain

import "github.com/hammamikhairi/bwyd/internal/measure"

// Operation is one step inside an Activity. The set of implementations is
// closed: Note, Transfer, Add, Action, Bake, Heat, Chill, Store.
type Operation interface {
	Location() Location
	// Duration is zero for operations that take no time.
	Duration() measure.Duration
	isOperation()
}

type opBase struct {
	Loc Location
}

func (o opBase) Location() Location       { return o.Loc }
func (opBase) Duration() measure.Duration { return measure.Seconds(0) }
func (opBase) isOperation()               {}

type timed struct {
	opBase
	Time measure.Duration
}

func (t timed) Duration() measure.Duration { return t.Time }

// Note is free text from the author to the cook.
type Note struct {
	opBase
	Text string
}

// Transfer moves an intermediate into the focused container.
type Transfer struct {
	opBase
	Symbol string
	Entity DepRef
}

// Add puts a measured amount of an ingredient into the focused container.
type Add struct {
	opBase
	Symbol  string
	Measure measure.Measure
	Text    string
	Entity  DepRef
}

// Action is the cook using a tool (or a container) on the food.
type Action struct {
	timed
	Tool     DepRef
	Modifier string
	Until    string
}

// Bake runs an oven on a container.
type Bake struct {
	timed
	Container   DepRef
	Modifier    string
	Until       string
	Temperature measure.Temperature
}

// Heat runs a range or hotplate on a container.
type Heat struct {
	timed
	Container DepRef
	Modifier  string
	Until     string
}

// Chill runs a refrigerator or freezer on a container.
type Chill struct {
	timed
	Container DepRef
	Modifier  string
	Until     string
}

// Store keeps a closure's yield in a container for up to Time.
type Store struct {
	timed
	Container DepRef
	Modifier  string
}

// NewNote and friends stamp the source location onto an operation.

func NewNote(loc Location, text string) *Note {
	return &Note{opBase: opBase{Loc: loc}, Text: text}
}

func NewTransfer(loc Location, symbol string, entity DepRef) *Transfer {
	return &Transfer{opBase: opBase{Loc: loc}, Symbol: symbol, Entity: entity}
}

func NewAdd(loc Location, symbol string, m measure.Measure, text string, entity DepRef) *Add {
	return &Add{opBase: opBase{Loc: loc}, Symbol: symbol, Measure: m, Text: text, Entity: entity}
}

func NewAction(loc Location, tool DepRef, modifier, until string, d measure.Duration) *Action {
	return &Action{timed: timed{opBase{loc}, d}, Tool: tool, Modifier: modifier, Until: until}
}

func NewBake(loc Location, container DepRef, modifier, until string, d measure.Duration, t measure.Temperature) *Bake {
	return &Bake{timed: timed{opBase{loc}, d}, Container: container, Modifier: modifier, Until: until, Temperature: t}
}

func NewHeat(loc Location, container DepRef, modifier, until string, d measure.Duration) *Heat {
	return &Heat{timed: timed{opBase{loc}, d}, Container: container, Modifier: modifier, Until: until}
}

func NewChill(loc Location, container DepRef, modifier, until string, d measure.Duration) *Chill {
	return &Chill{timed: timed{opBase{loc}, d}, Container: container, Modifier: modifier, Until: until}
}

func NewStore(loc Location, container DepRef, modifier string, d measure.Duration) *Store {
	return &Store{timed: timed{opBase{loc}, d}, Container: container, Modifier: modifier}
}
