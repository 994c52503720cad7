package domain

import "context"

// IndexStore persists one IndexEntry per interpreted script. Implementations
// can be in-memory or SQLite-backed.
type IndexStore interface {
	Put(ctx context.Context, entry *IndexEntry) error
	Get(ctx context.Context, slug string) (*IndexEntry, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context) ([]*IndexEntry, error)
}

// CommandParser converts browser input into commands. The module is passed
// so that closure names can be matched.
type CommandParser interface {
	Parse(ctx context.Context, input string, module *Module) (*Command, error)
}

// WarningSink receives warnings as they are produced. Implementations can
// print them, collect them, or both.
type WarningSink interface {
	Warn(ctx context.Context, w Warning) error
}
