package domain

import "time"

// IndexEntry is the discovery record of one interpreted script.
type IndexEntry struct {
	Slug      string
	Path      string
	Title     string
	Text      string
	Serves    []string
	Duration  string
	Updated   string // ISO date, empty when the script has none
	Keywords  []string
	Hash      string // hex content hash of the script bytes
	IndexedAt time.Time
}
