package engine

import (
	_ "embed"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/syntax"
)

//go:embed licenses.yaml
var licenseTable []byte

var (
	licensesOnce sync.Once
	licenses     map[string]string
)

// DefaultLicenses returns a copy of the built-in SPDX id to name table.
func DefaultLicenses() map[string]string {
	licensesOnce.Do(func() {
		if err := yaml.Unmarshal(licenseTable, &licenses); err != nil {
			panic(fmt.Sprintf("engine: built-in license table: %v", err))
		}
	})

	out := make(map[string]string, len(licenses))
	for id, name := range licenses {
		out[id] = name
	}
	return out
}

// dateLayouts are tried in order for the updated metadata.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01/02/2006",
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func validURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func (e *Engine) interpretMeta(m *domain.Module, nodes []syntax.Node) error {
	for _, n := range nodes {
		loc := n.Location()

		switch n := n.(type) {
		case *syntax.Author:
			m.Author = n.Name

		case *syntax.License:
			if m.License != nil {
				return &domain.ResolutionError{Kind: "LICENSE", Symbol: n.ID, Loc: loc, Err: domain.ErrRedundant}
			}
			name, ok := e.licenses[n.ID]
			if !ok {
				return &domain.ResolutionError{Kind: "LICENSE", Symbol: n.ID, Loc: loc, Err: domain.ErrUnknownLicense}
			}
			m.License = &domain.License{ID: n.ID, Name: name}

		case *syntax.Updated:
			if m.Updated != nil {
				return &domain.ResolutionError{Kind: "UPDATED", Symbol: n.Date, Loc: loc, Err: domain.ErrRedundant}
			}
			t, ok := parseDate(n.Date)
			if !ok {
				return &domain.ResolutionError{Kind: "UPDATED", Symbol: n.Date, Loc: loc, Err: domain.ErrBadDate}
			}
			m.Updated = &t

		case *syntax.Cite:
			if !validURL(n.URL) {
				return &domain.ResolutionError{Kind: "CITE", Symbol: n.URL, Loc: loc, Err: domain.ErrBadURL}
			}
			m.Cites = append(m.Cites, n.URL)

		case *syntax.Post:
			if !validURL(n.URL) {
				return &domain.ResolutionError{Kind: "POST", Symbol: n.URL, Loc: loc, Err: domain.ErrBadURL}
			}
			m.Posts = append(m.Posts, domain.Post{URL: n.URL})

		default:
			return fmt.Errorf("%w: metadata %s at %s", domain.ErrUnsupportedNode, n.Kind(), loc)
		}
	}
	return nil
}
