// Package storage provides corpus index implementations.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
)

// Compile-time interface check.
var _ domain.IndexStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory index, the default when no database is
// configured. Safe for concurrent access.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.IndexEntry
	log     *logger.Logger
}

// NewMemoryStore creates an empty in-memory index.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*domain.IndexEntry),
		log:     log,
	}
}

// Put stores an entry under its slug. Overwrites if it already exists.
func (s *MemoryStore) Put(ctx context.Context, entry *domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Debug("indexing %s (title=%q, hash=%s)", entry.Slug, entry.Title, entry.Hash)
	cp := *entry
	s.entries[entry.Slug] = &cp
	return nil
}

// Get retrieves an entry by slug.
func (s *MemoryStore) Get(ctx context.Context, slug string) (*domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[slug]
	if !ok {
		s.log.Debug("index entry not found: %s", slug)
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// Delete removes an entry by slug.
func (s *MemoryStore) Delete(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[slug]; !ok {
		return domain.ErrNotFound
	}
	delete(s.entries, slug)
	s.log.Debug("deleted index entry %s", slug)
	return nil
}

// List returns every entry ordered by slug.
func (s *MemoryStore) List(ctx context.Context) ([]*domain.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.IndexEntry, 0, len(s.entries))
	for _, e := range s.entries {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	s.log.Debug("listing index, count=%d", len(out))
	return out, nil
}
