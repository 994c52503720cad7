package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
)

var _ domain.IndexStore = (*SQLiteStore)(nil)

const schema = "CREATE TABLE IF NOT EXISTS module_index (" +
	"`slug` TEXT PRIMARY KEY, `path` TEXT, `title` TEXT, `text` TEXT, " +
	"`serves` TEXT, `duration` TEXT, `updated` TEXT, `keywords` TEXT, " +
	"`hash` TEXT, `indexed_at` INTEGER);"

const (
	queryPut = "INSERT OR REPLACE INTO module_index (`slug`, `path`, `title`, `text`, `serves`, " +
		"`duration`, `updated`, `keywords`, `hash`, `indexed_at`) VALUES " +
		"($slug, $path, $title, $text, $serves, $duration, $updated, $keywords, $hash, $indexed_at);"
	queryGet    = "SELECT * FROM module_index WHERE `slug` = $slug;"
	queryDelete = "DELETE FROM module_index WHERE `slug` = $slug;"
	queryList   = "SELECT * FROM module_index ORDER BY `slug`;"
)

// SQLiteStore is an index persisted in a single SQLite file. One connection
// is shared and guarded by a mutex, so the store is safe for concurrent use.
type SQLiteStore struct {
	mu   sync.Mutex
	conn *sqlite.Conn
	log  *logger.Logger
}

// OpenSQLite opens (creating if needed) the index database at path.
func OpenSQLite(path string, log *logger.Logger) (*SQLiteStore, error) {
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", path, err)
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	log.Debug("opened index %s", path)
	return &SQLiteStore{conn: conn, log: log}, nil
}

// Close releases the connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Close()
}

// Put stores an entry under its slug, replacing any previous one.
func (s *SQLiteStore) Put(ctx context.Context, entry *domain.IndexEntry) error {
	serves, err := json.Marshal(orEmpty(entry.Serves))
	if err != nil {
		return fmt.Errorf("encoding serves: %w", err)
	}
	keywords, err := json.Marshal(orEmpty(entry.Keywords))
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	stmt, err := s.conn.Prepare(queryPut)
	if err != nil {
		return fmt.Errorf("preparing put: %w", err)
	}
	defer stmt.Reset()

	stmt.SetText("$slug", entry.Slug)
	stmt.SetText("$path", entry.Path)
	stmt.SetText("$title", entry.Title)
	stmt.SetText("$text", entry.Text)
	stmt.SetText("$serves", string(serves))
	stmt.SetText("$duration", entry.Duration)
	stmt.SetText("$updated", entry.Updated)
	stmt.SetText("$keywords", string(keywords))
	stmt.SetText("$hash", entry.Hash)
	stmt.SetInt64("$indexed_at", entry.IndexedAt.Unix())
	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("indexing %s: %w", entry.Slug, err)
	}

	s.log.Debug("indexed %s (hash=%s)", entry.Slug, entry.Hash)
	return nil
}

// Get retrieves an entry by slug.
func (s *SQLiteStore) Get(ctx context.Context, slug string) (*domain.IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	stmt, err := s.conn.Prepare(queryGet)
	if err != nil {
		return nil, fmt.Errorf("preparing get: %w", err)
	}
	defer stmt.Reset()

	stmt.SetText("$slug", slug)
	hasRow, err := stmt.Step()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", slug, err)
	}
	if !hasRow {
		return nil, domain.ErrNotFound
	}
	return scanEntry(stmt)
}

// Delete removes an entry by slug.
func (s *SQLiteStore) Delete(ctx context.Context, slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	stmt, err := s.conn.Prepare(queryDelete)
	if err != nil {
		return fmt.Errorf("preparing delete: %w", err)
	}
	defer stmt.Reset()

	stmt.SetText("$slug", slug)
	if _, err := stmt.Step(); err != nil {
		return fmt.Errorf("deleting %s: %w", slug, err)
	}
	if s.conn.Changes() == 0 {
		return domain.ErrNotFound
	}
	s.log.Debug("deleted index entry %s", slug)
	return nil
}

// List returns every entry ordered by slug.
func (s *SQLiteStore) List(ctx context.Context) ([]*domain.IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.conn.SetInterrupt(s.conn.SetInterrupt(ctx.Done()))

	stmt, err := s.conn.Prepare(queryList)
	if err != nil {
		return nil, fmt.Errorf("preparing list: %w", err)
	}
	defer stmt.Reset()

	out := []*domain.IndexEntry{}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, fmt.Errorf("listing index: %w", err)
		}
		if !hasRow {
			break
		}
		e, err := scanEntry(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func scanEntry(stmt *sqlite.Stmt) (*domain.IndexEntry, error) {
	e := &domain.IndexEntry{
		Slug:      stmt.GetText("slug"),
		Path:      stmt.GetText("path"),
		Title:     stmt.GetText("title"),
		Text:      stmt.GetText("text"),
		Duration:  stmt.GetText("duration"),
		Updated:   stmt.GetText("updated"),
		Hash:      stmt.GetText("hash"),
		IndexedAt: time.Unix(stmt.GetInt64("indexed_at"), 0).UTC(),
	}
	if err := json.Unmarshal([]byte(stmt.GetText("serves")), &e.Serves); err != nil {
		return nil, fmt.Errorf("decoding serves of %s: %w", e.Slug, err)
	}
	if err := json.Unmarshal([]byte(stmt.GetText("keywords")), &e.Keywords); err != nil {
		return nil, fmt.Errorf("decoding keywords of %s: %w", e.Slug, err)
	}
	return e, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
