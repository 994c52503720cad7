package storage

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
)

func stores(t *testing.T) map[string]domain.IndexStore {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)

	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"), log)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	return map[string]domain.IndexStore{
		"memory": NewMemoryStore(log),
		"sqlite": sq,
	}
}

func entry(slug string) *domain.IndexEntry {
	return &domain.IndexEntry{
		Slug:      slug,
		Path:      "recipes/" + slug + ".yaml",
		Title:     "Frozen gnocchi",
		Text:      "Potato gnocchi for the freezer.",
		Serves:    []string{"4 gnocchi"},
		Duration:  "28 minutes",
		Updated:   "2024-02-11",
		Keywords:  []string{"dinner", "pasta"},
		Hash:      "af1349b9",
		IndexedAt: time.Date(2024, 2, 11, 10, 0, 0, 0, time.UTC),
	}
}

func TestIndexStoreCRUD(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := entry("gnocchi")

			// Put.
			if err := store.Put(ctx, e); err != nil {
				t.Fatalf("put: %v", err)
			}

			// Get.
			got, err := store.Get(ctx, "gnocchi")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if !reflect.DeepEqual(got, e) {
				t.Fatalf("got %+v, want %+v", got, e)
			}

			// Get nonexistent.
			if _, err := store.Get(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			// Overwrite.
			e2 := entry("gnocchi")
			e2.Hash = "0000"
			if err := store.Put(ctx, e2); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, _ = store.Get(ctx, "gnocchi")
			if got.Hash != "0000" {
				t.Fatalf("expected overwrite, got hash %s", got.Hash)
			}

			// Delete.
			if err := store.Delete(ctx, "gnocchi"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(ctx, "gnocchi"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}

			// Delete nonexistent.
			if err := store.Delete(ctx, "nonexistent"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestIndexStoreListOrdered(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, slug := range []string{"pancakes", "bread", "gnocchi"} {
				if err := store.Put(ctx, entry(slug)); err != nil {
					t.Fatalf("put %s: %v", slug, err)
				}
			}

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var slugs []string
			for _, e := range list {
				slugs = append(slugs, e.Slug)
			}
			want := []string{"bread", "gnocchi", "pancakes"}
			if !reflect.DeepEqual(slugs, want) {
				t.Fatalf("got %v, want %v", slugs, want)
			}
		})
	}
}

func TestIndexStoreEmptyLists(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			e := entry("plain")
			e.Serves = nil
			e.Keywords = []string{}
			if err := store.Put(ctx, e); err != nil {
				t.Fatalf("put: %v", err)
			}
			got, err := store.Get(ctx, "plain")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if len(got.Serves) != 0 || len(got.Keywords) != 0 {
				t.Fatalf("expected empty lists, got %+v", got)
			}
		})
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore(logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	e := entry("gnocchi")
	store.Put(ctx, e)
	e.Title = "changed after put"

	got, _ := store.Get(ctx, "gnocchi")
	if got.Title != "Frozen gnocchi" {
		t.Fatalf("store shares the caller's entry: %q", got.Title)
	}
}

func TestIndexStoreConcurrentPut(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for _, slug := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
				wg.Add(1)
				go func(slug string) {
					defer wg.Done()
					if err := store.Put(ctx, entry(slug)); err != nil {
						t.Errorf("put %s: %v", slug, err)
					}
				}(slug)
			}
			wg.Wait()

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(list) != 8 {
				t.Fatalf("expected 8 entries, got %d", len(list))
			}
		})
	}
}
