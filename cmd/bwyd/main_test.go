package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/hammamikhairi/bwyd/internal/corpus"
	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/render"
	"github.com/hammamikhairi/bwyd/internal/storage"
)

func TestEnvInt(t *testing.T) {
	tests := []struct {
		value string
		want  int
	}{
		{"", 4},
		{"8", 8},
		{"zero", 4},
		{"0", 4},
		{"-2", 4},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv(envWorkers, tt.value)
			if got := envInt(envWorkers, 4); got != tt.want {
				t.Fatalf("envInt(%q) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestPrintJSON(t *testing.T) {
	model := func(r corpus.Result) (any, error) { return r.Model, nil }
	ok := corpus.Result{Path: "a.yaml", Model: &render.Model{Title: "A"}}
	failed := corpus.Result{Path: "b.yaml", Err: errors.New("boom")}

	var buf bytes.Buffer
	app := &cliApp{log: logger.New(logger.LevelOff, nil), out: &buf}

	// A single script prints one document.
	app.printJSON([]corpus.Result{ok}, model)
	var single map[string]any
	if err := json.Unmarshal(buf.Bytes(), &single); err != nil {
		t.Fatalf("single output is not an object: %v\n%s", err, buf.String())
	}
	if single["title"] != "A" {
		t.Fatalf("unexpected title %v", single["title"])
	}

	// A batch prints an array without the failures.
	buf.Reset()
	app.printJSON([]corpus.Result{ok, failed}, model)
	var batch []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &batch); err != nil {
		t.Fatalf("batch output is not an array: %v\n%s", err, buf.String())
	}
	if len(batch) != 1 {
		t.Fatalf("expected 1 document, got %d", len(batch))
	}

	// A single failed script prints nothing.
	buf.Reset()
	app.printJSON([]corpus.Result{failed}, model)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}
}

func TestPrintIndex(t *testing.T) {
	ctx := context.Background()
	log := logger.New(logger.LevelOff, nil)
	index := storage.NewMemoryStore(log)
	for _, e := range []*domain.IndexEntry{
		{Slug: "toast", Title: "Toast"},
		{Slug: "pancakes", Title: "Pancakes", Duration: "20 minutes"},
	} {
		if err := index.Put(ctx, e); err != nil {
			t.Fatalf("put %s: %v", e.Slug, err)
		}
	}

	var buf bytes.Buffer
	app := &cliApp{log: log, out: &buf}
	if err := app.printIndex(ctx, index); err != nil {
		t.Fatalf("printIndex: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Index (2)") {
		t.Fatalf("missing header in %q", out)
	}
	if strings.Index(out, "pancakes") > strings.Index(out, "toast") {
		t.Fatalf("entries not ordered by slug: %q", out)
	}
	if !strings.Contains(out, "20 minutes") {
		t.Fatalf("missing duration in %q", out)
	}
}
