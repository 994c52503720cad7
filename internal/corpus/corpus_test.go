package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/bwyd/internal/convert"
	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/engine"
	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/storage"
)

const pancakes = `
title: Pancakes
meta:
  - updated: 2024-03-01
closures:
  - name: pancakes
    keywords: [breakfast]
    products:
      - {symbol: pancakes, amount: 8, units: null}
    commands:
      - container: {symbol: pan, text: skillet}
      - ingredient: {symbol: flour, text: flour}
      - focus: pan
      - add: {symbol: flour, amount: 125, units: g}
      - heat: {symbol: pan, modifier: medium, until: bubbles form, duration: {amount: 3, units: minute}}
`

const broken = `
title: Broken
closures:
  - name: broken
    commands:
      - container: {symbol: pan, text: skillet}
      - focus: pan
      - add: {symbol: butter, amount: 10, units: g}
`

var fixedNow = time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

func writeScripts(t *testing.T, scripts map[string]string) map[string]string {
	t.Helper()
	dir := t.TempDir()
	paths := make(map[string]string, len(scripts))
	for name, src := range scripts {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(src), 0o644))
		paths[name] = p
	}
	return paths
}

func newRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	eng := engine.New(convert.NewTable(log), log)
	r, err := New(eng, log, append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestRunKeepsOrderAndIsolatesFailures(t *testing.T) {
	paths := writeScripts(t, map[string]string{
		"pancakes.yaml": pancakes,
		"broken.yaml":   broken,
	})
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	r := newRunner(t, WithWorkers(2))
	results, err := r.Run(context.Background(), []string{paths["broken.yaml"], paths["pancakes.yaml"], missing})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, paths["broken.yaml"], results[0].Path)
	require.Error(t, results[0].Err)
	assert.ErrorIs(t, results[0].Err, domain.ErrUndefined)
	assert.Contains(t, results[0].Err.Error(), "butter")

	require.NoError(t, results[1].Err)
	assert.Equal(t, "Pancakes", results[1].Module.Title)
	assert.Equal(t, []string{"8 pancakes"}, results[1].Model.Details.Serves)
	assert.Len(t, results[1].Hash, 64)

	require.Error(t, results[2].Err)
	assert.Contains(t, results[2].Err.Error(), "reading script")

	assert.Equal(t, 2, Failed(results))
}

func TestRunIndexesModules(t *testing.T) {
	paths := writeScripts(t, map[string]string{
		"pancakes.yaml": pancakes,
		"broken.yaml":   broken,
	})
	store := storage.NewMemoryStore(logger.New(logger.LevelOff, nil))

	r := newRunner(t, WithIndex(store))
	_, err := r.Run(context.Background(), []string{paths["pancakes.yaml"], paths["broken.yaml"]})
	require.NoError(t, err)

	entries, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "pancakes", e.Slug)
	assert.Equal(t, paths["pancakes.yaml"], e.Path)
	assert.Equal(t, "Pancakes", e.Title)
	assert.Equal(t, []string{"8 pancakes"}, e.Serves)
	assert.Equal(t, "3 minutes", e.Duration)
	assert.Equal(t, "2024-03-01", e.Updated)
	assert.Equal(t, []string{"breakfast"}, e.Keywords)
	assert.Equal(t, fixedNow, e.IndexedAt)

	hash, err := Hash(strings.NewReader(pancakes))
	require.NoError(t, err)
	assert.Equal(t, hash, e.Hash)
}

func TestRunCachesByContent(t *testing.T) {
	paths := writeScripts(t, map[string]string{"pancakes.yaml": pancakes})
	r := newRunner(t)
	ctx := context.Background()

	first, err := r.Run(ctx, []string{paths["pancakes.yaml"]})
	require.NoError(t, err)
	assert.False(t, first[0].Cached)

	second, err := r.Run(ctx, []string{paths["pancakes.yaml"]})
	require.NoError(t, err)
	assert.True(t, second[0].Cached)
	assert.Same(t, first[0].Module, second[0].Module)

	// Changed content misses the cache.
	require.NoError(t, os.WriteFile(paths["pancakes.yaml"], []byte(pancakes+"text: Fluffy.\n"), 0o644))
	third, err := r.Run(ctx, []string{paths["pancakes.yaml"]})
	require.NoError(t, err)
	assert.False(t, third[0].Cached)
	assert.Equal(t, "Fluffy.", third[0].Module.Text)
}

func TestRunCancelled(t *testing.T) {
	paths := writeScripts(t, map[string]string{"pancakes.yaml": pancakes})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(t).Run(ctx, []string{paths["pancakes.yaml"]})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHashStable(t *testing.T) {
	a, err := Hash(strings.NewReader("title: x\n"))
	require.NoError(t, err)
	b, err := Hash(strings.NewReader("title: x\n"))
	require.NoError(t, err)
	c, err := Hash(strings.NewReader("title: y\n"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestNewRejectsBadCacheSize(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	_, err := New(engine.New(nil, log), log, WithCacheSize(0))
	require.Error(t, err)
}
