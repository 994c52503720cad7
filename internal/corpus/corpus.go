// Package corpus interprets a batch of scripts in parallel, caches the
// results by content hash and records each module in an index store.
package corpus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/engine"
	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/render"
	"github.com/hammamikhairi/bwyd/internal/syntax"
)

// DefaultCacheSize bounds the number of interpreted scripts kept in memory.
const DefaultCacheSize = 256

// Result is the outcome of one script. Err is set when the script could
// not be read, decoded, interpreted, rendered or indexed.
type Result struct {
	Path   string
	Hash   string
	Module *domain.Module
	Model  *render.Model
	Cached bool
	Err    error
}

// Option configures the runner.
type Option func(*Runner)

// WithWorkers bounds the number of scripts processed at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithIndex records every successfully processed module in store.
func WithIndex(store domain.IndexStore) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithCacheSize sets the capacity of the content-hash cache.
func WithCacheSize(n int) Option {
	return func(r *Runner) {
		r.cacheSize = n
	}
}

// WithClock replaces time.Now for index timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// Runner drives the engine over many scripts.
type Runner struct {
	eng       *engine.Engine
	rend      *render.Renderer
	log       *logger.Logger
	store     domain.IndexStore
	cache     *lru.Cache[string, *Result]
	cacheSize int
	workers   int
	now       func() time.Time
}

// New creates a runner around eng. The converter behind eng must not be
// extended while Run is in progress.
func New(eng *engine.Engine, log *logger.Logger, opts ...Option) (*Runner, error) {
	r := &Runner{
		eng:       eng,
		rend:      render.New(eng, log),
		log:       log,
		cacheSize: DefaultCacheSize,
		workers:   4,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	cache, err := lru.New[string, *Result](r.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	r.cache = cache
	return r, nil
}

// Renderer returns the renderer shared by the runner's workers.
func (r *Runner) Renderer() *render.Renderer {
	return r.rend
}

// Run processes every path and returns one Result per path, in order.
// A failing script does not stop the others; the returned error is only
// set when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	id := newRunID()
	r.log.Info("run %s: %d scripts, %d workers", id, len(paths), r.workers)

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return err
			}
			results[i] = r.process(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, fmt.Errorf("run %s: %w", id, err)
	}

	failed := Failed(results)
	r.log.Info("run %s: done, %d ok, %d failed", id, len(results)-failed, failed)
	return results, nil
}

// Failed counts the results that carry an error.
func Failed(results []Result) int {
	n := 0
	for _, res := range results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

func (r *Runner) process(ctx context.Context, path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("reading script: %w", err)}
	}
	res := r.ProcessBytes(ctx, path, data)
	return *res
}

// ProcessBytes interprets one script already in memory. Identical content
// at the same path is served from the cache.
func (r *Runner) ProcessBytes(ctx context.Context, path string, data []byte) *Result {
	hash, err := Hash(bytes.NewReader(data))
	if err != nil {
		return &Result{Path: path, Err: err}
	}

	key := path + "@" + hash
	if cached, ok := r.cache.Get(key); ok {
		r.log.Debug("%s: cache hit", path)
		hit := *cached
		hit.Cached = true
		return &hit
	}

	res := &Result{Path: path, Hash: hash}
	log := r.log.Named(domain.Slugify(path))

	tree, err := syntax.Decode(bytes.NewReader(data), path)
	if err != nil {
		res.Err = fmt.Errorf("decoding: %w", err)
		return res
	}
	m, err := r.eng.Interpret(tree)
	if err != nil {
		res.Err = err
		return res
	}
	model, err := r.rend.Model(m)
	if err != nil {
		res.Err = err
		return res
	}
	res.Module, res.Model = m, model
	log.Debug("interpreted, %d warnings", len(m.Warnings))

	if r.store != nil {
		if err := r.store.Put(ctx, r.entry(res)); err != nil {
			res.Err = fmt.Errorf("indexing %s: %w", m.Slug, err)
			return res
		}
	}

	r.cache.Add(key, res)
	return res
}

func (r *Runner) entry(res *Result) *domain.IndexEntry {
	e := &domain.IndexEntry{
		Slug:      res.Module.Slug,
		Path:      res.Path,
		Title:     res.Module.Title,
		Text:      res.Module.Text,
		Serves:    res.Model.Details.Serves,
		Duration:  res.Model.Details.Duration,
		Keywords:  res.Model.Details.Keywords,
		Hash:      res.Hash,
		IndexedAt: r.now().UTC(),
	}
	if res.Model.Details.Updated != nil {
		e.Updated = *res.Model.Details.Updated
	}
	return e
}

// Hash returns the hex BLAKE3 digest of everything read from rd.
func Hash(rd io.Reader) (string, error) {
	h := blake3.New()
	if _, err := io.Copy(h, rd); err != nil {
		return "", fmt.Errorf("hashing script: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
