// Package convert provides the ingredient density table used to annotate
// metric amounts with imperial approximations.
package convert

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/measure"
)

//go:embed convert.yaml
var defaultTable []byte

// Compile-time interface check.
var _ measure.Converter = (*Table)(nil)

// Table maps ingredient symbols to conversions. It only grows: Extend
// merges entries, last write wins per symbol. Safe for concurrent reads;
// extend before starting parallel work.
type Table struct {
	mu          sync.RWMutex
	conversions map[string]measure.Conversion
	log         *logger.Logger
}

// NewTable creates a table preloaded with the built-in conversions.
func NewTable(log *logger.Logger) *Table {
	t := NewEmptyTable(log)
	t.seed()
	return t
}

// NewEmptyTable creates a table with no conversions.
func NewEmptyTable(log *logger.Logger) *Table {
	return &Table{
		conversions: make(map[string]measure.Conversion),
		log:         log,
	}
}

// Lookup returns the conversion for symbol.
func (t *Table) Lookup(symbol string) (measure.Conversion, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, ok := t.conversions[symbol]
	return c, ok
}

// Extend validates every record, then merges them into the table. Nothing
// is merged if any record is invalid.
func (t *Table) Extend(convs ...measure.Conversion) error {
	for i := range convs {
		convs[i] = convs[i].WithDefaults()
		if err := convs[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, c := range convs {
		if _, ok := t.conversions[c.Symbol]; ok {
			t.log.Debug("conversion for %s replaced", c.Symbol)
		}
		t.conversions[c.Symbol] = c
	}
	t.log.Debug("conversion table extended by %d, size=%d", len(convs), len(t.conversions))
	return nil
}

// Load reads an ordered list of conversion records (YAML or JSON) and
// merges it into the table.
func (t *Table) Load(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var convs []measure.Conversion
	if err := dec.Decode(&convs); err != nil && err != io.EOF {
		return fmt.Errorf("decoding conversion table: %w", err)
	}
	if err := t.Extend(convs...); err != nil {
		return fmt.Errorf("loading conversion table: %w", err)
	}
	return nil
}

// LoadFile merges the conversion table at path.
func (t *Table) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening conversion table: %w", err)
	}
	defer f.Close()

	if err := t.Load(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	t.log.Info("loaded conversions from %s", path)
	return nil
}

// List returns all conversions sorted by symbol.
func (t *Table) List() []measure.Conversion {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]measure.Conversion, 0, len(t.conversions))
	for _, c := range t.conversions {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Search returns conversions whose symbol contains query, ignoring case
// and treating spaces as underscores.
func (t *Table) Search(query string) []measure.Conversion {
	q := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(query)), " ", "_")

	var out []measure.Conversion
	for _, c := range t.List() {
		if strings.Contains(strings.ToLower(c.Symbol), q) {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of conversions.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.conversions)
}

func (t *Table) seed() {
	if err := t.Load(bytes.NewReader(defaultTable)); err != nil {
		panic(fmt.Sprintf("convert: built-in table: %v", err))
	}
}
