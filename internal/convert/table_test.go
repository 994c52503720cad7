package convert

import (
	"errors"
	"strings"
	"testing"

	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/measure"
)

func TestBuiltinTable(t *testing.T) {
	table := NewTable(logger.New(logger.LevelOff, nil))

	if table.Len() < 10 {
		t.Fatalf("expected a seeded table, got %d entries", table.Len())
	}

	tests := []struct {
		symbol   string
		density  float64
		imperial string
	}{
		{"sugar", 12.5, measure.Tablespoon},
		{"flour", 125, measure.Cup},
		{"salt", 6, measure.Teaspoon},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			c, ok := table.Lookup(tt.symbol)
			if !ok {
				t.Fatalf("%s missing", tt.symbol)
			}
			if c.Density != tt.density || c.Imperial != tt.imperial || c.Metric != measure.Gram {
				t.Fatalf("unexpected conversion %+v", c)
			}
		})
	}

	if _, ok := table.Lookup("unobtainium"); ok {
		t.Fatal("unexpected conversion for unknown symbol")
	}
}

func TestSugarExample(t *testing.T) {
	table := NewTable(logger.New(logger.LevelOff, nil))
	got := measure.Measure{Amount: 25, Units: measure.Gram}.HumanizeConvert("sugar", false, table, nil)
	if got != "25 g (2 tbsp)" {
		t.Fatalf("got %q", got)
	}
}

func TestExtendLastWriteWins(t *testing.T) {
	table := NewEmptyTable(logger.New(logger.LevelOff, nil))

	err := table.Extend(
		measure.Conversion{Symbol: "cheese", Density: 100},
		measure.Conversion{Symbol: "cheese", Density: 110, Imperial: measure.Cup, Metric: measure.Gram},
	)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}

	c, ok := table.Lookup("cheese")
	if !ok || c.Density != 110 {
		t.Fatalf("expected last write to win, got %+v", c)
	}
	if table.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", table.Len())
	}
}

func TestExtendRejectsInvalid(t *testing.T) {
	table := NewEmptyTable(logger.New(logger.LevelOff, nil))

	err := table.Extend(
		measure.Conversion{Symbol: "ok", Density: 1},
		measure.Conversion{Symbol: "bad", Density: 0},
	)
	if !errors.Is(err, measure.ErrInvalidConversion) {
		t.Fatalf("expected ErrInvalidConversion, got %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("nothing should be merged on error, got %d", table.Len())
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"yaml", "- symbol: lentils\n  density: 190\n", false},
		{"json", `[{"symbol": "lentils", "density": 190, "imperial": "cup", "metric": "g"}]`, false},
		{"unknown field", "- symbol: lentils\n  density: 190\n  colour: red\n", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewEmptyTable(logger.New(logger.LevelOff, nil))
			err := table.Load(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if tt.input == "" {
				return
			}
			c, ok := table.Lookup("lentils")
			if !ok || c.Density != 190 || c.Imperial != measure.Cup {
				t.Fatalf("unexpected %+v", c)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	table := NewTable(logger.New(logger.LevelOff, nil))

	got := table.Search("Brown Sugar")
	if len(got) != 1 || got[0].Symbol != "brown_sugar" {
		t.Fatalf("unexpected search result %+v", got)
	}
	if len(table.Search("sugar")) < 3 {
		t.Fatal("expected every sugar variant")
	}
}
