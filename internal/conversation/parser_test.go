package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
)

func testModule() *domain.Module {
	m := domain.NewModule("gnocchi.yaml")
	m.AddClosure(domain.NewClosure("dough", "", domain.Location{}))
	m.AddClosure(domain.NewClosure("brown_butter", "", domain.Location{}))
	return m
}

func TestKeywordParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewKeywordParser(log)
	ctx := context.Background()
	module := testModule()

	tests := []struct {
		input       string
		wantType    domain.CommandType
		wantPayload string
	}{
		// Navigation
		{"next", domain.CommandNext, ""},
		{"n", domain.CommandNext, ""},
		{"prev", domain.CommandPrev, ""},
		{"back", domain.CommandPrev, ""},

		// Views
		{"list", domain.CommandList, ""},
		{"ls", domain.CommandList, ""},
		{"ingredients", domain.CommandIngredients, ""},
		{"i", domain.CommandIngredients, ""},
		{"summary", domain.CommandSummary, ""},
		{"INFO", domain.CommandSummary, ""},

		// Filtering
		{"filter pasta", domain.CommandFilter, "pasta"},
		{"find  potato ", domain.CommandFilter, "potato"},
		{"clear", domain.CommandClear, ""},

		// Conversion lookup
		{"conv flour", domain.CommandConvert, "flour"},
		{"density brown sugar", domain.CommandConvert, "brown sugar"},

		// Opening closures
		{"2", domain.CommandOpen, "2"},
		{"open dough", domain.CommandOpen, "dough"},
		{"show brown butter", domain.CommandOpen, "brown butter"},
		{"dough", domain.CommandOpen, "dough"},
		{"Brown Butter", domain.CommandOpen, "brown_butter"},

		// Help and quit
		{"help", domain.CommandHelp, ""},
		{"?", domain.CommandHelp, ""},
		{"quit", domain.CommandQuit, ""},
		{"q", domain.CommandQuit, ""},

		// Unknown
		{"", domain.CommandUnknown, ""},
		{"   ", domain.CommandUnknown, ""},
		{"make it spicy", domain.CommandUnknown, "make it spicy"},
		{"12345", domain.CommandUnknown, "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := parser.Parse(ctx, tt.input, module)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Type != tt.wantType {
				t.Errorf("input %q: expected %s, got %s", tt.input, tt.wantType, cmd.Type)
			}
			if cmd.Payload != tt.wantPayload {
				t.Errorf("input %q: expected payload %q, got %q", tt.input, tt.wantPayload, cmd.Payload)
			}
		})
	}
}

func TestKeywordParserNilModule(t *testing.T) {
	parser := NewKeywordParser(logger.New(logger.LevelOff, nil))
	cmd, err := parser.Parse(context.Background(), "dough", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Type != domain.CommandUnknown {
		t.Fatalf("expected unknown without a module, got %s", cmd.Type)
	}
}

func TestCLINotifier(t *testing.T) {
	var lines []string
	printFn := func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	}
	n := NewCLINotifier(logger.New(logger.LevelOff, nil), printFn)
	ctx := context.Background()

	n.Summary(ctx)
	if len(lines) != 0 {
		t.Fatalf("summary without warnings should print nothing, got %v", lines)
	}

	sink := n.Func(ctx)
	sink(domain.Warning{Kind: domain.WarnUnused, Symbol: "whisk", Message: "Tool whisk defined but not used"})
	sink(domain.Warning{Kind: domain.WarnConversion, Symbol: "yogurt", Message: "no conversion ratio for yogurt"})
	sink(domain.Warning{Kind: domain.WarnUnused, Symbol: "pot", Message: "Container pot defined but not used"})

	if n.Count() != 3 {
		t.Fatalf("expected 3 warnings, got %d", n.Count())
	}
	if !strings.Contains(lines[0], yellow) || !strings.Contains(lines[0], "unused: Tool whisk defined but not used") {
		t.Fatalf("unexpected line %q", lines[0])
	}
	if !strings.Contains(lines[1], cyan) {
		t.Fatalf("conversion warnings should be cyan: %q", lines[1])
	}

	n.Summary(ctx)
	last := lines[len(lines)-1]
	if !strings.Contains(last, "3 warnings, 2 unused, 1 conversion") {
		t.Fatalf("unexpected summary %q", last)
	}
}
