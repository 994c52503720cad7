// Package conversation provides browser command parsing and warning
// notification implementations.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*KeywordParser)(nil)

// KeywordParser matches browser input to commands using keywords and simple
// patterns.
type KeywordParser struct {
	log      *logger.Logger
	patterns []patternRule
	prefixed []patternRule // "<verb> <argument>", the argument is the payload
}

type patternRule struct {
	regex   *regexp.Regexp
	command domain.CommandType
}

// NewKeywordParser creates a keyword-based command parser.
func NewKeywordParser(log *logger.Logger) *KeywordParser {
	p := &KeywordParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^(next|n|forward|>)$`), domain.CommandNext},
		{regexp.MustCompile(`(?i)^(prev|previous|p|back|<)$`), domain.CommandPrev},
		{regexp.MustCompile(`(?i)^(list|ls|closures|l)$`), domain.CommandList},
		{regexp.MustCompile(`(?i)^(ingredients|ingredient|ing|i)$`), domain.CommandIngredients},
		{regexp.MustCompile(`(?i)^(summary|info|details|s)$`), domain.CommandSummary},
		{regexp.MustCompile(`(?i)^(clear|reset|all)$`), domain.CommandClear},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.CommandHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.CommandQuit},
	}
	p.prefixed = []patternRule{
		{regexp.MustCompile(`(?i)^(?:open|show|select|go to|goto)\s+(.+)$`), domain.CommandOpen},
		{regexp.MustCompile(`(?i)^(?:filter|find|keyword|tag)\s+(.+)$`), domain.CommandFilter},
		{regexp.MustCompile(`(?i)^(?:conv|convert|density)\s+(.+)$`), domain.CommandConvert},
	}
	return p
}

// Parse converts user input into a command. A bare number or a bare closure
// name of module opens that closure.
func (p *KeywordParser) Parse(ctx context.Context, input string, module *domain.Module) (*domain.Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Command{Type: domain.CommandUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	// Closure selection by number (e.g., "1", "12").
	if len(trimmed) <= 3 && isDigits(trimmed) {
		return &domain.Command{Type: domain.CommandOpen, Payload: trimmed}, nil
	}

	for _, rule := range p.patterns {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched command: %s", rule.command)
			return &domain.Command{Type: rule.command}, nil
		}
	}

	for _, rule := range p.prefixed {
		if m := rule.regex.FindStringSubmatch(trimmed); m != nil {
			p.log.Debug("matched command: %s %q", rule.command, m[1])
			return &domain.Command{Type: rule.command, Payload: strings.TrimSpace(m[1])}, nil
		}
	}

	if name, ok := closureName(module, trimmed); ok {
		return &domain.Command{Type: domain.CommandOpen, Payload: name}, nil
	}

	p.log.Debug("no match, returning unknown command")
	return &domain.Command{Type: domain.CommandUnknown, Payload: trimmed}, nil
}

// closureName matches s against the closure names of m, ignoring case and
// treating spaces as underscores.
func closureName(m *domain.Module, s string) (string, bool) {
	if m == nil {
		return "", false
	}
	want := strings.ReplaceAll(strings.ToLower(s), " ", "_")
	for _, c := range m.Closures() {
		if strings.ToLower(c.Name) == want {
			return c.Name, true
		}
	}
	return "", false
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
