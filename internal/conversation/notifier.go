package conversation

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
)

// Compile-time interface check.
var _ domain.WarningSink = (*CLINotifier)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	red    = "\033[31m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
// Matches the signature of fmt.Printf.
type PrintFunc func(format string, a ...interface{})

// CLINotifier prints warnings with ANSI formatting as they are produced and
// remembers them for a closing summary.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc

	mu   sync.Mutex
	seen []domain.Warning
}

// NewCLINotifier creates a stdout-based notifier.
// If printFn is nil, fmt.Printf is used.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	return &CLINotifier{log: log, printFn: printFn}
}

// Warn prints one warning. Unused declarations are yellow, conversion
// notes cyan, everything else red.
func (n *CLINotifier) Warn(ctx context.Context, w domain.Warning) error {
	n.mu.Lock()
	n.seen = append(n.seen, w)
	n.mu.Unlock()

	color := red
	switch w.Kind {
	case domain.WarnUnused:
		color = yellow
	case domain.WarnConversion:
		color = cyan
	}
	n.log.Debug("notify: %s", w)
	n.printFn("%s%swarning%s %s", color, bold, reset, w)
	return nil
}

// Func adapts the notifier to engine.WithWarningSink.
func (n *CLINotifier) Func(ctx context.Context) func(domain.Warning) {
	return func(w domain.Warning) {
		n.Warn(ctx, w)
	}
}

// Count returns the number of warnings printed so far.
func (n *CLINotifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.seen)
}

// Summary prints a closing line with the warning count per kind.
func (n *CLINotifier) Summary(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.seen) == 0 {
		return nil
	}
	counts := make(map[domain.WarningKind]int)
	for _, w := range n.seen {
		counts[w.Kind]++
	}
	msg := fmt.Sprintf("%d warnings", len(n.seen))
	for _, k := range []domain.WarningKind{domain.WarnUnused, domain.WarnConversion, domain.WarnDuplicate, domain.WarnAggregation} {
		if counts[k] > 0 {
			msg += fmt.Sprintf(", %d %s", counts[k], k)
		}
	}
	n.printFn("%s%s%s%s", yellow, bold, msg, reset)
	return nil
}
