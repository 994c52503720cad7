// Package display renders modules for the terminal and provides the
// interactive closure browser built on Bubble Tea.
//
// The [Browser] keeps a status bar and an input prompt at the bottom of the
// terminal. All output is printed above the rendered area through
// tea.Println so it lands in the scrollback.
package display

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/bwyd/internal/domain"
	"github.com/hammamikhairi/bwyd/internal/logger"
	"github.com/hammamikhairi/bwyd/internal/measure"
	"github.com/hammamikhairi/bwyd/internal/render"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	barValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	barWarnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fca5a5"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	// BannerStyle is the muted slate of the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4e7")).
			Bold(true)

	// Activity titles.
	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	// Closure and section headers.
	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Hints and metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

const prompt = "bwyd> "

const helpText = `commands:
  list, ls             list closures
  next, prev           move between closures
  <n>, open <name>     jump to a closure
  ingredients, i       module ingredient list
  summary, info        title and details
  filter <keyword>     only closures tagged <keyword>
  clear                drop the filter
  conv <ingredient>    look up conversion densities
  quit, q              leave`

// ── Browser ──────────────────────────────────────────────────────

// ConversionSearcher finds conversion records by ingredient symbol.
type ConversionSearcher interface {
	Search(query string) []measure.Conversion
}

// Browser lets the user page through the closures of one module.
//
// Call [NewBrowser] then [Browser.Run] (blocking).
type Browser struct {
	log    *logger.Logger
	parser domain.CommandParser
	conv   ConversionSearcher
	module *domain.Module
	model  *render.Model
}

// NewBrowser creates a browser over a rendered module. conv may be nil,
// which disables conversion lookups.
func NewBrowser(module *domain.Module, model *render.Model, parser domain.CommandParser, conv ConversionSearcher, log *logger.Logger) *Browser {
	return &Browser{log: log, parser: parser, conv: conv, module: module, model: model}
}

// Run starts the Bubble Tea event loop. Blocks until the user quits or ctx
// is cancelled.
func (b *Browser) Run(ctx context.Context) error {
	b.log.Info("browsing %s (%d closures)", b.module.Path, len(b.model.Closures))

	p := tea.NewProgram(newBrowserModel(ctx, b.module, b.model, b.parser, b.conv), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}

// ── Bubble Tea model ─────────────────────────────────────────────

type browserModel struct {
	ctx     context.Context
	parser  domain.CommandParser
	conv    ConversionSearcher
	module  *domain.Module
	model   *render.Model
	input   textinput.Model
	visible []int // indexes into model.Closures that pass the filter
	cursor  int   // position in visible
	filter  string
	width   int
}

func newBrowserModel(ctx context.Context, module *domain.Module, model *render.Model, parser domain.CommandParser, conv ConversionSearcher) browserModel {
	ti := textinput.New()
	// Plain-text prompt so the textinput width math stays correct.
	ti.Prompt = prompt
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60 // updated on first WindowSizeMsg

	m := browserModel{
		ctx:    ctx,
		parser: parser,
		conv:   conv,
		module: module,
		model:  model,
		input:  ti,
	}
	m.showAll()
	return m
}

func (m browserModel) Init() tea.Cmd {
	intro := RenderBanner("a recipe in " + strconv.Itoa(len(m.model.Closures)) + " closures") +
		"\n" + RenderSummary(m.model) +
		secondaryStyle.Render("  type help for commands")
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("bwyd: "+m.model.Title),
		tea.Println(intro),
	)
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) == "" {
				return m, nil
			}
			out, quit := m.exec(v)
			cmds := []tea.Cmd{tea.Println(echo(v))}
			if out != "" {
				cmds = append(cmds, tea.Println(out))
			}
			if quit {
				cmds = append(cmds, tea.Quit)
			}
			return m, tea.Sequence(cmds...)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(prompt) {
			m.input.Width = msg.Width - len(prompt)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// exec runs one line of input and returns what to print. quit reports
// whether the browser should exit.
func (m *browserModel) exec(input string) (out string, quit bool) {
	cmd, err := m.parser.Parse(m.ctx, input, m.module)
	if err != nil {
		return urgent("could not read that: " + err.Error()), false
	}

	switch cmd.Type {
	case domain.CommandNext:
		if m.cursor >= len(m.visible)-1 {
			return hint("already at the last closure"), false
		}
		m.cursor++
		return m.current(), false

	case domain.CommandPrev:
		if m.cursor == 0 {
			return hint("already at the first closure"), false
		}
		m.cursor--
		return m.current(), false

	case domain.CommandOpen:
		return m.open(cmd.Payload), false

	case domain.CommandList:
		return m.list(), false

	case domain.CommandIngredients:
		return RenderIngredients(m.model), false

	case domain.CommandSummary:
		return RenderSummary(m.model), false

	case domain.CommandFilter:
		return m.applyFilter(cmd.Payload), false

	case domain.CommandConvert:
		if m.conv == nil {
			return hint("no conversion table loaded"), false
		}
		return RenderConversions(cmd.Payload, m.conv.Search(cmd.Payload)), false

	case domain.CommandClear:
		m.showAll()
		return hint("showing all closures"), false

	case domain.CommandHelp:
		return secondaryStyle.Render(helpText), false

	case domain.CommandQuit:
		return hint("bye"), true
	}
	return hint(fmt.Sprintf("unknown command %q, type help", cmd.Payload)), false
}

func (m *browserModel) showAll() {
	m.visible = make([]int, len(m.model.Closures))
	for i := range m.visible {
		m.visible[i] = i
	}
	m.cursor = 0
	m.filter = ""
}

func (m browserModel) current() string {
	if len(m.visible) == 0 {
		return hint("no closures")
	}
	idx := m.visible[m.cursor]
	return RenderClosure(m.model.Closures[idx], idx+1, len(m.model.Closures))
}

// open selects a closure by its number or its name. A closure hidden by the
// filter drops the filter.
func (m *browserModel) open(payload string) string {
	idx := -1
	if n, err := strconv.Atoi(payload); err == nil {
		if n < 1 || n > len(m.model.Closures) {
			return urgent(fmt.Sprintf("no closure %d, there are %d", n, len(m.model.Closures)))
		}
		idx = n - 1
	} else {
		want := strings.ReplaceAll(strings.ToLower(payload), " ", "_")
		for i, c := range m.model.Closures {
			if strings.ToLower(c.Title) == want {
				idx = i
				break
			}
		}
		if idx < 0 {
			return urgent(fmt.Sprintf("no closure named %q", payload))
		}
	}

	if pos := position(m.visible, idx); pos >= 0 {
		m.cursor = pos
	} else {
		m.showAll()
		m.cursor = idx
	}
	return m.current()
}

func (m browserModel) list() string {
	if len(m.visible) == 0 {
		return hint("no closures")
	}
	var b strings.Builder
	for pos, idx := range m.visible {
		c := m.model.Closures[idx]
		marker := " "
		if pos == m.cursor {
			marker = "›"
		}
		entry := fmt.Sprintf("  %s %2d  %s", marker, idx+1, c.Title)
		b.WriteString(primaryStyle.Render(entry))
		if tags := append(append([]string{}, c.Supers...), c.Keywords...); len(tags) > 0 {
			b.WriteString(secondaryStyle.Render("  " + strings.Join(tags, ", ")))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// applyFilter narrows the browser to closures whose supers or keywords
// contain kw. A filter matching nothing leaves the state unchanged.
func (m *browserModel) applyFilter(kw string) string {
	var matches []int
	for i, c := range m.model.Closures {
		if hasTag(c.Supers, kw) || hasTag(c.Keywords, kw) {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return urgent(fmt.Sprintf("no closure tagged %q", kw))
	}
	m.visible = matches
	m.cursor = 0
	m.filter = kw
	return hint(fmt.Sprintf("%d closures tagged %q", len(matches), kw)) + "\n" + m.list()
}

func (m browserModel) View() string {
	var b strings.Builder
	b.WriteString(m.renderBar())
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	return b.String()
}

func (m browserModel) renderBar() string {
	parts := []string{labelStyle.Render(m.model.Title)}
	if len(m.visible) > 0 {
		idx := m.visible[m.cursor]
		parts = append(parts,
			labelStyle.Render(fmt.Sprintf("closure %d/%d: ", idx+1, len(m.model.Closures)))+
				barValueStyle.Render(m.model.Closures[idx].Title))
	}
	if m.filter != "" {
		parts = append(parts, labelStyle.Render("filter: ")+barValueStyle.Render(m.filter))
	}
	if n := len(m.module.Warnings); n > 0 {
		parts = append(parts, barWarnStyle.Render(fmt.Sprintf("%d warnings", n)))
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

func echo(v string) string {
	return promptStyle.Render("bwyd") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(v)
}

func hint(text string) string {
	return secondaryStyle.Render("  " + text)
}

func urgent(text string) string {
	return urgentOutputStyle.Render("  " + text)
}

func hasTag(tags []string, kw string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, kw) {
			return true
		}
	}
	return false
}

func position(s []int, v int) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
