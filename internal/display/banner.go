package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner art and subtitle centred for the current
// terminal width.
func RenderBanner(subtitle string) string {
	width := termWidth()
	out := center(strings.TrimRight(bannerRaw, "\n"), width, BannerStyle.Render)
	if subtitle != "" {
		out += center(subtitle, width, secondaryStyle.Render)
	}
	return out
}

// center pads every line of text so the block sits in the middle of width
// columns. The widest line decides the padding.
func center(text string, width int, style func(...string) string) string {
	lines := strings.Split(text, "\n")
	maxW := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > maxW {
			maxW = n
		}
	}
	pad := ""
	if width > maxW {
		pad = strings.Repeat(" ", (width-maxW)/2)
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(pad)
		b.WriteString(style(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the current terminal column count, or 80 as fallback.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
