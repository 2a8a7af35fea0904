package output

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultMarkdownWidth = 80
	minMarkdownWidth     = 20
)

// TerminalWidth reports the width of stdout, then $COLUMNS, then fallback.
func TerminalWidth(fallback int) int {
	if fallback <= 0 {
		fallback = defaultMarkdownWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 0 {
		return n
	}
	return fallback
}

// RenderMarkdown renders for the current terminal, picking light or dark
// from the terminal background.
func RenderMarkdown(text string) (string, error) {
	return render(text, TerminalWidth(defaultMarkdownWidth), glamour.WithAutoStyle())
}

// RenderMarkdownStyled renders with a named glamour style ("dark", "light",
// "notty"). Use it inside the editor, where the terminal cannot be queried.
func RenderMarkdownStyled(text string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	return render(text, width, glamour.WithStandardStyle(style))
}

func render(text string, width int, style glamour.TermRendererOption) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	width = max(width, minMarkdownWidth)

	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	out, err := r.Render(text)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n"), nil
}
