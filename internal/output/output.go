// Package output provides styled terminal output helpers (success, error,
// warning, masking area formatting) using lipgloss.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/mask/internal/models"
	"github.com/marcus/mask/internal/schema"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	flagStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
)

// Success prints a success message
func Success(format string, args ...any) {
	fmt.Println(successStyle.Render(fmt.Sprintf(format, args...)))
}

// Error prints an error message
func Error(format string, args ...any) {
	fmt.Println(errorStyle.Render("ERROR: " + fmt.Sprintf(format, args...)))
}

// Warning prints a warning message
func Warning(format string, args ...any) {
	fmt.Println(warningStyle.Render("Warning: " + fmt.Sprintf(format, args...)))
}

// Info prints an info message
func Info(format string, args ...any) {
	fmt.Printf(format+"\n", args...)
}

// JSON outputs data as JSON
func JSON(v any) error {
	return WriteJSON(os.Stdout, v)
}

// WriteJSON writes indented JSON to w.
func WriteJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// FormatFlags lists the active mask labels, or "No masks active".
func FormatFlags(attrs schema.MaskAttributes) string {
	active := attrs.Active()
	if len(active) == 0 {
		return subtleStyle.Render("No masks active")
	}
	labels := make([]string, len(active))
	for i, f := range active {
		labels[i] = flagStyle.Render(f.Label)
	}
	return strings.Join(labels, ", ")
}

// FormatFeatureShort formats a masking area as a single line.
func FormatFeatureShort(f models.Feature) string {
	var vertices int
	if len(f.Geometry) > 0 {
		vertices = len(f.Geometry[0]) - 1
	}
	return fmt.Sprintf("%s  %s  %s",
		idStyle.Render(fmt.Sprintf("#%d", f.ObjectID)),
		subtleStyle.Render(fmt.Sprintf("%d vertices", vertices)),
		FormatFlags(f.Attributes),
	)
}

// FormatCount formats the saved area counter.
func FormatCount(n int64) string {
	if n == 1 {
		return "1 saved area"
	}
	return fmt.Sprintf("%d saved areas", n)
}

// FeatureJSON is the JSON shape of a masking area.
type FeatureJSON struct {
	ObjectID models.ObjectID `json:"objectid"`
	Masks    []string        `json:"masks"`
	Rings    [][][2]float64  `json:"rings"`
}

// ToFeatureJSON converts a feature for JSON output.
func ToFeatureJSON(f models.Feature) FeatureJSON {
	out := FeatureJSON{ObjectID: f.ObjectID, Masks: f.Attributes.ActiveKeys()}
	if out.Masks == nil {
		out.Masks = []string{}
	}
	for _, ring := range f.Geometry {
		r := make([][2]float64, len(ring))
		for i, p := range ring {
			r[i] = [2]float64{p[0], p[1]}
		}
		out.Rings = append(out.Rings, r)
	}
	return out
}

// SchemaMarkdown describes the mask flags as a markdown table.
func SchemaMarkdown() string {
	var sb strings.Builder
	sb.WriteString("# Mask categories\n\n")
	sb.WriteString("| Key | Label | Hides |\n|---|---|---|\n")
	for _, f := range schema.Flags() {
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", f.Key, f.Label, f.Description)
	}
	return sb.String()
}

// Title renders a bold heading.
func Title(s string) string {
	return titleStyle.Render(s)
}
