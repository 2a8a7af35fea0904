package keymap

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	tests := []struct {
		name    string
		key     tea.KeyMsg
		context Context
		want    Command
		found   bool
	}{
		{"quit from idle", runes("q"), ContextIdle, CmdQuit, true},
		{"draw from idle", runes("d"), ContextIdle, CmdStartDraw, true},
		{"select while drawing", runes("s"), ContextDrawing, CmdStartSelect, true},
		{"space adds vertex", tea.KeyMsg{Type: tea.KeySpace}, ContextDrawing, CmdAddVertex, true},
		{"space picks while selecting", tea.KeyMsg{Type: tea.KeySpace}, ContextSelecting, CmdPick, true},
		{"enter completes", tea.KeyMsg{Type: tea.KeyEnter}, ContextDrawing, CmdCompleteDraw, true},
		{"esc cancels draw", tea.KeyMsg{Type: tea.KeyEsc}, ContextDrawing, CmdCancelDraw, true},
		{"esc cancels select", tea.KeyMsg{Type: tea.KeyEsc}, ContextSelecting, CmdCancelSelect, true},
		{"esc closes dialog", tea.KeyMsg{Type: tea.KeyEsc}, ContextDialog, CmdClose, true},
		{"ctrl+s submits form", tea.KeyMsg{Type: tea.KeyCtrlS}, ContextForm, CmdFormSubmit, true},
		{"global fallback", runes("+"), ContextDialog, CmdZoomIn, true},
		{"edit only in dialog", runes("e"), ContextIdle, "", false},
		{"unbound", runes("z"), ContextIdle, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Lookup(tt.key, tt.context)
			if ok != tt.found || got != tt.want {
				t.Errorf("Lookup = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.found)
			}
		})
	}
}

func TestUserOverride(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	ApplyOverrides(r, map[string]string{
		"drawing:a": "add-vertex",
		"n":         "start-draw",
		"idle:":     "quit",
	})

	if cmd, ok := r.Lookup(runes("a"), ContextDrawing); !ok || cmd != CmdAddVertex {
		t.Errorf("drawing:a = (%q, %v), want add-vertex", cmd, ok)
	}
	if _, ok := r.Lookup(runes("a"), ContextIdle); ok {
		t.Error("context override leaked into idle")
	}
	if cmd, ok := r.Lookup(runes("n"), ContextSelecting); !ok || cmd != CmdStartDraw {
		t.Errorf("global n = (%q, %v), want start-draw", cmd, ok)
	}

	// Overrides beat the context's own bindings.
	r.SetUserOverride(ContextIdle, "d", CmdStartSelect)
	if cmd, _ := r.Lookup(runes("d"), ContextIdle); cmd != CmdStartSelect {
		t.Errorf("override d = %q, want start-select", cmd)
	}
}

func TestKeyToString(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{runes("j"), "j"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x"), Alt: true}, "alt+x"},
		{tea.KeyMsg{Type: tea.KeySpace}, "space"},
		{tea.KeyMsg{Type: tea.KeyEnter}, "enter"},
		{tea.KeyMsg{Type: tea.KeyBackspace}, "backspace"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, "ctrl+c"},
	}
	for _, tt := range tests {
		if got := KeyToString(tt.key); got != tt.want {
			t.Errorf("KeyToString(%v) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestGenerateHelp(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	help := r.GenerateHelp()

	for _, want := range []string{"## Drawing", "## Selected area", "Complete polygon", "`ctrl+s`"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q", want)
		}
	}
	if !strings.Contains(help, "`k` / `up`") {
		t.Error("expected keys for the same command merged into one row")
	}
}
