// Package keymap maps keys to editor commands per UI context, with user
// overrides from the config file.
package keymap

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// Context represents a UI context for keybindings
type Context string

const (
	ContextGlobal    Context = "global"
	ContextIdle      Context = "idle"
	ContextDrawing   Context = "drawing"   // capture tool active
	ContextSelecting Context = "selecting" // clicks hit-test the mask layer
	ContextDialog    Context = "dialog"    // feature summary dialog open
	ContextForm      Context = "form"      // attribute form open
	ContextHelp      Context = "help"      // help overlay open
)

// Command represents a named command that can be triggered by key bindings
type Command string

const (
	// Global commands
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"
	CmdRefresh    Command = "refresh"

	// Map navigation
	CmdCursorUp    Command = "cursor-up"
	CmdCursorDown  Command = "cursor-down"
	CmdCursorLeft  Command = "cursor-left"
	CmdCursorRight Command = "cursor-right"
	CmdPanUp       Command = "pan-up"
	CmdPanDown     Command = "pan-down"
	CmdPanLeft     Command = "pan-left"
	CmdPanRight    Command = "pan-right"
	CmdZoomIn      Command = "zoom-in"
	CmdZoomOut     Command = "zoom-out"

	// Mode commands
	CmdStartDraw    Command = "start-draw"
	CmdStartSelect  Command = "start-select"
	CmdCancelDraw   Command = "cancel-draw"
	CmdCancelSelect Command = "cancel-select"

	// Drawing
	CmdAddVertex    Command = "add-vertex"
	CmdUndoVertex   Command = "undo-vertex"
	CmdCompleteDraw Command = "complete-draw"

	// Selecting
	CmdPick Command = "pick"

	// Feature dialog
	CmdEdit   Command = "edit"
	CmdDelete Command = "delete"
	CmdClose  Command = "close"

	// Form
	CmdFormSubmit Command = "form-submit"
	CmdFormCancel Command = "form-cancel"

	// Help
	CmdScrollDown Command = "scroll-down"
	CmdScrollUp   Command = "scroll-up"
)

// Binding maps a key to a command in a specific context
type Binding struct {
	Key         string  // e.g., "tab", "ctrl+s", "d"
	Command     Command // Command ID
	Context     Context // "global", "drawing", ...
	Description string  // Human-readable description for help text
}

// Registry manages key bindings and command dispatch
type Registry struct {
	bindings      map[Context][]Binding // context -> bindings
	userOverrides map[string]Command    // "context:key" -> command
	mu            sync.RWMutex
}

// NewRegistry creates a new keymap registry
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[Context][]Binding),
		userOverrides: make(map[string]Command),
	}
}

// RegisterBinding adds a key binding
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
}

// RegisterBindings adds multiple key bindings
func (r *Registry) RegisterBindings(bindings []Binding) {
	for _, b := range bindings {
		r.RegisterBinding(b)
	}
}

// SetUserOverride sets a user-configured key override for a specific context
func (r *Registry) SetUserOverride(context Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.userOverrides[string(context)+":"+key] = cmd
}

// Lookup finds the command for a key in the active context.
// Checks: user overrides -> context bindings -> global bindings
func (r *Registry) Lookup(key tea.KeyMsg, activeContext Context) (Command, bool) {
	return r.LookupString(KeyToString(key), activeContext)
}

// LookupString is Lookup for an already formatted key.
func (r *Registry) LookupString(key string, activeContext Context) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if activeContext != "" && activeContext != ContextGlobal {
		if cmd, ok := r.userOverrides[string(activeContext)+":"+key]; ok {
			return cmd, true
		}
		if cmd, ok := r.findInContext(key, activeContext); ok {
			return cmd, true
		}
	}
	if cmd, ok := r.userOverrides[string(ContextGlobal)+":"+key]; ok {
		return cmd, true
	}
	return r.findInContext(key, ContextGlobal)
}

func (r *Registry) findInContext(key string, context Context) (Command, bool) {
	for _, b := range r.bindings[context] {
		if b.Key == key {
			return b.Command, true
		}
	}
	return "", false
}

// BindingsForContext returns all bindings for a given context (including global)
func (r *Registry) BindingsForContext(context Context) []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Binding
	result = append(result, r.bindings[context]...)
	if context != ContextGlobal {
		result = append(result, r.bindings[ContextGlobal]...)
	}
	return result
}

// KeyToString converts a tea.KeyMsg to the form used in bindings
func KeyToString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeySpace:
		return "space"
	case tea.KeyRunes:
		if key.Alt {
			return "alt+" + string(key.Runes)
		}
		return string(key.Runes)
	}
	return key.String()
}
