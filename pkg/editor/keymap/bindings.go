package keymap

// DefaultBindings returns the built-in key bindings.
func DefaultBindings() []Binding {
	return []Binding{
		// Global
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "q", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal, Description: "Toggle help"},
		{Key: "r", Command: CmdRefresh, Context: ContextGlobal, Description: "Reload masking areas"},
		{Key: "up", Command: CmdCursorUp, Context: ContextGlobal, Description: "Move cursor up"},
		{Key: "k", Command: CmdCursorUp, Context: ContextGlobal, Description: "Move cursor up"},
		{Key: "down", Command: CmdCursorDown, Context: ContextGlobal, Description: "Move cursor down"},
		{Key: "j", Command: CmdCursorDown, Context: ContextGlobal, Description: "Move cursor down"},
		{Key: "left", Command: CmdCursorLeft, Context: ContextGlobal, Description: "Move cursor left"},
		{Key: "h", Command: CmdCursorLeft, Context: ContextGlobal, Description: "Move cursor left"},
		{Key: "right", Command: CmdCursorRight, Context: ContextGlobal, Description: "Move cursor right"},
		{Key: "l", Command: CmdCursorRight, Context: ContextGlobal, Description: "Move cursor right"},
		{Key: "K", Command: CmdPanUp, Context: ContextGlobal, Description: "Pan up"},
		{Key: "J", Command: CmdPanDown, Context: ContextGlobal, Description: "Pan down"},
		{Key: "H", Command: CmdPanLeft, Context: ContextGlobal, Description: "Pan left"},
		{Key: "L", Command: CmdPanRight, Context: ContextGlobal, Description: "Pan right"},
		{Key: "+", Command: CmdZoomIn, Context: ContextGlobal, Description: "Zoom in"},
		{Key: "=", Command: CmdZoomIn, Context: ContextGlobal, Description: "Zoom in"},
		{Key: "-", Command: CmdZoomOut, Context: ContextGlobal, Description: "Zoom out"},

		// Idle
		{Key: "d", Command: CmdStartDraw, Context: ContextIdle, Description: "Draw new area"},
		{Key: "s", Command: CmdStartSelect, Context: ContextIdle, Description: "Select area"},

		// Drawing
		{Key: "space", Command: CmdAddVertex, Context: ContextDrawing, Description: "Add vertex at cursor"},
		{Key: "backspace", Command: CmdUndoVertex, Context: ContextDrawing, Description: "Remove last vertex"},
		{Key: "enter", Command: CmdCompleteDraw, Context: ContextDrawing, Description: "Complete polygon"},
		{Key: "esc", Command: CmdCancelDraw, Context: ContextDrawing, Description: "Cancel drawing"},
		{Key: "s", Command: CmdStartSelect, Context: ContextDrawing, Description: "Switch to selecting"},

		// Selecting
		{Key: "enter", Command: CmdPick, Context: ContextSelecting, Description: "Select area under cursor"},
		{Key: "space", Command: CmdPick, Context: ContextSelecting, Description: "Select area under cursor"},
		{Key: "esc", Command: CmdCancelSelect, Context: ContextSelecting, Description: "Cancel selection"},
		{Key: "d", Command: CmdStartDraw, Context: ContextSelecting, Description: "Switch to drawing"},

		// Dialog
		{Key: "e", Command: CmdEdit, Context: ContextDialog, Description: "Edit masks"},
		{Key: "x", Command: CmdDelete, Context: ContextDialog, Description: "Delete area"},
		{Key: "delete", Command: CmdDelete, Context: ContextDialog, Description: "Delete area"},
		{Key: "esc", Command: CmdClose, Context: ContextDialog, Description: "Close dialog"},
		{Key: "c", Command: CmdCancelSelect, Context: ContextDialog, Description: "Cancel selection"},

		// Form
		{Key: "ctrl+s", Command: CmdFormSubmit, Context: ContextForm, Description: "Save"},
		{Key: "esc", Command: CmdFormCancel, Context: ContextForm, Description: "Cancel"},

		// Help
		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
		{Key: "j", Command: CmdScrollDown, Context: ContextHelp, Description: "Scroll down"},
		{Key: "down", Command: CmdScrollDown, Context: ContextHelp, Description: "Scroll down"},
		{Key: "k", Command: CmdScrollUp, Context: ContextHelp, Description: "Scroll up"},
		{Key: "up", Command: CmdScrollUp, Context: ContextHelp, Description: "Scroll up"},
	}
}

// RegisterDefaults registers the built-in bindings.
func RegisterDefaults(r *Registry) {
	r.RegisterBindings(DefaultBindings())
}
