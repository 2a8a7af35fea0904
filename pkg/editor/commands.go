package editor

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/mask/internal/controller"
	"github.com/marcus/mask/internal/models"
	masksync "github.com/marcus/mask/internal/sync"
	"github.com/marcus/mask/pkg/editor/keymap"
)

// Store calls run off the Update goroutine. The service applies its own
// timeout; the result message carries the op token back to the controller.

func createCmd(svc *masksync.Service, e controller.CreateFeature) tea.Cmd {
	return func() tea.Msg {
		id, err := svc.Create(context.Background(), e.Draft, e.Attrs)
		return controller.CreateResolved{Op: e.Op, ObjectID: id, Err: err}
	}
}

func updateCmd(svc *masksync.Service, e controller.UpdateFeature) tea.Cmd {
	return func() tea.Msg {
		err := svc.Update(context.Background(), e.ObjectID, e.Attrs)
		return controller.UpdateResolved{Op: e.Op, Err: err}
	}
}

func deleteCmd(svc *masksync.Service, e controller.DeleteFeature) tea.Cmd {
	return func() tea.Msg {
		err := svc.Delete(context.Background(), e.ObjectID)
		return controller.DeleteResolved{Op: e.Op, Err: err}
	}
}

func countCmd(svc *masksync.Service, e controller.QueryCount) tea.Cmd {
	return func() tea.Msg {
		n, err := svc.Count(context.Background())
		return controller.CountResolved{Op: e.Op, Count: n, Err: err}
	}
}

// activeContext returns the keymap context for the current UI state.
func (m Model) activeContext() keymap.Context {
	if m.HelpOpen {
		return keymap.ContextHelp
	}
	switch m.Machine.State.(type) {
	case controller.AwaitingSaveForm, controller.AwaitingEditForm:
		return keymap.ContextForm
	case controller.FeatureChosen:
		return keymap.ContextDialog
	case controller.Drawing:
		return keymap.ContextDrawing
	case controller.Selecting:
		return keymap.ContextSelecting
	}
	return keymap.ContextIdle
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	ctx := m.activeContext()
	if ctx == keymap.ContextForm {
		return m.handleFormKey(msg)
	}
	cmd, ok := m.Keymap.Lookup(msg, ctx)
	if !ok {
		return m, nil
	}
	return m.executeCommand(cmd)
}

// handleFormKey intercepts submit and cancel and hands every other key to
// the huh form. Nothing reaches the form while its submit is in flight.
func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Machine.Busy() || m.Form == nil {
		return m, nil
	}
	if cmd, ok := m.Keymap.Lookup(msg, keymap.ContextForm); ok {
		switch cmd {
		case keymap.CmdFormSubmit, keymap.CmdFormCancel:
			return m.executeCommand(cmd)
		}
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.Machine.Busy() {
		return m, nil
	}
	form, cmd := m.Form.Form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.Form.Form = f
	}
	switch m.Form.Form.State {
	case huh.StateCompleted:
		next, submit := m.step(controller.FormSubmit{Attrs: m.Form.Attributes()})
		return next, tea.Batch(cmd, submit)
	case huh.StateAborted:
		next, cancel := m.step(controller.FormCancel{})
		return next, tea.Batch(cmd, cancel)
	}
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.HelpOpen || m.Form != nil || m.Dialog != nil {
		return m, nil
	}
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.executeCommand(keymap.CmdZoomIn)
	case tea.MouseButtonWheelDown:
		return m.executeCommand(keymap.CmdZoomOut)
	case tea.MouseButtonLeft:
	default:
		return m, nil
	}

	p := models.ScreenPoint{X: msg.X, Y: msg.Y - toolbarHeight - hintHeight}
	if !m.Surface.View.Contains(p) {
		return m, nil
	}
	m.Surface.SetCursor(p)
	switch {
	case m.Surface.Capturing():
		m.Surface.AddVertex(p)
	case m.Surface.HitTesting():
		return m.step(controller.MapClicked{Point: p, Hits: m.Surface.HitTest(p)})
	}
	return m, nil
}

// executeCommand runs a keymap command.
func (m Model) executeCommand(cmd keymap.Command) (Model, tea.Cmd) {
	s := m.Surface
	panX, panY := max(s.View.Width/4, 1), max(s.View.Height/4, 1)

	switch cmd {
	case keymap.CmdQuit:
		return m, tea.Quit
	case keymap.CmdToggleHelp:
		m.HelpOpen = !m.HelpOpen
		if m.HelpOpen {
			m.renderHelp()
		}
	case keymap.CmdScrollDown:
		m.HelpScroll++
		m.clampHelpScroll()
	case keymap.CmdScrollUp:
		m.HelpScroll--
		m.clampHelpScroll()
	case keymap.CmdRefresh:
		m.Service.Refresh()
		next, count := m.step(controller.RequestCount{})
		return next, tea.Batch(count, next.loadFeatures())

	case keymap.CmdCursorUp:
		s.MoveCursor(0, -1)
	case keymap.CmdCursorDown:
		s.MoveCursor(0, 1)
	case keymap.CmdCursorLeft:
		s.MoveCursor(-1, 0)
	case keymap.CmdCursorRight:
		s.MoveCursor(1, 0)
	case keymap.CmdPanUp:
		s.View = s.View.Pan(0, -panY)
	case keymap.CmdPanDown:
		s.View = s.View.Pan(0, panY)
	case keymap.CmdPanLeft:
		s.View = s.View.Pan(-panX, 0)
	case keymap.CmdPanRight:
		s.View = s.View.Pan(panX, 0)
	case keymap.CmdZoomIn:
		s.View = s.View.ZoomBy(1)
	case keymap.CmdZoomOut:
		s.View = s.View.ZoomBy(-1)

	case keymap.CmdStartDraw:
		return m.step(controller.StartDraw{})
	case keymap.CmdStartSelect:
		return m.step(controller.StartSelect{})
	case keymap.CmdCancelDraw:
		return m.step(controller.CancelDraw{})
	case keymap.CmdCancelSelect:
		return m.step(controller.CancelSelect{})

	case keymap.CmdAddVertex:
		s.AddVertex(s.Cursor)
	case keymap.CmdUndoVertex:
		s.UndoVertex()
	case keymap.CmdCompleteDraw:
		if !s.Capturing() {
			return m, nil
		}
		return m.step(controller.DrawComplete{Geometry: s.Complete(m.WKID)})

	case keymap.CmdPick:
		return m.step(controller.MapClicked{Point: s.Cursor, Hits: s.HitTest(s.Cursor)})

	case keymap.CmdEdit:
		return m.step(controller.ChooseEdit{})
	case keymap.CmdDelete:
		return m.step(controller.ChooseDelete{})
	case keymap.CmdClose:
		return m.step(controller.CloseDialog{})

	case keymap.CmdFormSubmit:
		if m.Form == nil {
			return m, nil
		}
		return m.step(controller.FormSubmit{Attrs: m.Form.Attributes()})
	case keymap.CmdFormCancel:
		return m.step(controller.FormCancel{})
	}
	return m, nil
}
