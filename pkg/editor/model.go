// Package editor is the interactive masking-area editor: a Bubble Tea
// program that feeds operator input to the capture/selection controller
// and carries out the effects it returns.
package editor

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/marcus/mask/internal/controller"
	"github.com/marcus/mask/internal/mapview"
	"github.com/marcus/mask/internal/models"
	masksync "github.com/marcus/mask/internal/sync"
	"github.com/marcus/mask/pkg/editor/keymap"
)

// Model is the main Bubble Tea model for the editor
type Model struct {
	Machine controller.Machine
	Service *masksync.Service
	Surface *mapview.Surface
	Keymap  *keymap.Registry
	WKID    int

	// Window dimensions
	Width  int
	Height int

	// Open form or dialog (at most one)
	Form   *FormState
	Dialog *models.SelectionHandle

	// Help overlay
	HelpOpen   bool
	HelpLines  []string // rendered help, one entry per line
	HelpScroll int      // first visible help line
	HelpStyle  string   // glamour style name

	Spinner spinner.Model

	// Status line
	StatusMessage string
	StatusLevel   controller.Level
	statusSeq     int

	// LoadErr is the last mask layer load failure, if any.
	LoadErr error
}

// Options configures a new editor model.
type Options struct {
	Service *masksync.Service
	Surface *mapview.Surface
	Keymap  *keymap.Registry
	WKID    int
	// HelpStyle is the glamour style for the help overlay; empty means dark.
	HelpStyle string
}

// NewModel creates the editor in the idle state. A nil Keymap gets the
// default bindings.
func NewModel(opts Options) Model {
	keys := opts.Keymap
	if keys == nil {
		keys = keymap.NewRegistry()
		keymap.RegisterDefaults(keys)
	}
	wkid := opts.WKID
	if wkid == 0 {
		wkid = models.DefaultWKID
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = subtleStyle

	return Model{
		Machine:   controller.New(opts.Surface.MaskLayer),
		Service:   opts.Service,
		Surface:   opts.Surface,
		Keymap:    keys,
		WKID:      wkid,
		HelpStyle: opts.HelpStyle,
		Spinner:   sp,
	}
}

// Init requests the initial feature count and loads the mask layer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return controller.RequestCount{} },
		m.loadFeatures(),
		m.Spinner.Tick,
	)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Surface.Resize(m.Width, m.mapHeight())
		if m.HelpOpen {
			m.renderHelp()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case controller.Event:
		return m.step(msg)

	case featuresLoadedMsg:
		return m.featuresLoaded(msg)

	case ClearStatusMsg:
		if msg.Seq == m.statusSeq {
			m.StatusMessage = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if m.Form != nil {
		return m.updateForm(msg)
	}
	return m, nil
}

// step runs one controller transition and carries out its effects.
func (m Model) step(ev controller.Event) (Model, tea.Cmd) {
	var effects []controller.Effect
	m.Machine, effects = controller.Step(m.Machine, ev)

	var cmds []tea.Cmd
	for _, e := range effects {
		if cmd := m.apply(e); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if cmd := m.reopenForm(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// apply carries out one effect. Local effects happen here and now; store
// calls are returned as commands whose result message goes back to step.
func (m *Model) apply(e controller.Effect) tea.Cmd {
	switch e := e.(type) {
	case controller.ActivateCapture:
		m.Surface.ActivateCapture()
	case controller.CancelCapture:
		m.Surface.CancelCapture()
	case controller.HoldScratch:
		m.Service.Scratch().Hold(e.Draft)
		m.showScratch()
	case controller.ClearScratch:
		m.Service.Scratch().Clear()
		m.showScratch()
	case controller.EnableHitTest:
		m.Surface.SetHitTest(true)
	case controller.DisableHitTest:
		m.Surface.SetHitTest(false)
		m.Surface.Select(0)

	case controller.PresentSaveForm:
		m.Dialog = nil
		m.Form = NewSaveForm(e.Attrs)
		return m.Form.Form.Init()
	case controller.PresentEditForm:
		m.Dialog = nil
		m.Form = NewEditForm(e.Handle, e.Attrs)
		return m.Form.Form.Init()
	case controller.PresentFeatureDialog:
		h := e.Handle
		m.Form = nil
		m.Dialog = &h
		m.Surface.Select(h.ObjectID)
	case controller.DismissUI:
		m.Form = nil
		m.Dialog = nil
		m.Surface.Select(0)

	case controller.CreateFeature:
		return createCmd(m.Service, e)
	case controller.UpdateFeature:
		return updateCmd(m.Service, e)
	case controller.DeleteFeature:
		return deleteCmd(m.Service, e)
	case controller.QueryCount:
		return countCmd(m.Service, e)
	case controller.RefreshLayer:
		m.Service.Refresh()
		return m.loadFeatures()

	case controller.Notify:
		return m.setStatus(e.Level, e.Text)
	}
	return nil
}

func (m *Model) showScratch() {
	if d, ok := m.Service.Scratch().Current(); ok {
		m.Surface.ShowDraft(&d)
		return
	}
	m.Surface.ShowDraft(nil)
}

// reopenForm makes a submitted form editable again once the controller
// has given up on the submit (rejected or failed) and kept the form open.
func (m *Model) reopenForm() tea.Cmd {
	if m.Form == nil || m.Form.Form.State == huh.StateNormal {
		return nil
	}
	switch st := m.Machine.State.(type) {
	case controller.AwaitingSaveForm:
		if st.Pending == 0 {
			m.Form.Rebuild(st.Attrs)
			return m.Form.Form.Init()
		}
	case controller.AwaitingEditForm:
		if st.Pending == 0 {
			m.Form.Rebuild(st.Attrs)
			return m.Form.Form.Init()
		}
	}
	return nil
}

func (m Model) loadFeatures() tea.Cmd {
	svc := m.Service
	gen := svc.Generation()
	return func() tea.Msg {
		features, err := svc.Features(context.Background())
		return featuresLoadedMsg{Gen: gen, Features: features, Err: err}
	}
}

func (m Model) featuresLoaded(msg featuresLoadedMsg) (Model, tea.Cmd) {
	if msg.Gen != m.Service.Generation() {
		return m, nil
	}
	if msg.Err != nil {
		m.LoadErr = msg.Err
		text := "Could not load masking areas."
		if f, ok := masksync.AsFailure(msg.Err); ok {
			text = f.UserMessage()
		}
		return m, m.setStatus(controller.LevelWarn, text)
	}
	m.LoadErr = nil
	m.Surface.SetFeatures(msg.Features)
	return m, nil
}

func (m *Model) setStatus(level controller.Level, text string) tea.Cmd {
	m.statusSeq++
	m.StatusMessage = text
	m.StatusLevel = level
	seq := m.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// mapHeight is the number of rows left for the map.
func (m Model) mapHeight() int {
	return max(m.Height-toolbarHeight-hintHeight-statusHeight, 1)
}
