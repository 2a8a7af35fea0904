package editor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/marcus/mask/internal/controller"
	"github.com/marcus/mask/internal/output"
	"github.com/marcus/mask/internal/schema"
	"github.com/marcus/mask/pkg/editor/keymap"
)

// Hint banners per mode.
const (
	drawHint   = "Move the cursor and press space to place points. Press enter to complete the polygon."
	selectHint = "Click on a masking area to select it."
)

// View renders the editor
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return "Loading..."
	}

	var body string
	switch {
	case m.HelpOpen:
		body = m.helpView()
	case m.Form != nil:
		body = m.overlay(m.formView())
	case m.Dialog != nil:
		body = m.overlay(m.dialogView())
	default:
		body = m.Surface.Render()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.toolbarView(),
		m.hintView(),
		body,
		m.statusView(),
	)
}

func (m Model) toolbarView() string {
	left := toolbarTitleStyle.Render("Masking Areas")
	for _, a := range m.toolbarActions() {
		left += toolbarActionStyle.Render(toolbarKeyStyle.Render(a.key) + toolbarStyle.Render(" "+a.label))
	}

	count := "… saved areas"
	if m.Machine.CountKnown {
		count = output.FormatCount(m.Machine.FeatureCount)
	}
	if m.Machine.Busy() {
		count = m.Spinner.View() + " " + count
	}
	right := countStyle.Render(count)

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		return ansi.Truncate(left+right, m.Width, "…")
	}
	return left + toolbarStyle.Render(strings.Repeat(" ", gap)) + right
}

type toolbarAction struct {
	key   string
	label string
}

func (m Model) toolbarActions() []toolbarAction {
	switch m.Machine.Mode() {
	case controller.ModeDrawing:
		return []toolbarAction{{"esc", "Cancel Drawing"}, {"s", "Select Area"}}
	case controller.ModeSelecting:
		return []toolbarAction{{"esc", "Cancel Selection"}, {"d", "Draw New Area"}}
	}
	return []toolbarAction{{"d", "Draw New Area"}, {"s", "Select Area"}, {"?", "Help"}}
}

func (m Model) hintView() string {
	var text string
	switch m.activeContext() {
	case keymap.ContextDrawing:
		text = fmt.Sprintf("%s  %d points", drawHint, len(m.Surface.Vertices()))
	case keymap.ContextSelecting:
		text = selectHint
	default:
		return strings.Repeat(" ", m.Width)
	}
	return hintStyle.Width(m.Width).Render(ansi.Truncate(text, max(m.Width-2, 0), "…"))
}

func (m Model) statusView() string {
	if m.StatusMessage == "" {
		return subtleStyle.Render(ansi.Truncate("? help  q quit", m.Width, "…"))
	}
	style, ok := statusStyles[m.StatusLevel]
	if !ok {
		style = statusStyles[controller.LevelInfo]
	}
	return style.Render(ansi.Truncate(m.StatusMessage, m.Width, "…"))
}

// overlay centers a box over the map area.
func (m Model) overlay(box string) string {
	return lipgloss.Place(m.Width, m.mapHeight(), lipgloss.Center, lipgloss.Center, box,
		lipgloss.WithWhitespaceChars("·"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("236")),
	)
}

func (m Model) formView() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.Form.Title()))
	sb.WriteString("\n\n")

	var errText string
	switch st := m.Machine.State.(type) {
	case controller.AwaitingSaveForm:
		errText = st.Err
	case controller.AwaitingEditForm:
		errText = st.Err
	}

	if m.Machine.Busy() {
		sb.WriteString(m.Spinner.View() + " Saving…\n\n")
		sb.WriteString(output.FormatFlags(m.Form.Attributes()))
	} else {
		sb.WriteString(m.Form.Form.View())
	}
	if errText != "" {
		sb.WriteString("\n\n")
		sb.WriteString(errorTextStyle.Width(formWidth - 6).Render(errText))
	}
	sb.WriteString("\n\n")
	sb.WriteString(subtleStyle.Render("ctrl+s save · esc cancel"))
	return modalStyle.Width(formWidth).Render(sb.String())
}

func (m Model) dialogView() string {
	h := m.Dialog
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Selected Masking Area"))
	sb.WriteString(subtleStyle.Render(fmt.Sprintf("  #%d", h.ObjectID)))
	sb.WriteString("\n\n")

	active := h.Attributes.Active()
	if len(active) == 0 {
		sb.WriteString(subtleStyle.Render("No masks active"))
	}
	for _, f := range active {
		sb.WriteString(labelStyle.Render("• " + f.Label))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	var errText string
	if st, ok := m.Machine.State.(controller.FeatureChosen); ok {
		errText = st.Err
	}
	if errText != "" {
		sb.WriteString(errorTextStyle.Render(errText))
		sb.WriteString("\n\n")
	}

	if m.Machine.Busy() {
		sb.WriteString(m.Spinner.View() + " Deleting…")
	} else {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			buttonStyle.Render("e Edit"), " ",
			dangerButtonStyle.Render("x Delete"), " ",
			buttonStyle.Render("esc Close"),
		))
	}
	return modalStyle.Width(44).Render(sb.String())
}

// renderHelp renders the keymap help with glamour and resets scrolling.
func (m *Model) renderHelp() {
	width := max(min(m.Width, 100)-2, 20)
	md := m.Keymap.GenerateHelp() + "\n" + schemaHelp()
	text, err := output.RenderMarkdownStyled(md, width, m.HelpStyle)
	if err != nil {
		text = md
	}
	m.HelpLines = strings.Split(text, "\n")
	m.clampHelpScroll()
}

func schemaHelp() string {
	var sb strings.Builder
	sb.WriteString("## Masks\n\n")
	for _, f := range schema.Flags() {
		fmt.Fprintf(&sb, "- **%s**: %s\n", f.Label, f.Description)
	}
	return sb.String()
}

func (m *Model) clampHelpScroll() {
	maxScroll := max(len(m.HelpLines)-m.mapHeight(), 0)
	m.HelpScroll = min(max(m.HelpScroll, 0), maxScroll)
}

func (m Model) helpView() string {
	end := min(m.HelpScroll+m.mapHeight(), len(m.HelpLines))
	lines := append([]string(nil), m.HelpLines[m.HelpScroll:end]...)
	for len(lines) < m.mapHeight() {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
