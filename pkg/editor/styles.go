package editor

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/mask/internal/controller"
)

var (
	// Base colors
	primaryColor   = lipgloss.Color("212")
	secondaryColor = lipgloss.Color("141")
	mutedColor     = lipgloss.Color("241")
	successColor   = lipgloss.Color("42")
	warningColor   = lipgloss.Color("214")
	errorColor     = lipgloss.Color("196")

	toolbarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255"))

	toolbarTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Background(primaryColor).
				Foreground(lipgloss.Color("0")).
				Padding(0, 1)

	toolbarActionStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255")).
				Padding(0, 1)

	toolbarKeyStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(secondaryColor).
			Bold(true)

	countStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("252")).
			Padding(0, 1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(secondaryColor).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(primaryColor)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("238")).
			Padding(0, 1)

	dangerButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("255")).
				Background(lipgloss.Color("124")).
				Padding(0, 1)

	statusStyles = map[controller.Level]lipgloss.Style{
		controller.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		controller.LevelSuccess: lipgloss.NewStyle().Foreground(successColor),
		controller.LevelWarn:    lipgloss.NewStyle().Foreground(warningColor),
		controller.LevelError:   lipgloss.NewStyle().Foreground(errorColor).Bold(true),
	}

	errorTextStyle = lipgloss.NewStyle().Foreground(errorColor)
)
