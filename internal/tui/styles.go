package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette
var (
	colorAccent  = lipgloss.Color("37") // teal
	colorMuted   = lipgloss.Color("240")
	colorRunning = lipgloss.Color("214")
	colorDone    = lipgloss.Color("42")
	colorFailed  = lipgloss.Color("196")
)

var (
	StyleFocusedBorder   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorAccent)
	StyleUnfocusedBorder = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorMuted)

	StyleStatusRunning  = lipgloss.NewStyle().Foreground(colorRunning).Bold(true)
	StyleStatusComplete = lipgloss.NewStyle().Foreground(colorDone).Bold(true)
	StyleStatusFailed   = lipgloss.NewStyle().Foreground(colorFailed).Bold(true)
	StyleStatusSkipped  = lipgloss.NewStyle().Foreground(colorMuted).Italic(true)
	StyleStatusPending  = lipgloss.NewStyle().Foreground(colorMuted)

	StyleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	StyleSelected = lipgloss.NewStyle().Background(colorAccent).Foreground(lipgloss.Color("0"))
	StyleBarFill  = lipgloss.NewStyle().Foreground(colorDone)
	StyleWarning  = lipgloss.NewStyle().Foreground(colorRunning)
	StyleHelp     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
