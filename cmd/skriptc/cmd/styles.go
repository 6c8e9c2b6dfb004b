package cmd

import (
	"github.com/charmbracelet/lipgloss"
)

// Colors
var (
	colorPrimary   = lipgloss.Color("#7C3AED")
	colorSecondary = lipgloss.Color("#10B981")
	colorAccent    = lipgloss.Color("#F59E0B")
	colorError     = lipgloss.Color("#EF4444")
	colorMuted     = lipgloss.Color("#6B7280")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	okStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Bold(true)

	skipStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorError).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	// Table columns
	nameColumn   = lipgloss.NewStyle().Width(10)
	originColumn = lipgloss.NewStyle().Width(10)
	statusColumn = lipgloss.NewStyle().Width(11)
	timeColumn   = lipgloss.NewStyle().Width(21)
	checkColumn  = lipgloss.NewStyle().Width(16)
)
