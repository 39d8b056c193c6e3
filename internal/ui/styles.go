// Package ui renders catalogue results for the terminal.
package ui

import "github.com/charmbracelet/lipgloss"

var (
	// Accent highlights titles and ids.
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	// Muted is for secondary info.
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold is for headers.
	Bold = lipgloss.NewStyle().Bold(true)
)
