package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent = lipgloss.AdaptiveColor{Light: "#128c7e", Dark: "#25d366"}
	muted  = lipgloss.Color("244")
	edge   = lipgloss.Color("238")

	promptStyle  = lipgloss.NewStyle().Foreground(accent).Bold(true)
	periodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(accent).Padding(0, 1)
	markerStyle  = lipgloss.NewStyle().Foreground(accent)
	weekStyle    = lipgloss.NewStyle().Foreground(accent).Bold(true)
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	noteStyle    = lipgloss.NewStyle().Foreground(accent).Padding(0, 1)

	boxStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(edge)
)
