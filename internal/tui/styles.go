package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	Title     lipgloss.Style
	Sidebar   lipgloss.Style
	Section   lipgloss.Style
	Focused   lipgloss.Style
	User      lipgloss.Style
	Assistant lipgloss.Style
	Good      lipgloss.Style
	Bad       lipgloss.Style
	Muted     lipgloss.Style
	Spinner   lipgloss.Style
}

func newStyles(dark bool) styles {
	accent := lipgloss.Color("63")
	text := lipgloss.Color("252")
	if !dark {
		accent = lipgloss.Color("57")
		text = lipgloss.Color("235")
	}
	return styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1),
		Sidebar:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240")).Padding(0, 1),
		Section:   lipgloss.NewStyle().Bold(true).Foreground(text).MarginTop(1),
		Focused:   lipgloss.NewStyle().Bold(true).Foreground(accent).MarginTop(1),
		User:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Assistant: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		Good:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Bad:       lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("243")),
		Spinner:   lipgloss.NewStyle().Foreground(accent),
	}
}
