package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/abdul-hamid-achik/ask/internal/config"
)

// Styles holds the lipgloss styles for one theme
type Styles struct {
	Prompt  lipgloss.Style // interactive prompt and run> markers
	Command lipgloss.Style // shell commands echoed back to the user
	Helper  lipgloss.Style // hints, confirmations, conversational replies
	Error   lipgloss.Style
	Warning lipgloss.Style
	Dim     lipgloss.Style
}

// darkStyles targets dark terminal backgrounds
var darkStyles = Styles{
	Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true),  // bright green
	Command: lipgloss.NewStyle().Foreground(lipgloss.Color("226")),            // bright yellow
	Helper:  lipgloss.NewStyle().Foreground(lipgloss.Color("51")).Bold(true),  // bright cyan
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // red
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // orange
	Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

// lightStyles targets light terminal backgrounds
var lightStyles = Styles{
	Prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("27")).Bold(true), // blue
	Command: lipgloss.NewStyle().Foreground(lipgloss.Color("124")),           // dark red
	Helper:  lipgloss.NewStyle().Foreground(lipgloss.Color("127")),           // magenta
	Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("160")).Bold(true),
	Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("130")).Bold(true),
	Dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

// StylesFor returns the style set for a theme
func StylesFor(theme config.Theme) Styles {
	if theme == config.ThemeLight {
		return lightStyles
	}
	return darkStyles
}
