package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	accent    = lipgloss.Color("#FF5C8A")
	accentAlt = lipgloss.Color("#5CC8FF")
	okGreen   = lipgloss.Color("#4ADE80")
	warnAmber = lipgloss.Color("#FBBF24")
	errRed    = lipgloss.Color("#F87171")
	dimGrey   = lipgloss.Color("#9CA3AF")
	panelBg   = lipgloss.Color("#1F2233")

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentAlt).
			Background(panelBg).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Background(accentAlt).
			Foreground(panelBg).
			Bold(true).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(accentAlt).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(warnAmber)

	targetStyle = lipgloss.NewStyle().
			Foreground(dimGrey).
			Italic(true)

	successStyle = lipgloss.NewStyle().
			Foreground(okGreen).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errRed).
			Bold(true)

	logTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280")).
			Padding(0, 0, 0, 1)
)

// levelColor returns the colour for a log level
func levelColor(level string) lipgloss.Color {
	switch level {
	case "ERROR":
		return errRed
	case "WARN":
		return warnAmber
	case "SUCCESS":
		return okGreen
	default:
		return accentAlt
	}
}
