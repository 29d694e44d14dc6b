package tui

import (
	"github.com/2beens/wellnesscoach/internal/dashboard"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#7C3AED")
	colorSubtle = lipgloss.Color("#6B7280")
	colorError  = lipgloss.Color("#EF4444")
	colorOk     = lipgloss.Color("#22C55E")
	colorWarn   = lipgloss.Color("#EAB308")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	subtleStyle   = lipgloss.NewStyle().Foreground(colorSubtle)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	okStyle       = lipgloss.NewStyle().Foreground(colorOk)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	cardStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1).
			Width(24)
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorAccent).
			Padding(0, 1)
)

func readinessStyle(level dashboard.ReadinessLevel) lipgloss.Style {
	switch level.Color() {
	case "green":
		return lipgloss.NewStyle().Bold(true).Foreground(colorOk)
	case "yellow":
		return lipgloss.NewStyle().Bold(true).Foreground(colorWarn)
	case "red":
		return lipgloss.NewStyle().Bold(true).Foreground(colorError)
	default:
		return lipgloss.NewStyle().Bold(true).Foreground(colorSubtle)
	}
}

// progressBar renders fraction (0..1) as a fixed width bar.
func progressBar(fraction float64, width int) string {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	bar := make([]rune, width)
	for i := range bar {
		if i < filled {
			bar[i] = '█'
		} else {
			bar[i] = '░'
		}
	}
	return string(bar)
}
