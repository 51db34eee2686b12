package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/metroboard/metro/internal/models"
)

var (
	colorCyan   = lipgloss.Color("6")
	colorYellow = lipgloss.Color("3")
	colorRed    = lipgloss.Color("1")
	colorGreen  = lipgloss.Color("2")
	colorWhite  = lipgloss.Color("15")
	colorGray   = lipgloss.Color("8")
)

// Text styles
var (
	styleHeader   = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleCode     = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	styleArriving = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	styleMuted    = lipgloss.NewStyle().Foreground(colorGray)
	styleLoading  = lipgloss.NewStyle().Foreground(colorYellow).Italic(true)
	styleError    = lipgloss.NewStyle().Foreground(colorRed)
	styleLogo     = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// The LED panel frame
var stylePanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorGray)

// Status bar at the bottom
var styleStatusBar = lipgloss.NewStyle().
	Foreground(colorGray)

// lineStyle colors text like the board does for a line
func lineStyle(code string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(models.LineColor(code).Hex())).
		Bold(true)
}
