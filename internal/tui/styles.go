package tui

import "github.com/charmbracelet/lipgloss"

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))

	title = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 1)

	selected = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff00ff"))

	keyHint = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688")).
		Italic(true)
)

// Swatch renders a block in the material's display color.
func Swatch(hex string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("██")
}

// WavelengthColor approximates the visible color of light, or a UV violet
// below 380 nm.
func WavelengthColor(nm float64) string {
	switch {
	case nm < 380:
		return "#7f00ff"
	case nm < 450:
		return "#6a00ff"
	case nm < 495:
		return "#0080ff"
	case nm < 570:
		return "#00ff40"
	case nm < 590:
		return "#ffff00"
	case nm < 620:
		return "#ff8000"
	default:
		return "#ff0000"
	}
}
