package theme

import "github.com/charmbracelet/lipgloss"

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// PanelStyle wraps dashboard panels.
var PanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// PanelTitleStyle renders panel headings.
var PanelTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// ColumnTitleStyle renders skills board column headings.
var ColumnTitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ErrorStyle renders user-visible failure notices.
var ErrorStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorRed)

// SuccessStyle renders confirmation notices.
var SuccessStyle = lipgloss.NewStyle().
	Foreground(ColorGreen)

// MetricStyle returns a color-coded style for a metric value where higher
// is better, based on the value's share of max.
func MetricStyle(value, max float64) lipgloss.Style {
	if max <= 0 {
		return lipgloss.NewStyle().Foreground(ColorGray)
	}
	pct := value / max * 100
	switch {
	case pct >= 80:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case pct >= 60:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case pct >= 40:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	default:
		return lipgloss.NewStyle().Foreground(ColorRed)
	}
}

// SorenessStyle returns a color-coded style for muscle soreness, where
// lower is better.
func SorenessStyle(value float64) lipgloss.Style {
	switch {
	case value <= 1:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case value <= 2:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case value <= 3:
		return lipgloss.NewStyle().Foreground(ColorOrange)
	default:
		return lipgloss.NewStyle().Foreground(ColorRed)
	}
}
