package tui

import "github.com/charmbracelet/lipgloss"

// Color palette shared by the configure form and the terminal reports
var (
	ColorPrimary   = lipgloss.Color("#DB2777") // pink, titles and focus
	ColorSecondary = lipgloss.Color("#38BDF8") // sky, selected options

	ColorSuccess = lipgloss.Color("#22C55E")
	ColorError   = lipgloss.Color("#EF4444")
	ColorWarning = lipgloss.Color("#F59E0B")

	ColorText   = lipgloss.Color("#F8FAFC")
	ColorMuted  = lipgloss.Color("#94A3B8")
	ColorSubtle = lipgloss.Color("#64748B")
)
