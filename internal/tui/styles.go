package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Base styles for lyricsync terminal output
var (
	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary).
			MarginBottom(1)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// secondary text such as versions and paths
	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorMuted)

	StyleSubtle = lipgloss.NewStyle().
			Foreground(ColorSubtle).
			Italic(true)
)

const logoASCII = `
 _            _
| |_   _ _ __(_) ___ ___ _   _ _ __   ___
| | | | | '__| |/ __/ __| | | | '_ \ / __|
| | |_| | |  | | (__\__ \ |_| | | | | (__
|_|\__, |_|  |_|\___|___/\__, |_| |_|\___|
   |___/                 |___/            `

// Logo returns the lyricsync ASCII art
func Logo() string {
	return StyleHeader.Render(strings.Trim(logoASCII, "\n"))
}
