package tui

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/lyricsync/internal/deps"
	"github.com/leonardotrapani/lyricsync/internal/models/whisper"
)

// RenderDeps formats dependency statuses for the check command
func RenderDeps(statuses []deps.Status) string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render("Dependencies"))
	b.WriteString("\n")

	for _, s := range statuses {
		var mark string
		switch {
		case s.Installed:
			mark = StyleSuccess.Render("✓")
		case s.Required:
			mark = StyleError.Render("✗")
		default:
			mark = StyleWarning.Render("-")
		}

		line := fmt.Sprintf("%s %-12s", mark, s.Name)
		switch {
		case s.Installed && s.Version != "":
			line += " " + StyleMuted.Render(s.Version)
		case s.Installed:
			line += " " + StyleMuted.Render(s.Path)
		case s.Required:
			line += " " + StyleError.Render("missing (required)")
		default:
			line += " " + StyleSubtle.Render("not installed")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderModels lists the local whisper models, marking installed ones
func RenderModels(store *whisper.Store) string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render("Whisper models"))
	b.WriteString("\n")

	for _, m := range whisper.ListModels() {
		mark := StyleSubtle.Render(" ")
		if store.IsInstalled(m.ID) {
			mark = StyleSuccess.Render("✓")
		}
		fmt.Fprintf(&b, "%s %-16s %s\n", mark, m.ID, StyleMuted.Render(fmt.Sprintf("%s, %s", m.Name, m.Size)))
	}
	b.WriteString(StyleSubtle.Render(fmt.Sprintf("models dir: %s", store.Dir)))
	b.WriteString("\n")
	return b.String()
}
