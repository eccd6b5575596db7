// Package ui provides terminal output styling.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color palette
// - Default (white/black): primary text
// - Accent (soft purple #A78BFA): highlights, paths
// - Muted (gray): secondary info
// - No colored success/error/warning - unicode symbols only

var (
	// Accent style for file paths and highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)
)

func init() {
	// Styling is for humans; piped output stays plain.
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		DisableStyles()
	}
}

// ConfigureTheme overrides the accent color from user config.
// Accepts any lipgloss-compatible color string (hex or ANSI number).
func ConfigureTheme(accent string) {
	if accent == "" {
		return
	}
	Accent = Accent.Foreground(lipgloss.Color(accent))
}

// DisableStyles strips all styling, for non-TTY or JSON output.
func DisableStyles() {
	Accent = lipgloss.NewStyle()
	Muted = lipgloss.NewStyle()
	Bold = lipgloss.NewStyle()
}
