// Package style holds the colors and glyphs shared by the logger and the CLI listings.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#8B5CF6")
	Muted  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Blue   = lipgloss.Color("#3B82F6")
)

// Glyphs.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Arrow   = "→"
	Folder  = "▸"
	Link    = "↪"
	Dot     = "·"
)

// Styles for listing columns.
var (
	FolderName = lipgloss.NewStyle().Foreground(Blue).Bold(true)
	LinkName   = lipgloss.NewStyle().Foreground(Accent)
	HiddenName = lipgloss.NewStyle().Foreground(Muted)
	Invalid    = lipgloss.NewStyle().Foreground(Red).Strikethrough(true)
	Meta       = lipgloss.NewStyle().Foreground(Muted)
)
