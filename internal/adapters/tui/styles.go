package tui

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/roster/internal/ui/style"
)

var (
	cursorStyle = lipgloss.NewStyle().
			Foreground(style.Accent).
			Bold(true)

	markStyle = lipgloss.NewStyle().
			Foreground(style.Green)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Background(style.Accent)

	footerStyle = lipgloss.NewStyle().
			Foreground(style.Muted)

	errorStyle = lipgloss.NewStyle().
			Foreground(style.Red)
)
