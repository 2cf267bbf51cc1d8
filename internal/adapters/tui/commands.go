// Package tui provides the interactive directory browser.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// WaitForEvents returns a Bubble Tea command that blocks until ready fires.
// It returns nil once ctx ends.
func WaitForEvents(ctx context.Context, ready <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ready:
			return MsgEvents{}
		case <-ctx.Done():
			return nil
		}
	}
}

// WaitForChange returns a Bubble Tea command that blocks until changed fires.
// A nil channel never fires.
func WaitForChange(ctx context.Context, changed <-chan struct{}) tea.Cmd {
	if changed == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case <-changed:
			return MsgChanged{}
		case <-ctx.Done():
			return nil
		}
	}
}
