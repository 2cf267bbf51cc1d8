package tui

import (
	"fmt"
	"strings"

	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/ui/style"
)

// View renders the UI.
func (m *Model) View() string {
	var s strings.Builder

	title := titleStyle.Render(domain.AppName) + " " + m.src.Path()
	if m.src.Loading() {
		title += footerStyle.Render(" (loading)")
	}
	s.WriteString(title + "\n\n")

	items := m.src.Items()
	start, end := m.Offset, items.Len()
	if m.Height > 0 {
		end = min(end, m.Offset+m.Height)
	}
	for i := start; i < end; i++ {
		r, _ := items.At(i)
		s.WriteString(m.renderRow(i, r, items.IsSelected(r)) + "\n")
	}

	if m.Err != nil {
		s.WriteString(errorStyle.Render(style.Cross+" "+m.Err.Error()) + "\n")
	}
	s.WriteString(footerStyle.Render(fmt.Sprintf(
		"%d entries %s %d selected %s space select %s enter open %s backspace up %s q quit",
		items.Len(), style.Dot, len(items.SelectedItems()), style.Dot, style.Dot, style.Dot, style.Dot,
	)))
	return s.String()
}

func (m *Model) renderRow(index int, r domain.Record, selected bool) string {
	cursor := "  "
	if index == m.Cursor {
		cursor = cursorStyle.Render("> ")
	}
	mark := "  "
	if selected {
		mark = markStyle.Render(style.Check + " ")
	}
	return cursor + mark + entryName(r)
}

func entryName(r domain.Record) string {
	name := r.Name()
	switch {
	case r.Flags.Has(domain.IsNavigatorPseudoEntry):
		return style.FolderName.Render(style.Folder + " " + name)
	case !r.Valid:
		return style.Invalid.Render(name)
	case r.Flags.Has(domain.IsLink):
		return style.LinkName.Render(style.Link + " " + name)
	case r.IsFolder():
		return style.FolderName.Render(style.Folder + " " + name + "/")
	case r.Flags.Has(domain.IsHidden):
		return style.HiddenName.Render("  " + name)
	default:
		return "  " + name
	}
}
