package tui

import (
	"context"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/roster/internal/core/domain"
	"go.trai.ch/roster/internal/engine/cache"
)

// chromeHeight is the number of lines used by the title and the footer.
const chromeHeight = 3

// Source is the directory listing the model browses. It is only touched from Update.
type Source interface {
	Items() *cache.Records
	Path() string
	Loading() bool
	Err() error
	Ready() <-chan struct{}
	Process(ctx context.Context) (bool, error)
	SetPath(ctx context.Context, path string) error
	Invalidate(ctx context.Context) error
}

// Model represents the browser state.
type Model struct {
	ctx     context.Context
	src     Source
	changes <-chan struct{}

	// Cursor is the position of the highlighted row.
	Cursor int
	// Offset is the first visible row.
	Offset int
	// Height is the number of visible rows. Zero shows every row.
	Height int
	Width  int
	Err    error

	// focus is the path the cursor should land on once it appears in the listing.
	focus string
}

// NewModel creates a model browsing src.
func NewModel(ctx context.Context, src Source) *Model {
	return &Model{ctx: ctx, src: src}
}

// WithChanges refreshes the listing whenever changes fires.
func (m *Model) WithChanges(changes <-chan struct{}) *Model {
	m.changes = changes
	return m
}

// Init starts waiting for worker events and directory changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		WaitForEvents(m.ctx, m.src.Ready()),
		WaitForChange(m.ctx, m.changes),
	)
}

// Selected returns the selected records in listing order.
func (m *Model) Selected() []domain.Record {
	return m.src.Items().SelectedItems()
}

// Current returns the record under the cursor.
func (m *Model) Current() (domain.Record, bool) {
	return m.src.Items().At(m.Cursor)
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // key dispatch
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "k", "up":
			m.move(-1)
		case "j", "down":
			m.move(1)
		case "g", "home":
			m.move(-m.Cursor)
		case "G", "end":
			m.move(m.src.Items().Len())
		case " ", "space", "x":
			m.toggle()
			m.move(1)
		case "enter", "l", "right":
			m.open()
		case "backspace", "h", "left":
			m.up()
		case "r":
			m.fail(m.src.Invalidate(m.ctx))
		case "esc":
			for _, r := range m.Selected() {
				m.src.Items().SetSelected(r, false)
			}
		}

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = max(msg.Height-chromeHeight, 1)
		m.ensureVisible()

	case MsgEvents:
		m.process()
		return m, WaitForEvents(m.ctx, m.src.Ready())

	case MsgChanged:
		m.fail(m.src.Invalidate(m.ctx))
		return m, WaitForChange(m.ctx, m.changes)

	case MsgError:
		m.Err = msg.Err
	}

	return m, nil
}

// process applies worker events and keeps the cursor on the same record.
func (m *Model) process() {
	focus := m.focus
	if focus == "" {
		if cur, ok := m.Current(); ok {
			focus = cur.Path.String()
		}
	}

	applied, err := m.src.Process(m.ctx)
	m.fail(err)
	if !applied {
		return
	}
	m.Err = m.src.Err()
	m.focus = ""

	if focus != "" {
		if i := m.src.Items().IndexOf(domain.NewRecord(focus)); i >= 0 {
			m.Cursor = i
		}
	}
	m.move(0)
}

func (m *Model) move(delta int) {
	n := m.src.Items().Len()
	m.Cursor = min(max(m.Cursor+delta, 0), max(n-1, 0))
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	if m.Height <= 0 {
		return
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	} else if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *Model) toggle() {
	cur, ok := m.Current()
	if !ok || cur.Flags.Has(domain.IsNavigatorPseudoEntry) {
		return
	}
	items := m.src.Items()
	items.SetSelected(cur, !items.IsSelected(cur))
}

func (m *Model) open() {
	cur, ok := m.Current()
	if !ok || !cur.IsFolder() {
		return
	}
	if cur.Flags.Has(domain.IsNavigatorPseudoEntry) {
		m.up()
		return
	}
	m.chdir(cur.Path.String(), "")
}

func (m *Model) up() {
	dir := m.src.Path()
	parent := filepath.Dir(dir)
	if parent == dir {
		return
	}
	m.chdir(parent, dir)
}

func (m *Model) chdir(path, focus string) {
	m.Cursor, m.Offset = 0, 0
	m.focus = focus
	m.fail(m.src.SetPath(m.ctx, path))
}

func (m *Model) fail(err error) {
	if err != nil {
		m.Err = err
	}
}
