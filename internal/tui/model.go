package tui

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/budgets/internal/grid"
	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/tui/themes"
)

// Model is the Bubble Tea model of the budget grid. It holds only view
// state: cursor, editor and terminal size. Rows, drafts and field status
// live in the controller and are read from a fresh snapshot on every
// render.
type Model struct {
	ctx        context.Context
	controller *grid.Controller
	logger     *slog.Logger
	theme      themes.Theme
	keymap     KeyMap
	help       help.Model
	spinner    spinner.Model
	input      textinput.Model
	editKey    model.FieldKey
	config     Config
	width      int
	height     int
	row        int
	col        int
	editing    bool
	quitting   bool
}

// New creates the grid model over controller.
func New(controller *grid.Controller, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	in := textinput.New()
	in.Prompt = ""
	_ = in.Cursor.SetMode(cursor.CursorStatic)

	h := help.New()
	h.Width = cfg.Width

	return Model{
		ctx:        cfg.Context,
		controller: controller,
		logger:     cfg.Logger,
		theme:      cfg.Theme,
		keymap:     DefaultKeyMap(),
		help:       h,
		spinner:    sp,
		input:      in,
		config:     cfg,
		width:      cfg.Width,
		height:     cfg.Height,
	}
}

// Init starts the first load.
func (m Model) Init() tea.Cmd {
	return m.reload()
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.controller.Snapshot().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadDoneMsg:
		if msg.err != nil {
			m.logger.Debug("Grid load finished with error", "error", msg.err)
		}
		m.clampCursor(len(m.controller.Snapshot().Rows))
		return m, nil

	case commitDoneMsg:
		if msg.err != nil {
			m.logger.Debug("Grid save finished with error", "key", msg.key.String(), "error", msg.err)
		}
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keymap.Reload):
		return m, m.reload()
	}

	snap := m.controller.Snapshot()
	if !gridVisible(snap) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Up):
		m.row--
	case key.Matches(msg, m.keymap.Down):
		m.row++
	case key.Matches(msg, m.keymap.Left):
		m.col--
	case key.Matches(msg, m.keymap.Right):
		m.col++
	case key.Matches(msg, m.keymap.NextField):
		m.advance(1, len(snap.Rows))
	case key.Matches(msg, m.keymap.PrevField):
		m.advance(-1, len(snap.Rows))
	case key.Matches(msg, m.keymap.Home):
		m.row = 0
	case key.Matches(msg, m.keymap.End):
		m.row = len(snap.Rows) - 1
	case key.Matches(msg, m.keymap.Edit):
		m.clampCursor(len(snap.Rows))
		return m.startEditing(snap)
	}

	m.clampCursor(len(snap.Rows))
	return m, nil
}

func (m Model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Commit), key.Matches(msg, m.keymap.Cancel):
		return m.stopEditing()

	case key.Matches(msg, m.keymap.NextField), key.Matches(msg, m.keymap.PrevField):
		delta := 1
		if key.Matches(msg, m.keymap.PrevField) {
			delta = -1
		}
		next, commit := m.stopEditing()
		m = next.(Model)
		snap := m.controller.Snapshot()
		m.advance(delta, len(snap.Rows))
		next, focus := m.startEditing(snap)
		return next, tea.Batch(commit, focus)

	case msg.Type == tea.KeyUp, msg.Type == tea.KeyDown:
		next, commit := m.stopEditing()
		m = next.(Model)
		if msg.Type == tea.KeyUp {
			m.row--
		} else {
			m.row++
		}
		m.clampCursor(len(m.controller.Snapshot().Rows))
		return m, commit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.controller.SetDraftValue(m.editKey.RowID, m.editKey.Field, m.input.Value())
	return m, cmd
}

// startEditing opens the editor on the focused cell, seeded from its draft.
func (m Model) startEditing(snap grid.Snapshot) (tea.Model, tea.Cmd) {
	if !gridVisible(snap) {
		return m, nil
	}

	field := model.EditableFields[m.col]
	rowID := snap.Rows[m.row].ID

	m.editing = true
	m.editKey = model.Key(rowID, field)
	m.input.SetValue(snap.Draft(rowID, field))
	m.input.CursorEnd()
	return m, m.input.Focus()
}

// stopEditing closes the editor and commits the edited field.
func (m Model) stopEditing() (tea.Model, tea.Cmd) {
	m.editing = false
	m.input.Blur()

	commit, err := m.controller.BeginCommit(m.editKey.RowID, m.editKey.Field, m.input.Value())
	if err != nil {
		m.logger.Debug("Commit rejected", "key", m.editKey.String(), "error", err)
		return m, nil
	}
	if commit == nil {
		return m, nil
	}
	return m, commitCmd(m.ctx, commit)
}

// reload starts a load and the loading spinner.
func (m Model) reload() tea.Cmd {
	req := m.controller.BeginLoad()
	return tea.Batch(m.spinner.Tick, loadCmd(m.ctx, req))
}

// advance moves the cursor through fields in reading order, wrapping onto
// the next or previous row.
func (m *Model) advance(delta, rows int) {
	fields := len(model.EditableFields)
	if rows == 0 {
		return
	}
	idx := m.row*fields + m.col + delta
	idx = max(0, min(idx, rows*fields-1))
	m.row = idx / fields
	m.col = idx % fields
}

func (m *Model) clampCursor(rows int) {
	m.row = max(0, min(m.row, rows-1))
	m.col = max(0, min(m.col, len(model.EditableFields)-1))
}

// gridVisible reports whether the snapshot renders rows rather than a
// loading, error or empty panel.
func gridVisible(snap grid.Snapshot) bool {
	return !snap.Loading && snap.LoadError == "" && len(snap.Rows) > 0
}
