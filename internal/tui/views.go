package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/Veraticus/budgets/internal/grid"
	"github.com/Veraticus/budgets/internal/model"
)

const (
	gutterWidth   = 2
	columnGap     = 2
	amountWidth   = 16
	minCellWidth  = 8
	cardLabelMax  = 16
	skeletonRows  = 4
	minBodyHeight = 3
)

// View renders the current model state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	snap := m.controller.Snapshot()
	width := m.contentWidth()

	helpView := ""
	if m.config.ShowHelp {
		h := m.help
		h.Width = width
		helpView = h.View(m.keymap)
	}

	title := m.theme.Title.Render("Budgets")
	status := m.statusBar(snap, width)

	chrome := 2 + lipgloss.Height(title) + lipgloss.Height(status)
	if helpView != "" {
		chrome += lipgloss.Height(helpView)
	}
	bodyHeight := max(m.height-chrome, minBodyHeight)

	var body string
	switch {
	case snap.Loading:
		body = m.loadingView(width)
	case snap.LoadError != "":
		body = m.errorView(snap.LoadError, width)
	case len(snap.Rows) == 0:
		body = m.emptyView()
	case m.width >= m.config.Breakpoint:
		body = m.tableView(snap, width, bodyHeight)
	default:
		body = m.cardsView(snap, width, bodyHeight)
	}

	sections := []string{title, body, status}
	if helpView != "" {
		sections = append(sections, helpView)
	}

	return m.theme.Frame.
		Width(max(m.width-2, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// contentWidth is the width available inside the frame border and padding.
func (m Model) contentWidth() int {
	return max(m.width-4, minCellWidth*2)
}

func (m Model) loadingView(width int) string {
	lines := []string{m.spinner.View() + " Loading budgets…", ""}
	for i := range skeletonRows {
		w := max(width-(i%3)*width/6, 1)
		lines = append(lines, m.theme.Skeleton.Render(strings.Repeat("░", w)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) errorView(message string, width int) string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.StatusError.Render(wordwrap.String(message, width)),
		"",
		m.theme.Faint.Render("Press r to retry."),
	)
}

func (m Model) emptyView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Normal.Render("No budgets found."),
		"",
		m.theme.Faint.Render("Press r to reload."),
	)
}

// columnWidths splits the table width between the editable fields, in
// display order.
func columnWidths(width int) []int {
	owner := max(width/4, minCellWidth)
	name := max(width-gutterWidth-amountWidth-owner-2*columnGap, minCellWidth)
	return []int{name, amountWidth, owner}
}

func (m Model) tableView(snap grid.Snapshot, width, height int) string {
	widths := columnWidths(width)
	gap := strings.Repeat(" ", columnGap)
	pad := strings.Repeat(" ", gutterWidth)

	headers := make([]string, 0, len(model.EditableFields))
	for j, f := range model.EditableFields {
		headers = append(headers, m.theme.Header.Render(fit(f.Label(), widths[j], f.Numeric())))
	}
	header := pad + strings.Join(headers, gap)
	rule := m.theme.Faint.Render(strings.Repeat("─", width))

	blocks := make([]string, 0, len(snap.Rows))
	for i, row := range snap.Rows {
		marker := pad
		if i == m.row {
			marker = m.theme.Header.Render(fit("▸", gutterWidth, false))
		}

		cells := make([]string, 0, len(model.EditableFields))
		for j, f := range model.EditableFields {
			k := model.Key(row.ID, f)
			cells = append(cells, m.cell(snap, k, i == m.row && j == m.col, widths[j]))
		}

		block := marker + strings.Join(cells, gap)
		if notes := m.noteLine(snap, row.ID, widths); notes != "" {
			block += "\n" + pad + notes
		}
		blocks = append(blocks, block)
	}

	visible := window(blocks, m.row, max(height-2, 1))
	return lipgloss.JoinVertical(lipgloss.Left, append([]string{header, rule}, visible...)...)
}

// noteLine renders the field notes of one table row. A note starts under
// its field and may run on under the following fields while they have no
// note of their own. It returns "" when the row has no notes.
func (m Model) noteLine(snap grid.Snapshot, rowID string, widths []int) string {
	n := len(model.EditableFields)
	notes := make([]string, n)
	styles := make([]lipgloss.Style, n)
	empty := true
	for j, f := range model.EditableFields {
		notes[j], styles[j] = m.fieldStatus(snap, model.Key(rowID, f))
		if notes[j] != "" {
			empty = false
		}
	}
	if empty {
		return ""
	}

	var b strings.Builder
	for j := 0; j < n; {
		span := widths[j]
		next := j + 1
		if notes[j] != "" {
			for next < n && notes[next] == "" {
				span += columnGap + widths[next]
				next++
			}
		}

		b.WriteString(styles[j].Render(fit(notes[j], span, false)))
		if next < n {
			b.WriteString(strings.Repeat(" ", columnGap))
		}
		j = next
	}
	return b.String()
}

func (m Model) cardsView(snap grid.Snapshot, width, height int) string {
	cardInner := max(width-4, minCellWidth*2)
	labelWidth := min(cardLabelMax, cardInner/2)
	valueWidth := max(cardInner-labelWidth-1, minCellWidth)

	blocks := make([]string, 0, len(snap.Rows))
	for i, row := range snap.Rows {
		lines := make([]string, 0, len(model.EditableFields)*2)
		for j, f := range model.EditableFields {
			k := model.Key(row.ID, f)
			label := m.theme.Faint.Render(fit(f.Label(), labelWidth, false))
			lines = append(lines, label+" "+m.cell(snap, k, i == m.row && j == m.col, valueWidth))

			if note, style := m.fieldStatus(snap, k); note != "" {
				wrapped := indent.String(wordwrap.String(note, valueWidth), uint(labelWidth+1))
				lines = append(lines, style.Render(wrapped))
			}
		}

		card := m.theme.Card
		if i == m.row {
			card = m.theme.FocusedCard
		}
		blocks = append(blocks, card.Width(max(width-2, 0)).Render(strings.Join(lines, "\n")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, window(blocks, m.row, height)...)
}

// cell renders the draft value of one field. The focused cell shows the
// editor while editing.
func (m Model) cell(snap grid.Snapshot, k model.FieldKey, focused bool, width int) string {
	if focused && m.editing && k == m.editKey {
		in := m.input
		in.Width = max(width-1, 1)
		return m.theme.Editing.Width(width).MaxWidth(width).Render(in.View())
	}

	text := fit(snap.Draft(k.RowID, k.Field), width, k.Field.Numeric())

	style := m.theme.Normal
	switch snap.FieldState(k) {
	case grid.StateDirty:
		style = m.theme.Dirty
	case grid.StateSaving:
		style = m.theme.StatusPending
	case grid.StateErrored:
		style = m.theme.Invalid
	case grid.StateClean:
	}
	if focused {
		style = m.theme.Selected
	}
	return style.Render(text)
}

// fieldStatus returns the note shown beneath a field. An error takes
// precedence over the saving indicator.
func (m Model) fieldStatus(snap grid.Snapshot, k model.FieldKey) (string, lipgloss.Style) {
	if msg := snap.FieldError(k); msg != "" {
		return "✗ " + msg, m.theme.StatusError
	}
	if snap.IsSaving(k) {
		return "Saving…", m.theme.StatusPending
	}
	return "", m.theme.Normal
}

func (m Model) statusBar(snap grid.Snapshot, width int) string {
	parts := []string{plural(len(snap.Rows), "budget", "budgets")}

	if gridVisible(snap) {
		parts = append([]string{fmt.Sprintf("Row %d/%d", m.row+1, len(snap.Rows))}, parts...)
	}

	saving := fmt.Sprintf("%d saving", snap.SavingCount())
	if snap.SavingCount() > 0 {
		saving = m.theme.StatusPending.Render(saving)
	}
	parts = append(parts, saving)

	errs := plural(snap.ErrorCount(), "error", "errors")
	if snap.ErrorCount() > 0 {
		errs = m.theme.StatusError.Render(errs)
	}
	parts = append(parts, errs)

	if m.editing {
		parts = append(parts, m.theme.StatusInfo.Render("editing "+m.editKey.Field.Label()))
	}

	return m.theme.StatusBar.MaxWidth(width).Render(strings.Join(parts, " · "))
}

// window picks the blocks around the cursor that fit in height lines,
// filling upward first so the cursor sits at the bottom while scrolling.
func window(blocks []string, cursor, height int) []string {
	if len(blocks) == 0 {
		return nil
	}
	cursor = max(0, min(cursor, len(blocks)-1))

	start, end := cursor, cursor+1
	used := lipgloss.Height(blocks[cursor])
	for start > 0 && used+lipgloss.Height(blocks[start-1]) <= height {
		start--
		used += lipgloss.Height(blocks[start])
	}
	for end < len(blocks) && used+lipgloss.Height(blocks[end]) <= height {
		used += lipgloss.Height(blocks[end])
		end++
	}
	return blocks[start:end]
}

// fit truncates s to width display cells and pads it, on the left when
// right is set.
func fit(s string, width int, right bool) string {
	s = runewidth.Truncate(s, width, "…")
	if right {
		return runewidth.FillLeft(s, width)
	}
	return runewidth.FillRight(s, width)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
