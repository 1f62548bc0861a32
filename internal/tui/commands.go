package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/budgets/internal/grid"
)

// loadCmd runs a started load in the background.
func loadCmd(ctx context.Context, req *grid.LoadRequest) tea.Cmd {
	return func() tea.Msg {
		return loadDoneMsg{err: req.Do(ctx)}
	}
}

// commitCmd runs a started save in the background.
func commitCmd(ctx context.Context, commit *grid.Commit) tea.Cmd {
	return func() tea.Msg {
		return commitDoneMsg{key: commit.Key(), err: commit.Do(ctx)}
	}
}
