package tui

import "github.com/Veraticus/budgets/internal/model"

// loadDoneMsg reports that a list call finished. The controller has already
// applied the outcome.
type loadDoneMsg struct {
	err error
}

// commitDoneMsg reports that a field save finished.
type commitDoneMsg struct {
	err error
	key model.FieldKey
}
