package grid

import (
	"maps"
	"slices"

	"github.com/Veraticus/budgets/internal/model"
)

// FieldError is a field-scoped failure: the message to show and the draft
// value that produced it.
type FieldError struct {
	Message string
	Value   string
}

// FieldState is the edit state of a single field key.
type FieldState int

// Field states.
const (
	// StateClean means the draft equals the saved value.
	StateClean FieldState = iota
	// StateDirty means the draft differs from the saved value.
	StateDirty
	// StateSaving means a commit for the field is in flight.
	StateSaving
	// StateErrored means the last commit of the current draft failed.
	StateErrored
)

func (s FieldState) String() string {
	switch s {
	case StateClean:
		return "clean"
	case StateDirty:
		return "dirty"
	case StateSaving:
		return "saving"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable copy of the controller state for rendering.
type Snapshot struct {
	Drafts      map[string]model.Budget
	Saving      map[model.FieldKey]bool
	FieldErrors map[model.FieldKey]FieldError
	LoadError   string
	Rows        []model.Budget
	Loading     bool
	Loaded      bool
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Rows:        slices.Clone(c.rows),
		Drafts:      maps.Clone(c.drafts),
		Saving:      maps.Clone(c.saving),
		FieldErrors: maps.Clone(c.fieldErrors),
		LoadError:   c.loadErr,
		Loading:     c.loading,
		Loaded:      c.loaded,
	}
}

// Row returns the saved row with the given id.
func (s Snapshot) Row(id string) (model.Budget, bool) {
	for _, row := range s.Rows {
		if row.ID == id {
			return row, true
		}
	}
	return model.Budget{}, false
}

// Draft returns the draft value of a field.
func (s Snapshot) Draft(rowID string, f model.Field) string {
	return s.Drafts[rowID].Get(f)
}

// FieldError returns the error message for a field, or "".
func (s Snapshot) FieldError(k model.FieldKey) string {
	return s.FieldErrors[k].Message
}

// IsSaving reports whether a commit for the field is in flight.
func (s Snapshot) IsSaving(k model.FieldKey) bool {
	return s.Saving[k]
}

// FieldState derives the edit state of a field key.
func (s Snapshot) FieldState(k model.FieldKey) FieldState {
	if s.Saving[k] {
		return StateSaving
	}

	draft := s.Draft(k.RowID, k.Field)
	if fe, ok := s.FieldErrors[k]; ok && fe.Value == draft {
		return StateErrored
	}

	row, ok := s.Row(k.RowID)
	if ok && row.Get(k.Field) != draft {
		return StateDirty
	}
	return StateClean
}

// SavingCount returns the number of fields with a commit in flight.
func (s Snapshot) SavingCount() int {
	return len(s.Saving)
}

// ErrorCount returns the number of fields with a recorded error among the
// loaded rows.
func (s Snapshot) ErrorCount() int {
	n := 0
	for k := range s.FieldErrors {
		if _, ok := s.Drafts[k.RowID]; ok {
			n++
		}
	}
	return n
}
