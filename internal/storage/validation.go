package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/service"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrEmptyPatch       = errors.New("patch cannot be empty")
	ErrUnknownAttribute = errors.New("unknown attribute")
	ErrReadOnlyField    = errors.New("attribute is read-only")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidQuery     = errors.New("invalid query")
	ErrUnknownDialect   = errors.New("unknown dialect")
)

// columns maps store attributes to table columns. Attribute names double as
// column names; the map is the whitelist for everything interpolated into SQL.
var columns = map[string]string{
	model.AttrID:             "promx_budgetid",
	model.AttrName:           "promx_name",
	model.AttrBudgetConsumed: "promx_budgetconsumed",
	model.AttrOwnerID:        "ownerid",
}

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func columnFor(attr string) (string, error) {
	col, ok := columns[attr]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownAttribute, attr)
	}
	return col, nil
}

// validateListOptions checks every attribute and direction in opts.
func validateListOptions(opts service.ListOptions) error {
	if opts.Top < 0 {
		return fmt.Errorf("%w: top must be >= 0, got %d", ErrInvalidQuery, opts.Top)
	}
	for _, attr := range opts.Select {
		if _, err := columnFor(attr); err != nil {
			return err
		}
	}
	for _, ob := range opts.OrderBy {
		if _, err := columnFor(ob.Attribute); err != nil {
			return err
		}
		switch ob.Direction {
		case service.SortAscending, service.SortDescending, "":
		default:
			return fmt.Errorf("%w: sort direction %q", ErrInvalidQuery, ob.Direction)
		}
	}
	return nil
}

// validatePatch checks that a patch is non-empty and only touches writable
// attributes.
func validatePatch(patch service.Patch) error {
	if len(patch) == 0 {
		return ErrEmptyPatch
	}
	for attr := range patch {
		if attr == model.AttrID {
			return fmt.Errorf("%w: %s", ErrReadOnlyField, attr)
		}
		if _, err := columnFor(attr); err != nil {
			return err
		}
	}
	return nil
}
