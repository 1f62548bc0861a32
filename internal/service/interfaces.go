// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"log/slog"
	"time"
)

// Record is a single entity as returned by a store, keyed by store
// attribute name.
type Record map[string]any

// Patch is a partial update keyed by store attribute name. Numeric
// attributes carry a decimal.Decimal and must be written as numbers.
type Patch map[string]any

// SortDirection orders a list query.
type SortDirection string

// Sort directions.
const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// OrderBy is a single ordering clause.
type OrderBy struct {
	Attribute string
	Direction SortDirection
}

// ListOptions mirrors the query options supported by the remote store.
// There is no offset: the store only supports a top-N page.
type ListOptions struct {
	Select  []string
	OrderBy []OrderBy
	Top     int
}

// BudgetStore defines the contract for the remote budget entity store.
type BudgetStore interface {
	ListBudgets(ctx context.Context, opts ListOptions) ([]Record, error)
	UpdateBudget(ctx context.Context, id string, patch Patch) error
}

// RetryOptions configures retry behavior for store reads. Zero values take
// the defaults of common.WithRetry; a nil Logger logs to slog.Default.
type RetryOptions struct {
	Logger       *slog.Logger
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
