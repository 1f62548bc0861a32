// Package grid implements the editable budget grid: loaded rows, their
// drafts, and per-field save and error tracking.
//
// Every edit follows the same cycle. SetDraftValue changes only the draft.
// CommitField validates the draft, skips the store when the value is
// unchanged, and otherwise sends a single-attribute patch and reconciles the
// row and draft with the outcome. Load replaces all rows and reseeds drafts.
//
// Both Load and CommitField are split into a synchronous Begin step, which
// updates state immediately, and a Do step that talks to the store. An event
// loop can run Begin inline and Do in the background.
package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/service"
)

// DefaultPageSize is the number of rows requested per load.
const DefaultPageSize = 50

// Messages recorded in controller state.
const (
	InvalidNumberMessage = "Enter a valid number."
	SaveFailedMessage    = "Failed to save changes."
	LoadFailedMessage    = "Failed to load budgets."
)

// Controller errors.
var (
	ErrInvalidNumber = errors.New("invalid number")
	ErrUnknownRow    = errors.New("unknown row")
	ErrUnknownField  = errors.New("unknown field")
)

// Option configures a Controller.
type Option func(*Controller)

// WithPageSize sets the number of rows requested per load.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout bounds each store call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// WithLogger sets the logger used for store activity.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Controller owns the loaded rows, drafts and per-field status and mediates
// all writes to the store. It is safe for concurrent use; the lock is never
// held across a store call.
type Controller struct {
	store       service.BudgetStore
	logger      *slog.Logger
	drafts      map[string]model.Budget
	rowIndex    map[string]int
	saving      map[model.FieldKey]bool
	fieldErrors map[model.FieldKey]FieldError
	commitSeq   map[model.FieldKey]uint64
	loadErr     string
	rows        []model.Budget
	pageSize    int
	timeout     time.Duration
	loadSeq     uint64
	mu          sync.Mutex
	loading     bool
	loaded      bool
}

// NewController creates a controller over store.
func NewController(store service.BudgetStore, opts ...Option) *Controller {
	c := &Controller{
		store:       store,
		logger:      slog.Default(),
		pageSize:    DefaultPageSize,
		drafts:      make(map[string]model.Budget),
		rowIndex:    make(map[string]int),
		saving:      make(map[model.FieldKey]bool),
		fieldErrors: make(map[model.FieldKey]FieldError),
		commitSeq:   make(map[model.FieldKey]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Query returns the fixed list query: the four budget attributes ordered by
// name, limited to one page.
func (c *Controller) Query() service.ListOptions {
	return service.ListOptions{
		Select: slices.Clone(model.BudgetAttributes),
		OrderBy: []service.OrderBy{
			{Attribute: model.AttrName, Direction: service.SortAscending},
		},
		Top: c.pageSize,
	}
}

// Load fetches a page of rows and replaces the grid contents.
func (c *Controller) Load(ctx context.Context) error {
	return c.BeginLoad().Do(ctx)
}

// LoadRequest is a started load waiting for its store call.
type LoadRequest struct {
	c    *Controller
	opts service.ListOptions
	seq  uint64
}

// BeginLoad marks the grid as loading and clears the previous load error.
func (c *Controller) BeginLoad() *LoadRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadSeq++
	c.loading = true
	c.loadErr = ""

	return &LoadRequest{c: c, seq: c.loadSeq, opts: c.Query()}
}

// Do performs the list call and applies its outcome. Only the most recently
// started load applies its result; an older one that finishes late is
// dropped.
func (r *LoadRequest) Do(ctx context.Context) error {
	ctx, cancel := r.c.withTimeout(ctx)
	defer cancel()

	records, err := r.c.store.ListBudgets(ctx, r.opts)
	r.c.finishLoad(r.seq, records, err)
	if err != nil {
		return fmt.Errorf("failed to load budgets: %w", err)
	}
	return nil
}

func (c *Controller) finishLoad(seq uint64, records []service.Record, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.loadSeq {
		c.logger.Debug("Discarding superseded load", "seq", seq, "latest", c.loadSeq)
		return
	}

	c.loading = false

	if err != nil {
		c.loadErr = common.Message(err, LoadFailedMessage)
		c.logger.Warn("Failed to load budgets", "error", err)
		return
	}

	rows := make([]model.Budget, 0, len(records))
	for _, rec := range records {
		rows = append(rows, model.BudgetFromRecord(rec))
	}

	c.rows = rows
	c.rowIndex = make(map[string]int, len(rows))
	c.drafts = make(map[string]model.Budget, len(rows))
	for i, row := range rows {
		c.rowIndex[row.ID] = i
		c.drafts[row.ID] = row
	}
	c.loaded = true

	c.logger.Info("Loaded budgets", "count", len(rows))
}

// SetDraftValue replaces the draft value of one field. It never validates
// and never contacts the store. Unknown rows are ignored.
func (c *Controller) SetDraftValue(rowID string, field model.Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	draft, ok := c.drafts[rowID]
	if !ok {
		return
	}
	c.drafts[rowID] = draft.Set(field, value)
}

// CommitField validates value and, if it differs from the saved value,
// writes it to the store.
func (c *Controller) CommitField(ctx context.Context, rowID string, field model.Field, value string) error {
	commit, err := c.BeginCommit(rowID, field, value)
	if err != nil || commit == nil {
		return err
	}
	return commit.Do(ctx)
}

// Commit is a validated field change waiting for its store call.
type Commit struct {
	c     *Controller
	patch service.Patch
	key   model.FieldKey
	input string
	value string
	seq   uint64
}

// Key returns the field key being committed.
func (cm *Commit) Key() model.FieldKey {
	return cm.key
}

// Value returns the transformed value that will be written.
func (cm *Commit) Value() string {
	return cm.value
}

// BeginCommit runs validation and the unchanged-value check and, when a
// store call is needed, marks the field as saving. It returns a nil Commit
// when there is nothing to write.
//
// Validation failures are recorded as field errors and returned wrapped in
// ErrInvalidNumber. The unchanged-value check is skipped while an earlier
// commit of the same field is still in flight, so the store always ends up
// with the value dispatched last.
func (c *Controller) BeginCommit(rowID string, field model.Field, value string) (*Commit, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.rowIndex[rowID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRow, rowID)
	}
	if field.Attribute() == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	key := model.Key(rowID, field)
	next := strings.TrimSpace(value)
	var attrValue any = next

	if field.Numeric() {
		amount, err := model.ParseAmount(next)
		if err != nil {
			c.fieldErrors[key] = FieldError{Message: InvalidNumberMessage, Value: value}
			return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, next)
		}
		next = model.FormatAmount(amount)
		attrValue = amount
	}

	if next == c.rows[idx].Get(field) && !c.saving[key] {
		delete(c.fieldErrors, key)
		return nil, nil
	}

	c.commitSeq[key]++
	c.saving[key] = true

	return &Commit{
		c:     c,
		key:   key,
		input: value,
		value: next,
		seq:   c.commitSeq[key],
		patch: service.Patch{field.Attribute(): attrValue},
	}, nil
}

// Do sends the patch and reconciles state. Exactly one update call is made;
// there is no retry.
func (cm *Commit) Do(ctx context.Context) error {
	ctx, cancel := cm.c.withTimeout(ctx)
	defer cancel()

	cm.c.logger.Debug("Saving field", "key", cm.key.String(), "seq", cm.seq)

	err := cm.c.store.UpdateBudget(ctx, cm.key.RowID, cm.patch)
	cm.c.finishCommit(cm, err)
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", cm.key, err)
	}
	return nil
}

func (c *Controller) finishCommit(cm *Commit, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cm.seq != c.commitSeq[cm.key] {
		c.logger.Debug("Discarding superseded save",
			"key", cm.key.String(),
			"seq", cm.seq,
			"latest", c.commitSeq[cm.key])
		return
	}

	delete(c.saving, cm.key)

	if err != nil {
		c.fieldErrors[cm.key] = FieldError{
			Message: common.Message(err, SaveFailedMessage),
			Value:   cm.input,
		}
		c.logger.Warn("Failed to save field", "key", cm.key.String(), "error", err)
		return
	}

	if idx, ok := c.rowIndex[cm.key.RowID]; ok {
		c.rows[idx] = c.rows[idx].Set(cm.key.Field, cm.value)
	}
	if draft, ok := c.drafts[cm.key.RowID]; ok {
		c.drafts[cm.key.RowID] = draft.Set(cm.key.Field, cm.value)
	}
	delete(c.fieldErrors, cm.key)

	c.logger.Info("Saved field", "key", cm.key.String())
}

func (c *Controller) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
