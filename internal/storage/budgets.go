package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListBudgets returns budget records projected to opts.Select (all
// attributes when empty), ordered by opts.OrderBy and limited to opts.Top
// rows when positive. Ties are broken by id.
func (s *Storage) ListBudgets(ctx context.Context, opts service.ListOptions) ([]service.Record, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateListOptions(opts); err != nil {
		return nil, err
	}

	attrs := opts.Select
	if len(attrs) == 0 {
		attrs = model.BudgetAttributes
	}

	cols := make([]string, len(attrs))
	for i, attr := range attrs {
		cols[i] = columns[attr]
	}

	var query strings.Builder
	fmt.Fprintf(&query, "SELECT %s FROM promx_budgets", strings.Join(cols, ", "))

	order := make([]string, 0, len(opts.OrderBy)+1)
	for _, ob := range opts.OrderBy {
		dir := "ASC"
		if ob.Direction == service.SortDescending {
			dir = "DESC"
		}
		order = append(order, columns[ob.Attribute]+" "+dir)
	}
	if !slices.ContainsFunc(opts.OrderBy, func(ob service.OrderBy) bool { return ob.Attribute == model.AttrID }) {
		order = append(order, columns[model.AttrID]+" ASC")
	}
	fmt.Fprintf(&query, " ORDER BY %s", strings.Join(order, ", "))

	var args []any
	if opts.Top > 0 {
		fmt.Fprintf(&query, " LIMIT %s", s.dialect.placeholder(1))
		args = append(args, opts.Top)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []service.Record
	for rows.Next() {
		dest := make([]any, len(attrs))
		for i, attr := range attrs {
			if attr == model.AttrBudgetConsumed {
				dest[i] = new(decimal.NullDecimal)
			} else {
				dest[i] = new(sql.NullString)
			}
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan budget: %w", err)
		}

		rec := make(service.Record, len(attrs))
		for i, attr := range attrs {
			switch v := dest[i].(type) {
			case *decimal.NullDecimal:
				if v.Valid {
					rec[attr] = v.Decimal
				} else {
					rec[attr] = nil
				}
			case *sql.NullString:
				if v.Valid {
					rec[attr] = v.String
				} else {
					rec[attr] = nil
				}
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate budgets: %w", err)
	}

	return records, nil
}

// UpdateBudget applies a partial update to one budget.
func (s *Storage) UpdateBudget(ctx context.Context, id string, patch service.Patch) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	if err := validatePatch(patch); err != nil {
		return err
	}

	attrs := make([]string, 0, len(patch))
	for attr := range patch {
		attrs = append(attrs, attr)
	}
	slices.Sort(attrs)

	sets := make([]string, 0, len(attrs)+1)
	args := make([]any, 0, len(attrs)+1)
	for _, attr := range attrs {
		arg, err := columnArg(attr, patch[attr])
		if err != nil {
			return err
		}
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf("%s = %s", columns[attr], s.dialect.placeholder(len(args))))
	}
	sets = append(sets, "modifiedon = CURRENT_TIMESTAMP")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE promx_budgets SET %s WHERE promx_budgetid = %s",
		strings.Join(sets, ", "), s.dialect.placeholder(len(args)))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update budget: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return common.NewUserError("This budget no longer exists.",
			fmt.Errorf("%w: budget %s", common.ErrNotFound, id))
	}

	return nil
}

// InsertBudget stores a new budget, assigning an id when b.ID is empty.
func (s *Storage) InsertBudget(ctx context.Context, b model.Budget) (model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return model.Budget{}, err
	}
	return insertBudget(ctx, s.db, s.dialect, b)
}

// SeedBudgets inserts budgets in a single transaction and returns them with
// their assigned ids.
func (s *Storage) SeedBudgets(ctx context.Context, budgets []model.Budget) ([]model.Budget, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seeded := make([]model.Budget, 0, len(budgets))
	for _, b := range budgets {
		saved, err := insertBudget(ctx, tx, s.dialect, b)
		if err != nil {
			return nil, err
		}
		seeded = append(seeded, saved)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit seed: %w", err)
	}
	return seeded, nil
}

// CountBudgets returns the number of stored budgets.
func (s *Storage) CountBudgets(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM promx_budgets").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count budgets: %w", err)
	}
	return n, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBudget(ctx context.Context, db execer, d Dialect, b model.Budget) (model.Budget, error) {
	if err := validateString(b.Name, "name"); err != nil {
		return model.Budget{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}

	var consumed any
	if b.BudgetConsumed != "" {
		amount, err := model.ParseAmount(b.BudgetConsumed)
		if err != nil {
			return model.Budget{}, fmt.Errorf("%w: %q", ErrInvalidAmount, b.BudgetConsumed)
		}
		consumed = amount
		b.BudgetConsumed = model.FormatAmount(amount)
	}

	var owner any
	if b.OwnerID != "" {
		owner = b.OwnerID
	}

	query := fmt.Sprintf(
		"INSERT INTO promx_budgets (promx_budgetid, promx_name, promx_budgetconsumed, ownerid) VALUES (%s, %s, %s, %s)",
		d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4))

	if _, err := db.ExecContext(ctx, query, b.ID, b.Name, consumed, owner); err != nil {
		return model.Budget{}, fmt.Errorf("failed to insert budget %q: %w", b.Name, err)
	}
	return b, nil
}

// columnArg converts a patch value into a bind argument for attr.
func columnArg(attr string, v any) (any, error) {
	if attr != model.AttrBudgetConsumed {
		switch val := v.(type) {
		case nil:
			return nil, nil
		case string:
			return val, nil
		default:
			return fmt.Sprint(val), nil
		}
	}

	switch val := v.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return val, nil
	case string:
		return parseAmountArg(val)
	case json.Number:
		return parseAmountArg(val.String())
	case float64:
		return decimal.NewFromFloat(val), nil
	case int:
		return decimal.NewFromInt(int64(val)), nil
	case int64:
		return decimal.NewFromInt(val), nil
	default:
		return nil, fmt.Errorf("%w: %v (%T)", ErrInvalidAmount, v, v)
	}
}

func parseAmountArg(s string) (any, error) {
	amount, err := model.ParseAmount(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return amount, nil
}
