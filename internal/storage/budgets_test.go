package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

func seedSample(t *testing.T, store *Storage) {
	t.Helper()
	_, err := store.SeedBudgets(context.Background(), []model.Budget{
		{ID: "b-2", Name: "Marketing", BudgetConsumed: "150", OwnerID: "owner-mkt"},
		{ID: "b-3", Name: "Operations", BudgetConsumed: "42.50", OwnerID: "owner-ops"},
		{ID: "b-1", Name: "Engineering", BudgetConsumed: "1200", OwnerID: "owner-eng"},
	})
	require.NoError(t, err)
}

func budgetQuery(top int) service.ListOptions {
	return service.ListOptions{
		Select:  model.BudgetAttributes,
		OrderBy: []service.OrderBy{{Attribute: model.AttrName, Direction: service.SortAscending}},
		Top:     top,
	}
}

func TestStorage_ListBudgets(t *testing.T) {
	store := createTestStorage(t)
	seedSample(t, store)
	ctx := context.Background()

	records, err := store.ListBudgets(ctx, budgetQuery(50))
	require.NoError(t, err)
	require.Len(t, records, 3)

	budgets := make([]model.Budget, len(records))
	for i, rec := range records {
		budgets[i] = model.BudgetFromRecord(rec)
	}

	assert.Equal(t, []model.Budget{
		{ID: "b-1", Name: "Engineering", BudgetConsumed: "1200", OwnerID: "owner-eng"},
		{ID: "b-2", Name: "Marketing", BudgetConsumed: "150", OwnerID: "owner-mkt"},
		{ID: "b-3", Name: "Operations", BudgetConsumed: "42.5", OwnerID: "owner-ops"},
	}, budgets)
}

func TestStorage_ListBudgetsTopAndDirection(t *testing.T) {
	store := createTestStorage(t)
	seedSample(t, store)

	opts := budgetQuery(2)
	opts.OrderBy[0].Direction = service.SortDescending

	records, err := store.ListBudgets(context.Background(), opts)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Operations", records[0][model.AttrName])
	assert.Equal(t, "Marketing", records[1][model.AttrName])
}

func TestStorage_ListBudgetsProjection(t *testing.T) {
	store := createTestStorage(t)
	seedSample(t, store)

	records, err := store.ListBudgets(context.Background(), service.ListOptions{
		Select: []string{model.AttrID, model.AttrName},
	})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, rec := range records {
		assert.Len(t, rec, 2)
		assert.NotContains(t, rec, model.AttrBudgetConsumed)
	}
}

func TestStorage_ListBudgetsNullAttributes(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.InsertBudget(ctx, model.Budget{ID: "b-9", Name: "Sparse"})
	require.NoError(t, err)

	records, err := store.ListBudgets(ctx, budgetQuery(10))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Nil(t, records[0][model.AttrBudgetConsumed])
	assert.Nil(t, records[0][model.AttrOwnerID])
	assert.Equal(t, model.Budget{ID: "b-9", Name: "Sparse"}, model.BudgetFromRecord(records[0]))
}

func TestStorage_ListBudgetsRejectsUnknownAttributes(t *testing.T) {
	store := createTestStorage(t)

	tests := []struct {
		name string
		opts service.ListOptions
		want error
	}{
		{
			name: "select",
			opts: service.ListOptions{Select: []string{"promx_name; DROP TABLE promx_budgets"}},
			want: ErrUnknownAttribute,
		},
		{
			name: "order by",
			opts: service.ListOptions{OrderBy: []service.OrderBy{{Attribute: "color"}}},
			want: ErrUnknownAttribute,
		},
		{
			name: "direction",
			opts: service.ListOptions{OrderBy: []service.OrderBy{{Attribute: model.AttrName, Direction: "sideways"}}},
			want: ErrInvalidQuery,
		},
		{
			name: "negative top",
			opts: service.ListOptions{Top: -1},
			want: ErrInvalidQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.ListBudgets(context.Background(), tt.opts)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStorage_UpdateBudget(t *testing.T) {
	store := createTestStorage(t)
	seedSample(t, store)
	ctx := context.Background()

	require.NoError(t, store.UpdateBudget(ctx, "b-2", service.Patch{model.AttrName: "Marketing Q3"}))
	require.NoError(t, store.UpdateBudget(ctx, "b-3", service.Patch{
		model.AttrBudgetConsumed: decimal.RequireFromString("99.95"),
	}))
	require.NoError(t, store.UpdateBudget(ctx, "b-1", service.Patch{model.AttrOwnerID: "owner-new"}))

	records, err := store.ListBudgets(ctx, budgetQuery(50))
	require.NoError(t, err)

	byID := make(map[string]model.Budget)
	for _, rec := range records {
		b := model.BudgetFromRecord(rec)
		byID[b.ID] = b
	}

	assert.Equal(t, "Marketing Q3", byID["b-2"].Name)
	assert.Equal(t, "150", byID["b-2"].BudgetConsumed, "other attributes untouched")
	assert.Equal(t, "99.95", byID["b-3"].BudgetConsumed)
	assert.Equal(t, "owner-new", byID["b-1"].OwnerID)
}

func TestStorage_UpdateBudgetErrors(t *testing.T) {
	store := createTestStorage(t)
	seedSample(t, store)
	ctx := context.Background()

	tests := []struct {
		patch service.Patch
		want  error
		name  string
		id    string
	}{
		{name: "empty patch", id: "b-1", patch: service.Patch{}, want: ErrEmptyPatch},
		{name: "empty id", id: " ", patch: service.Patch{model.AttrName: "x"}, want: ErrEmptyString},
		{name: "read-only id", id: "b-1", patch: service.Patch{model.AttrID: "b-7"}, want: ErrReadOnlyField},
		{name: "unknown attribute", id: "b-1", patch: service.Patch{"color": "red"}, want: ErrUnknownAttribute},
		{name: "invalid amount", id: "b-1", patch: service.Patch{model.AttrBudgetConsumed: "abc"}, want: ErrInvalidAmount},
		{name: "amount out of range", id: "b-1", patch: service.Patch{model.AttrBudgetConsumed: "1e90000000"}, want: ErrInvalidAmount},
		{name: "missing row", id: "b-404", patch: service.Patch{model.AttrName: "x"}, want: common.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.UpdateBudget(ctx, tt.id, tt.patch)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestStorage_UpdateBudgetMissingRowMessage(t *testing.T) {
	store := createTestStorage(t)

	err := store.UpdateBudget(context.Background(), "gone", service.Patch{model.AttrName: "x"})
	require.Error(t, err)
	assert.Equal(t, "This budget no longer exists.", common.Message(err, ""))
}

func TestStorage_SeedBudgetsAssignsIDs(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	seeded, err := store.SeedBudgets(ctx, []model.Budget{
		{Name: "Travel", BudgetConsumed: "1e3"},
		{Name: "Training"},
	})
	require.NoError(t, err)
	require.Len(t, seeded, 2)

	for _, b := range seeded {
		_, parseErr := uuid.Parse(b.ID)
		assert.NoError(t, parseErr, "id %q", b.ID)
	}
	assert.Equal(t, "1000", seeded[0].BudgetConsumed)

	n, err := store.CountBudgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStorage_SeedBudgetsIsAtomic(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.SeedBudgets(ctx, []model.Budget{
		{Name: "Valid"},
		{Name: "Broken", BudgetConsumed: "lots"},
	})
	require.ErrorIs(t, err, ErrInvalidAmount)

	n, err := store.CountBudgets(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	_, err = store.InsertBudget(ctx, model.Budget{Name: "Only"})
	require.NoError(t, err)

	n, err := store.CountBudgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, DialectSQLite, store.Dialect())
}
