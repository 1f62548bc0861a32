// Package testutil provides shared test doubles and fixtures for the budgets
// packages.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/storage"
)

// TestStore is a migrated in-memory SQL store with its seeded budgets.
type TestStore struct {
	Storage *storage.Storage
	t       *testing.T
	Budgets []model.Budget
}

// SetupTestStore creates a new in-memory store seeded with SampleBudgets.
// It automatically handles migrations and cleanup.
func SetupTestStore(t *testing.T) *TestStore {
	t.Helper()
	return SetupTestStoreWith(t, SampleBudgets()...)
}

// SetupTestStoreWith creates a new in-memory store seeded with budgets.
func SetupTestStoreWith(t *testing.T, budgets ...model.Budget) *TestStore {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	seeded, err := store.SeedBudgets(ctx, budgets)
	if err != nil {
		t.Fatalf("failed to seed budgets: %v", err)
	}

	return &TestStore{
		Storage: store,
		Budgets: seeded,
		t:       t,
	}
}

// MustGetBudget returns the seeded budget with the given name or fails the test.
func (ts *TestStore) MustGetBudget(name string) model.Budget {
	ts.t.Helper()
	for _, b := range ts.Budgets {
		if b.Name == name {
			return b
		}
	}
	ts.t.Fatalf("budget %q was not seeded", name)
	return model.Budget{}
}

// SampleBudgets returns the budgets behind SampleRecords.
func SampleBudgets() []model.Budget {
	records := SampleRecords()
	budgets := make([]model.Budget, len(records))
	for i, rec := range records {
		budgets[i] = model.BudgetFromRecord(rec)
	}
	return budgets
}
