package testutil

import (
	"context"
	"maps"
	"sync"

	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/service"
)

// UpdateCall records a single call to UpdateBudget.
type UpdateCall struct {
	Patch service.Patch
	ID    string
}

// MockStore is an in-memory BudgetStore that records every call. Without
// ListFunc or UpdateFunc it serves and patches Records.
type MockStore struct {
	ListFunc    func(ctx context.Context, opts service.ListOptions) ([]service.Record, error)
	UpdateFunc  func(ctx context.Context, id string, patch service.Patch) error
	Records     []service.Record
	ListCalls   []service.ListOptions
	UpdateCalls []UpdateCall
	mu          sync.Mutex
}

// NewMockStore creates a mock store serving records.
func NewMockStore(records ...service.Record) *MockStore {
	return &MockStore{Records: records}
}

// ListBudgets implements service.BudgetStore.
func (m *MockStore) ListBudgets(ctx context.Context, opts service.ListOptions) ([]service.Record, error) {
	m.mu.Lock()
	m.ListCalls = append(m.ListCalls, opts)
	listFunc := m.ListFunc
	records := make([]service.Record, 0, len(m.Records))
	for _, rec := range m.Records {
		records = append(records, maps.Clone(rec))
	}
	m.mu.Unlock()

	if listFunc != nil {
		return listFunc(ctx, opts)
	}
	return records, nil
}

// UpdateBudget implements service.BudgetStore.
func (m *MockStore) UpdateBudget(ctx context.Context, id string, patch service.Patch) error {
	m.mu.Lock()
	m.UpdateCalls = append(m.UpdateCalls, UpdateCall{ID: id, Patch: maps.Clone(patch)})
	updateFunc := m.UpdateFunc
	m.mu.Unlock()

	if updateFunc != nil {
		return updateFunc(ctx, id, patch)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.Records {
		if rec[model.AttrID] == id {
			for k, v := range patch {
				rec[k] = v
			}
		}
	}
	return nil
}

// ListCount returns the number of ListBudgets calls.
func (m *MockStore) ListCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ListCalls)
}

// UpdateCount returns the number of UpdateBudget calls.
func (m *MockStore) UpdateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.UpdateCalls)
}

// LastUpdate returns the most recent UpdateBudget call.
func (m *MockStore) LastUpdate() (UpdateCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.UpdateCalls) == 0 {
		return UpdateCall{}, false
	}
	return m.UpdateCalls[len(m.UpdateCalls)-1], true
}

// BudgetRecord builds a store record for a budget.
func BudgetRecord(id, name, consumed, owner string) service.Record {
	return service.Record{
		model.AttrID:             id,
		model.AttrName:           name,
		model.AttrBudgetConsumed: consumed,
		model.AttrOwnerID:        owner,
	}
}

// SampleRecords returns three budgets ordered by name.
func SampleRecords() []service.Record {
	return []service.Record{
		BudgetRecord("b-1", "Engineering", "1200", "owner-eng"),
		BudgetRecord("b-2", "Marketing", "150", "owner-mkt"),
		BudgetRecord("b-3", "Operations", "42.5", "owner-ops"),
	}
}
