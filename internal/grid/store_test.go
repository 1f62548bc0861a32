package grid

import (
	"context"
	"testing"

	"github.com/Veraticus/budgets/internal/model"
	"github.com/Veraticus/budgets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_SQLStoreRoundTrip(t *testing.T) {
	ts := testutil.SetupTestStore(t)
	ctx := context.Background()
	c := NewController(ts.Storage)

	require.NoError(t, c.Load(ctx))
	require.Len(t, c.Snapshot().Rows, 3)

	ops := ts.MustGetBudget("Operations")
	c.SetDraftValue(ops.ID, model.FieldBudgetConsumed, "1,000")
	require.ErrorIs(t, c.CommitField(ctx, ops.ID, model.FieldBudgetConsumed, "1,000"), ErrInvalidNumber)

	c.SetDraftValue(ops.ID, model.FieldBudgetConsumed, "1000.10")
	require.NoError(t, c.CommitField(ctx, ops.ID, model.FieldBudgetConsumed, "1000.10"))

	eng := ts.MustGetBudget("Engineering")
	require.NoError(t, c.CommitField(ctx, eng.ID, model.FieldName, "Platform"))

	fresh := NewController(ts.Storage)
	require.NoError(t, fresh.Load(ctx))
	snap := fresh.Snapshot()

	row, ok := snap.Row(ops.ID)
	require.True(t, ok)
	assert.Equal(t, "1000.1", row.BudgetConsumed)

	assert.Equal(t, []string{"Marketing", "Operations", "Platform"},
		[]string{snap.Rows[0].Name, snap.Rows[1].Name, snap.Rows[2].Name})
}
