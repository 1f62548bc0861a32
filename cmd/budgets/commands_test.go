package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/grid"
	"github.com/Veraticus/budgets/internal/model"
)

// useTempDatabase points the store configuration at a fresh sqlite file.
func useTempDatabase(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	config.SetDefaults()
	viper.Set("store.backend", config.BackendSQLite)
	viper.Set("database.path", filepath.Join(t.TempDir(), "budgets.db"))
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func listBudgets(t *testing.T) []model.Budget {
	t.Helper()
	out, err := execute(t, listCmd(), "--json")
	require.NoError(t, err)

	var budgets []model.Budget
	require.NoError(t, json.Unmarshal([]byte(out), &budgets))
	return budgets
}

func TestSeedAndList(t *testing.T) {
	useTempDatabase(t)

	out, err := execute(t, seedCmd(), "--count", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted: 3")
	assert.Contains(t, out, "Total budgets: 3")

	budgets := listBudgets(t)
	require.Len(t, budgets, 3)
	assert.Equal(t, "Engineering", budgets[0].Name)
	assert.Equal(t, "1000", budgets[0].BudgetConsumed)
	assert.Equal(t, "Facilities", budgets[1].Name)
	assert.Equal(t, "1137.07", budgets[1].BudgetConsumed)
	assert.Equal(t, "Finance", budgets[2].Name)
	assert.NotEmpty(t, budgets[0].ID)

	table, err := execute(t, listCmd())
	require.NoError(t, err)
	assert.Contains(t, table, "Budget Consumed")
	assert.Contains(t, table, "1137.07")
}

func TestListEmpty(t *testing.T) {
	useTempDatabase(t)

	out, err := execute(t, listCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "No budgets found.")

	assert.Empty(t, listBudgets(t))
}

func TestSeedFromFile(t *testing.T) {
	useTempDatabase(t)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, writeFile(path, `[
		{"name": "Travel", "budgetConsumed": "250.50", "ownerId": "owner-1"},
		{"name": "Hardware"}
	]`))

	out, err := execute(t, seedCmd(), "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Inserted 2 budgets")

	budgets := listBudgets(t)
	require.Len(t, budgets, 2)
	assert.Equal(t, model.Budget{ID: budgets[0].ID, Name: "Hardware"}, budgets[0])
	assert.Equal(t, "250.5", budgets[1].BudgetConsumed)
}

func TestSet(t *testing.T) {
	useTempDatabase(t)
	_, err := execute(t, seedCmd(), "--count", "2")
	require.NoError(t, err)
	id := listBudgets(t)[0].ID

	out, err := execute(t, setCmd(), id, "budgetConsumed", " 12.50 ")
	require.NoError(t, err)
	assert.Contains(t, out, `Saved Budget Consumed of Engineering: "12.5"`)
	assert.Equal(t, "12.5", listBudgets(t)[0].BudgetConsumed)

	out, err = execute(t, setCmd(), id, model.AttrBudgetConsumed, "12.5")
	require.NoError(t, err)
	assert.Contains(t, out, "unchanged")

	out, err = execute(t, setCmd(), id, "ownerId", "owner-77")
	require.NoError(t, err)
	assert.Contains(t, out, "owner-77")
}

func TestSetErrors(t *testing.T) {
	useTempDatabase(t)
	_, err := execute(t, seedCmd(), "--count", "1")
	require.NoError(t, err)
	id := listBudgets(t)[0].ID

	tests := []struct {
		name    string
		wantErr string
		args    []string
	}{
		{name: "invalid number", args: []string{id, "budgetConsumed", "1,000"}, wantErr: grid.InvalidNumberMessage},
		{name: "unknown field", args: []string{id, "color", "red"}, wantErr: `unknown field "color"`},
		{name: "unknown budget", args: []string{"missing", "name", "x"}, wantErr: "budget missing is not among"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, setCmd(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMigrateStatus(t *testing.T) {
	useTempDatabase(t)

	out, err := execute(t, migrateCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Migrated schema from version 0 to 2")

	out, err = execute(t, migrateCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Schema already at version 2")

	out, err = execute(t, migrateCmd(), "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "Current version: 2")
}

func TestMigrateRejectsRemoteBackends(t *testing.T) {
	useTempDatabase(t)
	viper.Set("store.backend", config.BackendSheets)
	viper.Set("sheets.spreadsheet_id", "sheet-1")
	viper.Set("sheets.service_account_path", "/dev/null")

	_, err := execute(t, migrateCmd())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets backend has no local database")
}

func TestSampleBudgets(t *testing.T) {
	budgets := sampleBudgets(12)

	require.Len(t, budgets, 12)
	assert.Equal(t, "Engineering", budgets[0].Name)
	assert.Equal(t, "Engineering 2", budgets[10].Name)
	assert.Equal(t, "Facilities 2", budgets[11].Name)
	assert.Equal(t, "owner-01", budgets[0].OwnerID)
	assert.Equal(t, "owner-01", budgets[5].OwnerID)
	for _, b := range budgets {
		_, err := model.ParseAmount(b.BudgetConsumed)
		assert.NoError(t, err, b.BudgetConsumed)
	}
}

func TestOwnsTerminal(t *testing.T) {
	assert.True(t, ownsTerminal(rootCmd))

	subcommands := map[string]*cobra.Command{}
	for _, c := range rootCmd.Commands() {
		subcommands[c.Name()] = c
	}
	require.Contains(t, subcommands, "grid")
	require.Contains(t, subcommands, "list")

	assert.True(t, ownsTerminal(subcommands["grid"]))
	assert.False(t, ownsTerminal(subcommands["list"]))
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
