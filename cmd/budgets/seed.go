package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/budgets/internal/cli"
	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/model"
)

var seedDepartments = []string{
	"Engineering", "Facilities", "Finance", "Legal", "Marketing",
	"Operations", "People", "Product", "Sales", "Support",
}

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample budgets into the local database",
		Long: `Insert budgets into the sqlite or postgres store.

With --file, budgets are read from a JSON array of objects with name,
budgetConsumed and ownerId keys and inserted in one transaction. Otherwise
--count generated budgets are inserted one at a time.`,
		Args: cobra.NoArgs,
		RunE: runSeed,
	}

	cmd.Flags().Int("count", 12, "number of generated budgets")
	cmd.Flags().String("file", "", "JSON file of budgets to insert")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	count, _ := cmd.Flags().GetInt("count")
	file, _ := cmd.Flags().GetString("file")

	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	store, err := openSQLStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	out := cmd.OutOrStdout()

	if file != "" {
		budgets, err := readSeedFile(file)
		if err != nil {
			return err
		}
		seeded, err := store.SeedBudgets(cmd.Context(), budgets)
		if err != nil {
			return fmt.Errorf("failed to seed budgets: %w", err)
		}
		_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Inserted %d budgets from %s", len(seeded), file)))
		return err
	}

	if count <= 0 {
		return errors.New("--count must be positive")
	}

	interrupts := cli.NewInterruptHandler(out, "Seeding")
	ctx := interrupts.HandleInterrupts(cmd.Context(), true)

	bar := cli.NewProgressBar(out, count, "Seeding budgets...")
	inserted := 0
	for _, b := range sampleBudgets(count) {
		if ctx.Err() != nil {
			break
		}
		if _, err := store.InsertBudget(ctx, b); err != nil {
			if interrupts.WasInterrupted() {
				break
			}
			return fmt.Errorf("failed to seed budgets: %w", err)
		}
		inserted++
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	total, err := store.CountBudgets(cmd.Context())
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(out, cli.RenderBox("Seed Complete", fmt.Sprintf(
		"Inserted: %d\nTotal budgets: %d", inserted, total)))
	return err
}

// sampleBudgets generates n budgets cycling through departments.
func sampleBudgets(n int) []model.Budget {
	budgets := make([]model.Budget, 0, n)
	for i := range n {
		dept := seedDepartments[i%len(seedDepartments)]
		name := dept
		if round := i / len(seedDepartments); round > 0 {
			name = fmt.Sprintf("%s %d", dept, round+1)
		}

		// Cents vary with i so amounts are not all round numbers.
		amount := decimal.New(int64(1000+i*137)*100+int64(i*7%100), -2)

		budgets = append(budgets, model.Budget{
			Name:           name,
			BudgetConsumed: model.FormatAmount(amount),
			OwnerID:        fmt.Sprintf("owner-%02d", i%5+1),
		})
	}
	return budgets
}

func readSeedFile(path string) ([]model.Budget, error) {
	data, err := os.ReadFile(config.ExpandPath(path)) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var budgets []model.Budget
	if err := json.Unmarshal(data, &budgets); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return budgets, nil
}
