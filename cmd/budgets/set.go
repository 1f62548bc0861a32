package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budgets/internal/cli"
	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/grid"
	"github.com/Veraticus/budgets/internal/model"
)

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <field> <value>",
		Short: "Save one field of a budget",
		Long: `Save one field of a budget through the same path as the grid.

Fields: name, budgetConsumed, ownerId (store attribute names also work).
Values are trimmed; budgetConsumed must be a number. Saving a value equal to
the stored one is a no-op.`,
		Example: `  budgets set 3f2a... budgetConsumed 1250.50
  budgets set 3f2a... name "Marketing EMEA"`,
		Args: cobra.ExactArgs(3),
		RunE: runSet,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	id, value := args[0], args[2]
	field, err := model.ParseField(args[1])
	if err != nil {
		return err
	}

	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	store, closeStore, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	defer func() { _ = closeStore() }()

	controller := newController(store, cfg, logger(cmd))
	if err := controller.Load(cmd.Context()); err != nil {
		return errors.New(common.Message(err, grid.LoadFailedMessage))
	}

	before := controller.Snapshot()
	if _, ok := before.Row(id); !ok {
		return fmt.Errorf("budget %s is not among the first %d budgets", id, cfg.PageSize)
	}

	err = controller.CommitField(cmd.Context(), id, field, value)
	switch {
	case errors.Is(err, grid.ErrInvalidNumber):
		return errors.New(grid.InvalidNumberMessage)
	case err != nil:
		return errors.New(common.Message(err, grid.SaveFailedMessage))
	}

	after := controller.Snapshot()
	row, _ := after.Row(id)
	old, _ := before.Row(id)
	if old.Get(field) == row.Get(field) {
		_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("%s is unchanged (%q)", field.Label(), row.Get(field))))
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Saved %s of %s: %q", field.Label(), row.Name, row.Get(field))))
	return err
}
