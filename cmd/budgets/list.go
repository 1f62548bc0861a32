package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budgets/internal/cli"
	"github.com/Veraticus/budgets/internal/common"
	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/grid"
	"github.com/Veraticus/budgets/internal/model"
)

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the first page of budgets",
		Long: `Print the budgets the grid would load: ordered by name and limited to
one page (store.page_size).`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().Bool("json", false, "print JSON instead of a table")
	cmd.Flags().Int("width", 32, "truncate table cells to this width (0 for no limit)")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	width, _ := cmd.Flags().GetInt("width")

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

	return writeBudgets(cmd, controller.Snapshot().Rows, asJSON, width)
}

func writeBudgets(cmd *cobra.Command, rows []model.Budget, asJSON bool, width int) error {
	out := cmd.OutOrStdout()

	if asJSON {
		if rows == nil {
			rows = []model.Budget{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		_, err := fmt.Fprintln(out, cli.FormatInfo("No budgets found."))
		return err
	}

	headers := []string{"ID"}
	for _, f := range model.EditableFields {
		headers = append(headers, f.Label())
	}

	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		line := []string{row.ID}
		for _, f := range model.EditableFields {
			line = append(line, row.Get(f))
		}
		cells = append(cells, line)
	}

	_, err := fmt.Fprintln(out, cli.RenderTable(headers, cells, width))
	return err
}
