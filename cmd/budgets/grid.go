package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/tui"
	"github.com/Veraticus/budgets/internal/tui/themes"
)

func gridCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Open the editable budget grid",
		Long: `Open the full-screen budget grid.

Move with the arrow keys or hjkl, press Enter to edit a cell and Enter, Esc
or Tab to save it. Wide terminals show a table; narrow ones show cards.
Logs go to a file while the grid is open.`,
		RunE: runGrid,
	}

	addGridFlags(cmd)

	return cmd
}

func addGridFlags(cmd *cobra.Command) {
	cmd.Flags().String("theme", "", "color theme (default, catppuccin)")
	cmd.Flags().Int("breakpoint", 0, "narrowest width that shows the table layout")
}

func runGrid(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := logger(cmd)

	themeName := viper.GetString("tui.theme")
	if v, _ := cmd.Flags().GetString("theme"); v != "" {
		themeName = v
	}
	theme, err := themes.ByName(themeName)
	if err != nil {
		return err
	}

	breakpoint := viper.GetInt("tui.breakpoint")
	if v, _ := cmd.Flags().GetInt("breakpoint"); v > 0 {
		breakpoint = v
	}

	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}
	defer func() { _ = closeStore() }()

	log.Info("Opening budget grid", "backend", cfg.Backend, "page_size", cfg.PageSize)

	return tui.Run(ctx, newController(store, cfg, log),
		tui.WithTheme(theme),
		tui.WithBreakpoint(breakpoint),
		tui.WithLogger(log),
	)
}
