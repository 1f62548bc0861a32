package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/budgets/internal/cli"
	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the budget schema of the sqlite or postgres store.

Every command migrates the database before using it; this command is for
preparing a database ahead of time or checking its version.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	// Flags
	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := config.LoadStoreConfig()
	if err != nil {
		return fmt.Errorf("invalid store configuration: %w", err)
	}

	store, err := openDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	slog.Info("Starting database migration",
		"backend", cfg.Backend,
		"status_only", status)

	current, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if status {
		_, err = fmt.Fprintln(out, cli.RenderBox("Database Migration Status", fmt.Sprintf(
			"Backend:         %s\nCurrent version: %d\nLatest version:  %d",
			cfg.Backend, current, storage.ExpectedSchemaVersion)))
		return err
	}

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if current == storage.ExpectedSchemaVersion {
		_, err = fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Schema already at version %d", current)))
		return err
	}
	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Migrated schema from version %d to %d",
		current, storage.ExpectedSchemaVersion)))
	return err
}
