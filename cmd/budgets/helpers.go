package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/budgets/internal/config"
	"github.com/Veraticus/budgets/internal/dataverse"
	"github.com/Veraticus/budgets/internal/grid"
	"github.com/Veraticus/budgets/internal/service"
	"github.com/Veraticus/budgets/internal/sheets"
	"github.com/Veraticus/budgets/internal/storage"
)

// openStore connects to the configured backend. SQL backends are migrated
// before use. The returned close function is never nil.
func openStore(ctx context.Context, cfg *config.StoreConfig) (service.BudgetStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendDataverse:
		client, err := dataverse.NewClient(ctx, cfg.Dataverse)
		if err != nil {
			return nil, nil, err
		}
		return client, func() error { return nil }, nil

	case config.BackendSheets:
		store, err := sheets.NewStore(ctx, cfg.Sheets)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil

	default:
		store, err := openSQLStorage(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}
}

// openDatabase opens the SQLite or Postgres store without migrating it.
func openDatabase(ctx context.Context, cfg *config.StoreConfig) (*storage.Storage, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return storage.NewSQLiteStorage(cfg.DatabasePath)
	case config.BackendPostgres:
		return storage.NewPostgresStorage(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("%s backend has no local database (use sqlite or postgres)", cfg.Backend)
	}
}

// openSQLStorage opens and migrates the SQLite or Postgres store.
func openSQLStorage(ctx context.Context, cfg *config.StoreConfig) (*storage.Storage, error) {
	store, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newController builds the grid controller with the configured page size and
// store timeout.
func newController(store service.BudgetStore, cfg *config.StoreConfig, logger *slog.Logger) *grid.Controller {
	return grid.NewController(store,
		grid.WithPageSize(cfg.PageSize),
		grid.WithTimeout(cfg.Timeout),
		grid.WithLogger(logger),
	)
}
