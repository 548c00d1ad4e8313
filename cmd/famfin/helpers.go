package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/famfin/famfin/internal/common"
	"github.com/famfin/famfin/internal/config"
	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"
	"github.com/famfin/famfin/internal/storage"
)

// initStorage initializes the ledger store with proper path expansion. It
// runs migrations and seeds the "To Budget" system category on first run.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/famfin/famfin.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// The system category is a data-integrity precondition for the
	// calculator; re-seed it here rather than inside the engine.
	if _, err := store.EnsureSystemCategory(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure system category: %w", err)
	}

	return store, nil
}

// monthArg parses an optional YYYY-MM positional argument, defaulting to the
// current calendar month.
func monthArg(args []string) (model.Month, error) {
	if len(args) == 0 {
		return model.MonthOf(time.Now()), nil
	}
	return model.ParseMonth(args[0])
}

// lookupCategory resolves a category by name, failing with a user-friendly
// error when it does not exist.
func lookupCategory(ctx context.Context, store service.Storage, name string) (*model.Category, error) {
	cat, err := store.GetCategoryByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up category %q: %w", name, err)
	}
	if cat == nil {
		return nil, common.NewUserError(fmt.Sprintf("category %q does not exist", name), common.ErrNotFound)
	}
	return cat, nil
}

// lookupAccount resolves an account by name, failing with a user-friendly
// error when it does not exist.
func lookupAccount(ctx context.Context, store service.Storage, name string) (*model.Account, error) {
	account, err := store.GetAccountByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up account %q: %w", name, err)
	}
	if account == nil {
		return nil, common.NewUserError(fmt.Sprintf("account %q does not exist", name), common.ErrNotFound)
	}
	return account, nil
}
