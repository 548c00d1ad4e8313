package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS accounts (
					id TEXT PRIMARY KEY,
					name TEXT UNIQUE NOT NULL,
					is_budget INTEGER NOT NULL DEFAULT 1,
					sort_order INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,

				// Money columns are TEXT: amounts are arbitrary-precision
				// decimals and must round-trip without float drift.
				`CREATE TABLE IF NOT EXISTS categories (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					emoji TEXT NOT NULL DEFAULT '',
					is_header INTEGER NOT NULL DEFAULT 0,
					is_system INTEGER NOT NULL DEFAULT 0,
					is_hidden INTEGER NOT NULL DEFAULT 0,
					parent_id TEXT REFERENCES categories(id),
					sort_order INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE UNIQUE INDEX idx_categories_system ON categories(is_system) WHERE is_system = 1`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					amount TEXT NOT NULL,
					type TEXT NOT NULL CHECK (type IN ('income', 'expense', 'transfer')),
					payee TEXT NOT NULL DEFAULT '',
					memo TEXT NOT NULL DEFAULT '',
					cleared INTEGER NOT NULL DEFAULT 1,
					account_id TEXT NOT NULL REFERENCES accounts(id),
					transfer_account_id TEXT REFERENCES accounts(id),
					category_id TEXT REFERENCES categories(id),
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_account ON transactions(account_id)`,

				`CREATE TABLE IF NOT EXISTS budget_months (
					id TEXT PRIMARY KEY,
					month DATETIME UNIQUE NOT NULL,
					note TEXT NOT NULL DEFAULT ''
				)`,

				`CREATE TABLE IF NOT EXISTS budget_allocations (
					id TEXT PRIMARY KEY,
					budgeted TEXT NOT NULL,
					category_id TEXT NOT NULL REFERENCES categories(id),
					month_id TEXT NOT NULL REFERENCES budget_months(id),
					UNIQUE(category_id, month_id)
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Index transactions by category for activity rollups",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category_id)`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Index allocations by month for cumulative budget sums",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_allocations_month ON budget_allocations(month_id)`)
			return err
		},
	},
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies any outstanding schema migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
