package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/famfin/famfin/internal/config"
	"github.com/famfin/famfin/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every command migrates on startup; this command exists to migrate
explicitly or to inspect the schema version with --status.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/famfin/famfin.db"
	}
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if status {
		version, versionErr := store.SchemaVersion(ctx)
		if versionErr != nil {
			return versionErr
		}
		fmt.Printf("Database: %s\n", dbPath)
		fmt.Printf("Current schema version: %d\n", version)
		fmt.Printf("Latest schema version:  %d\n", storage.ExpectedSchemaVersion)
		return nil
	}

	slog.Info("Running database migrations", "database", dbPath)

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("Database migrations completed successfully")
	return nil
}
