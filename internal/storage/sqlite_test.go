package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

func TestMigrateIsIdempotent(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != ExpectedSchemaVersion {
		t.Errorf("schema version = %d, want %d", version, ExpectedSchemaVersion)
	}
}

func TestInMemoryStorage(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("Failed to create in-memory storage: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate in-memory database: %v", err)
	}
	if _, err := store.CreateAccount(ctx, "Checking", true); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}
}

func TestBeginTxCommitAndRollback(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, categoryParams("Groceries"))
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	month := model.NewMonth(2026, time.March)

	t.Run("rollback discards writes", func(t *testing.T) {
		tx, txErr := store.BeginTx(ctx)
		if txErr != nil {
			t.Fatalf("BeginTx failed: %v", txErr)
		}
		if err := tx.SetAllocationAmount(ctx, cat.ID, month, mustDecimal(t, "100")); err != nil {
			t.Fatalf("SetAllocationAmount in tx failed: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("Rollback failed: %v", err)
		}

		allocations, allocErr := store.GetAllocations(ctx)
		if allocErr != nil {
			t.Fatalf("GetAllocations failed: %v", allocErr)
		}
		if len(allocations) != 0 {
			t.Errorf("rolled-back allocation survived: %d rows", len(allocations))
		}
	})

	t.Run("commit makes writes visible", func(t *testing.T) {
		tx, txErr := store.BeginTx(ctx)
		if txErr != nil {
			t.Fatalf("BeginTx failed: %v", txErr)
		}
		if err := tx.SetAllocationAmount(ctx, cat.ID, month, mustDecimal(t, "100")); err != nil {
			t.Fatalf("SetAllocationAmount in tx failed: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Commit failed: %v", err)
		}

		allocations, allocErr := store.GetAllocations(ctx)
		if allocErr != nil {
			t.Fatalf("GetAllocations failed: %v", allocErr)
		}
		if len(allocations) != 1 {
			t.Fatalf("committed allocation missing: %d rows", len(allocations))
		}
		if !allocations[0].Budgeted.Equal(mustDecimal(t, "100")) {
			t.Errorf("budgeted = %s, want 100", allocations[0].Budgeted)
		}
	})
}

func TestValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateAccount(ctx, "", true); err == nil {
		t.Error("CreateAccount accepted an empty name")
	}
	if _, err := store.GetCategoryByID(ctx, uuid.Nil); err == nil {
		t.Error("GetCategoryByID accepted the nil UUID")
	}
	if err := store.SetAllocationAmount(ctx, uuid.New(), model.Month{}, decimal.Zero); err == nil {
		t.Error("SetAllocationAmount accepted a zero month")
	}
}
