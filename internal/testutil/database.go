// Package testutil provides test fixtures for the ledger store.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"
	"github.com/famfin/famfin/internal/storage"
)

// TestDB wraps an in-memory, migrated ledger store with the seeded system
// category and fatal-on-error helpers for building fixtures.
type TestDB struct {
	Storage service.Storage
	System  *model.Category
	t       *testing.T
}

// SetupTestDB creates a new in-memory test database. It runs migrations,
// seeds the "To Budget" system category, and registers cleanup.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	system, err := store.EnsureSystemCategory(ctx)
	if err != nil {
		t.Fatalf("failed to seed system category: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage: store,
		System:  system,
		t:       t,
	}
}

// Account creates an account or fails the test.
func (db *TestDB) Account(name string, isBudget bool) *model.Account {
	db.t.Helper()
	account, err := db.Storage.CreateAccount(context.Background(), name, isBudget)
	if err != nil {
		db.t.Fatalf("failed to create account %q: %v", name, err)
	}
	return account
}

// Category creates a budgetable category or fails the test.
func (db *TestDB) Category(name string) *model.Category {
	db.t.Helper()
	cat, err := db.Storage.CreateCategory(context.Background(), service.CategoryParams{Name: name})
	if err != nil {
		db.t.Fatalf("failed to create category %q: %v", name, err)
	}
	return cat
}

// Budget sets a category's allocation for a month or fails the test.
func (db *TestDB) Budget(cat *model.Category, month model.Month, amount string) {
	db.t.Helper()
	if err := db.Storage.SetAllocationAmount(context.Background(), cat.ID, month, dec(db.t, amount)); err != nil {
		db.t.Fatalf("failed to budget %s to %q: %v", amount, cat.Name, err)
	}
}

// Income records a categorized or uncategorized income transaction.
func (db *TestDB) Income(account *model.Account, cat *model.Category, date time.Time, amount string) {
	db.t.Helper()
	db.save(model.Transaction{
		Date:       date,
		Amount:     dec(db.t, amount),
		Type:       model.TransactionTypeIncome,
		AccountID:  account.ID,
		CategoryID: categoryID(cat),
		Payee:      "test income",
	})
}

// Expense records a categorized or uncategorized expense transaction.
func (db *TestDB) Expense(account *model.Account, cat *model.Category, date time.Time, amount string) {
	db.t.Helper()
	db.save(model.Transaction{
		Date:       date,
		Amount:     dec(db.t, amount),
		Type:       model.TransactionTypeExpense,
		AccountID:  account.ID,
		CategoryID: categoryID(cat),
		Payee:      "test expense",
	})
}

// Transfer records a transfer between two accounts, optionally categorized.
func (db *TestDB) Transfer(from, to *model.Account, cat *model.Category, date time.Time, amount string) {
	db.t.Helper()
	db.save(model.Transaction{
		Date:              date,
		Amount:            dec(db.t, amount),
		Type:              model.TransactionTypeTransfer,
		AccountID:         from.ID,
		TransferAccountID: &to.ID,
		CategoryID:        categoryID(cat),
		Payee:             "Transfer",
	})
}

func (db *TestDB) save(txn model.Transaction) {
	db.t.Helper()
	if err := db.Storage.SaveTransactions(context.Background(), []model.Transaction{txn}); err != nil {
		db.t.Fatalf("failed to save transaction: %v", err)
	}
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

func categoryID(cat *model.Category) *uuid.UUID {
	if cat == nil {
		return nil
	}
	return &cat.ID
}
