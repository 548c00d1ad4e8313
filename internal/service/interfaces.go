// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
)

// CategoryParams holds the fields needed to create a category.
type CategoryParams struct {
	ParentID  *uuid.UUID
	Name      string
	Emoji     string
	SortOrder int
	IsHeader  bool
}

// Storage defines the contract for the ledger store. It is the engine's
// only view of persistence: fetch-all per entity type, inserts, deletes,
// and in-place mutation committed per call.
type Storage interface {
	// Account operations
	CreateAccount(ctx context.Context, name string, isBudget bool) (*model.Account, error)
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetAccountByName(ctx context.Context, name string) (*model.Account, error)

	// Category operations
	CreateCategory(ctx context.Context, params CategoryParams) (*model.Category, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, name string) (*model.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	HideCategory(ctx context.Context, id uuid.UUID) error
	// EnsureSystemCategory seeds the "To Budget" singleton on first run and
	// returns it; subsequent calls return the existing record.
	EnsureSystemCategory(ctx context.Context) (*model.Category, error)

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	GetTransactionsByAccount(ctx context.Context, accountID uuid.UUID) ([]model.Transaction, error)

	// Budget record operations. Find-or-create replaces the original's
	// ambient lazy lookups: callers receive explicit handles.
	GetBudgetMonths(ctx context.Context) ([]model.BudgetMonth, error)
	GetAllocations(ctx context.Context) ([]model.BudgetAllocation, error)
	FindOrCreateBudgetMonth(ctx context.Context, month model.Month) (*model.BudgetMonth, error)
	FindOrCreateAllocation(ctx context.Context, categoryID uuid.UUID, month model.Month) (*model.BudgetAllocation, error)
	// SetAllocationAmount writes the budgeted amount for (category, month).
	// Setting exactly zero deletes the allocation row so no zero-valued
	// records survive any code path.
	SetAllocationAmount(ctx context.Context, categoryID uuid.UUID, month model.Month, amount decimal.Decimal) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Tx, error)
	Close() error
}

// Tx represents a database transaction. All Storage methods issued through
// it become visible atomically on Commit.
type Tx interface {
	Commit() error
	Rollback() error
	Storage
}
