// Package storage implements the ledger store on SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so
// every entity query is written once and runs both standalone and inside a
// transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteStorage implements the service.Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStorage creates a new SQLite storage instance.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStorage{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Tx, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTx{tx: tx, storage: s}, nil
}

// sqliteTx wraps sql.Tx to implement service.Tx. Entity methods delegate to
// the shared querier implementations with the transaction as executor.
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTx) CreateAccount(ctx context.Context, name string, isBudget bool) (*model.Account, error) {
	return t.storage.createAccount(ctx, t.tx, name, isBudget)
}

func (t *sqliteTx) GetAccounts(ctx context.Context) ([]model.Account, error) {
	return t.storage.getAccounts(ctx, t.tx)
}

func (t *sqliteTx) GetAccountByName(ctx context.Context, name string) (*model.Account, error) {
	return t.storage.getAccountByName(ctx, t.tx, name)
}

func (t *sqliteTx) CreateCategory(ctx context.Context, params service.CategoryParams) (*model.Category, error) {
	return t.storage.createCategory(ctx, t.tx, params)
}

func (t *sqliteTx) GetCategories(ctx context.Context) ([]model.Category, error) {
	return t.storage.getCategories(ctx, t.tx)
}

func (t *sqliteTx) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	return t.storage.getCategoryByName(ctx, t.tx, name)
}

func (t *sqliteTx) GetCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return t.storage.getCategoryByID(ctx, t.tx, id)
}

func (t *sqliteTx) HideCategory(ctx context.Context, id uuid.UUID) error {
	return t.storage.hideCategory(ctx, t.tx, id)
}

func (t *sqliteTx) EnsureSystemCategory(ctx context.Context) (*model.Category, error) {
	return t.storage.ensureSystemCategory(ctx, t.tx)
}

func (t *sqliteTx) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	return t.storage.saveTransactions(ctx, t.tx, transactions)
}

func (t *sqliteTx) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	return t.storage.getTransactions(ctx, t.tx)
}

func (t *sqliteTx) GetTransactionsByAccount(ctx context.Context, accountID uuid.UUID) ([]model.Transaction, error) {
	return t.storage.getTransactionsByAccount(ctx, t.tx, accountID)
}

func (t *sqliteTx) GetBudgetMonths(ctx context.Context) ([]model.BudgetMonth, error) {
	return t.storage.getBudgetMonths(ctx, t.tx)
}

func (t *sqliteTx) GetAllocations(ctx context.Context) ([]model.BudgetAllocation, error) {
	return t.storage.getAllocations(ctx, t.tx)
}

func (t *sqliteTx) FindOrCreateBudgetMonth(ctx context.Context, month model.Month) (*model.BudgetMonth, error) {
	return t.storage.findOrCreateBudgetMonth(ctx, t.tx, month)
}

func (t *sqliteTx) FindOrCreateAllocation(ctx context.Context, categoryID uuid.UUID, month model.Month) (*model.BudgetAllocation, error) {
	return t.storage.findOrCreateAllocation(ctx, t.tx, categoryID, month)
}

func (t *sqliteTx) SetAllocationAmount(ctx context.Context, categoryID uuid.UUID, month model.Month, amount decimal.Decimal) error {
	return t.storage.setAllocationAmount(ctx, t.tx, categoryID, month, amount)
}

func (t *sqliteTx) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTx) BeginTx(_ context.Context) (service.Tx, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTx) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
