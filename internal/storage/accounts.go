package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/famfin/famfin/internal/model"
)

// CreateAccount creates a new account. New accounts sort after existing ones.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, name string, isBudget bool) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.createAccount(ctx, s.db, name, isBudget)
}

// GetAccounts returns all accounts in display order.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAccounts(ctx, s.db)
}

// GetAccountByName returns the account with the given name, or nil if none
// exists.
func (s *SQLiteStorage) GetAccountByName(ctx context.Context, name string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getAccountByName(ctx, s.db, name)
}

func (s *SQLiteStorage) createAccount(ctx context.Context, q querier, name string, isBudget bool) (*model.Account, error) {
	var sortOrder int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&sortOrder); err != nil {
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}

	account := &model.Account{
		ID:        uuid.New(),
		Name:      name,
		IsBudget:  isBudget,
		SortOrder: sortOrder,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO accounts (id, name, is_budget, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?)`

	if _, err := q.ExecContext(ctx, query,
		account.ID.String(), account.Name, account.IsBudget, account.SortOrder, account.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	slog.Info("created account", "name", name, "is_budget", isBudget)
	return account, nil
}

func (s *SQLiteStorage) getAccounts(ctx context.Context, q querier) ([]model.Account, error) {
	query := `
		SELECT id, name, is_budget, sort_order, created_at
		FROM accounts
		ORDER BY sort_order, name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		account, scanErr := scanAccount(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		accounts = append(accounts, *account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

func (s *SQLiteStorage) getAccountByName(ctx context.Context, q querier, name string) (*model.Account, error) {
	query := `
		SELECT id, name, is_budget, sort_order, created_at
		FROM accounts
		WHERE name = ?`

	row := q.QueryRowContext(ctx, query, name)
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*model.Account, error) {
	var (
		account model.Account
		id      string
	)
	if err := row.Scan(&id, &account.Name, &account.IsBudget, &account.SortOrder, &account.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", id, err)
	}
	account.ID = parsed

	return &account, nil
}
