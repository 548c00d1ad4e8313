package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
)

// SaveTransactions batch-saves transactions, skipping duplicates by hash.
// Transactions without an ID or hash get them assigned.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}
	return s.saveTransactions(ctx, s.db, transactions)
}

// GetTransactions returns all transactions ordered by date.
func (s *SQLiteStorage) GetTransactions(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getTransactions(ctx, s.db)
}

// GetTransactionsByAccount returns the transactions whose origin is the
// given account, ordered by date.
func (s *SQLiteStorage) GetTransactionsByAccount(ctx context.Context, accountID uuid.UUID) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUUID(accountID, "accountID"); err != nil {
		return nil, err
	}
	return s.getTransactionsByAccount(ctx, s.db, accountID)
}

func (s *SQLiteStorage) saveTransactions(ctx context.Context, q querier, transactions []model.Transaction) error {
	query := `
		INSERT OR IGNORE INTO transactions
			(id, hash, date, amount, type, payee, memo, cleared, account_id, transfer_account_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var saved int
	for i := range transactions {
		t := &transactions[i]
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if t.Hash == "" {
			t.Hash = t.GenerateHash()
		}

		result, err := q.ExecContext(ctx, query,
			t.ID.String(), t.Hash, t.Date.UTC(), t.Amount.String(), string(t.Type),
			t.Payee, t.Memo, t.Cleared, t.AccountID.String(),
			uuidPtrValue(t.TransferAccountID), uuidPtrValue(t.CategoryID),
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", t.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check save result: %w", err)
		}
		saved += int(affected)
	}

	slog.Debug("saved transactions", "total", len(transactions), "new", saved)
	return nil
}

func (s *SQLiteStorage) getTransactions(ctx context.Context, q querier) ([]model.Transaction, error) {
	query := `
		SELECT id, hash, date, amount, type, payee, memo, cleared, account_id, transfer_account_id, category_id
		FROM transactions
		ORDER BY date, id`

	return s.queryTransactions(ctx, q, query)
}

func (s *SQLiteStorage) getTransactionsByAccount(ctx context.Context, q querier, accountID uuid.UUID) ([]model.Transaction, error) {
	query := `
		SELECT id, hash, date, amount, type, payee, memo, cleared, account_id, transfer_account_id, category_id
		FROM transactions
		WHERE account_id = ?
		ORDER BY date, id`

	return s.queryTransactions(ctx, q, query, accountID.String())
}

func (s *SQLiteStorage) queryTransactions(ctx context.Context, q querier, query string, args ...any) ([]model.Transaction, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	return transactions, nil
}

func scanTransaction(row rowScanner) (*model.Transaction, error) {
	var (
		txn               model.Transaction
		id                string
		amount            string
		txnType           string
		accountID         string
		transferAccountID sql.NullString
		categoryID        sql.NullString
	)
	if err := row.Scan(&id, &txn.Hash, &txn.Date, &amount, &txnType, &txn.Payee,
		&txn.Memo, &txn.Cleared, &accountID, &transferAccountID, &categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction id %q: %w", id, err)
	}
	txn.ID = parsed

	txn.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	txn.Type = model.TransactionType(txnType)

	account, err := uuid.Parse(accountID)
	if err != nil {
		return nil, fmt.Errorf("invalid account id %q: %w", accountID, err)
	}
	txn.AccountID = account

	if transferAccountID.Valid {
		transfer, parseErr := uuid.Parse(transferAccountID.String)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid transfer account id %q: %w", transferAccountID.String, parseErr)
		}
		txn.TransferAccountID = &transfer
	}
	if categoryID.Valid {
		category, parseErr := uuid.Parse(categoryID.String)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid category id %q: %w", categoryID.String, parseErr)
		}
		txn.CategoryID = &category
	}

	return &txn, nil
}
