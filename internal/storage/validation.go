package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/famfin/famfin/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string cannot be empty")
	ErrNilUUID      = errors.New("id cannot be nil")
	ErrZeroMonth    = errors.New("month cannot be zero")
	ErrInvalidTxn   = errors.New("invalid transaction")
	ErrInvalidMonth = errors.New("invalid date range")
)

func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

func validateString(value, name string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, name)
	}
	return nil
}

func validateUUID(id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: %s", ErrNilUUID, name)
	}
	return nil
}

func validateMonth(month model.Month) error {
	if month.IsZero() {
		return ErrZeroMonth
	}
	return nil
}

func validateTransactions(transactions []model.Transaction) error {
	for i := range transactions {
		t := &transactions[i]
		if t.Amount.IsNegative() {
			return fmt.Errorf("%w: negative amount at index %d", ErrInvalidTxn, i)
		}
		switch t.Type {
		case model.TransactionTypeIncome, model.TransactionTypeExpense:
			if t.TransferAccountID != nil {
				return fmt.Errorf("%w: transfer account set on %s at index %d", ErrInvalidTxn, t.Type, i)
			}
		case model.TransactionTypeTransfer:
			if t.TransferAccountID == nil {
				return fmt.Errorf("%w: transfer missing destination at index %d", ErrInvalidTxn, i)
			}
		default:
			return fmt.Errorf("%w: unknown type %q at index %d", ErrInvalidTxn, t.Type, i)
		}
		if t.Date.IsZero() {
			return fmt.Errorf("%w: zero date at index %d", ErrInvalidTxn, i)
		}
	}
	return nil
}
