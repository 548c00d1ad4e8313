package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes how a transaction moves money.
type TransactionType string

const (
	// TransactionTypeIncome adds money to the origin account.
	TransactionTypeIncome TransactionType = "income"
	// TransactionTypeExpense removes money from the origin account.
	TransactionTypeExpense TransactionType = "expense"
	// TransactionTypeTransfer moves money between two accounts.
	TransactionTypeTransfer TransactionType = "transfer"
)

// Transaction is a single ledger entry. Amount is always a non-negative
// magnitude; Type carries the direction. TransferAccountID is set only for
// transfers. CategoryID is set when budget-account money must be
// envelope-tracked; bank-statement imports arrive uncategorized.
type Transaction struct {
	Date              time.Time
	Amount            decimal.Decimal
	TransferAccountID *uuid.UUID
	CategoryID        *uuid.UUID
	Payee             string
	Memo              string
	Hash              string
	Type              TransactionType
	ID                uuid.UUID
	AccountID         uuid.UUID
	Cleared           bool
}

// GenerateHash creates a stable hash for duplicate detection on re-import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount.String(),
		t.Type,
		t.Payee,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
