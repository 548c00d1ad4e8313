package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetMonth anchors allocations to one calendar month. Rows are created
// lazily the first time a category receives a non-zero allocation in that
// month; Month is unique across the store.
type BudgetMonth struct {
	Month Month
	Note  string
	ID    uuid.UUID
}

// BudgetAllocation is the planned amount for one category in one month. At
// most one row exists per (category, month); a zero amount is represented by
// deleting the row, never by storing zero.
type BudgetAllocation struct {
	Budgeted   decimal.Decimal
	ID         uuid.UUID
	CategoryID uuid.UUID
	MonthID    uuid.UUID
}
