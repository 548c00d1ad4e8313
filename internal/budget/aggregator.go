package budget

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
)

// Budgeted returns the allocation amount for (category, month), or zero when
// no allocation exists.
func (s *Snapshot) Budgeted(categoryID uuid.UUID, month model.Month) decimal.Decimal {
	if a, ok := s.allocationsBy[AllocationKey{CategoryID: categoryID, Month: month}]; ok {
		return a.Budgeted
	}
	return decimal.Zero
}

// Activity returns the signed sum of the month's transactions carrying the
// category: income adds, expense subtracts. Transfers only carry a category
// when they cross the budget/tracking boundary; money leaving the budget
// system subtracts, money entering it adds.
func (s *Snapshot) Activity(categoryID uuid.UUID, month model.Month) decimal.Decimal {
	total := decimal.Zero
	for i := range s.Transactions {
		t := &s.Transactions[i]
		if t.CategoryID == nil || *t.CategoryID != categoryID {
			continue
		}
		if !month.Contains(t.Date) {
			continue
		}
		total = total.Add(s.signedAmount(t))
	}
	return total
}

// Available returns the envelope's running balance through the given month:
// the sum of budgeted + activity for every month up to and including it,
// over the category's entire history. Under-spent months roll a positive
// balance forward; overspent months roll a negative one.
func (s *Snapshot) Available(categoryID uuid.UUID, through model.Month) decimal.Decimal {
	end := through.End()
	total := decimal.Zero

	for i := range s.Allocations {
		a := &s.Allocations[i]
		if a.CategoryID != categoryID {
			continue
		}
		m, ok := s.allocationMonth(a)
		if !ok || m.After(through) {
			continue
		}
		total = total.Add(a.Budgeted)
	}

	for i := range s.Transactions {
		t := &s.Transactions[i]
		if t.CategoryID == nil || *t.CategoryID != categoryID {
			continue
		}
		if !t.Date.UTC().Before(end) {
			continue
		}
		total = total.Add(s.signedAmount(t))
	}

	return total
}

// AverageBudgeted returns the arithmetic mean of the budgeted amounts over
// the n calendar months strictly preceding before. Months with no
// allocation count as zero; the divisor is always n.
func (s *Snapshot) AverageBudgeted(categoryID uuid.UUID, before model.Month, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for i := 1; i <= n; i++ {
		total = total.Add(s.Budgeted(categoryID, before.AddMonths(-i)))
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

// AverageSpending returns the arithmetic mean of net spending (negated
// activity) over the n calendar months strictly preceding before, with the
// same zero-fill semantics as AverageBudgeted.
func (s *Snapshot) AverageSpending(categoryID uuid.UUID, before model.Month, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for i := 1; i <= n; i++ {
		total = total.Add(s.Activity(categoryID, before.AddMonths(-i)).Neg())
	}
	return total.Div(decimal.NewFromInt(int64(n)))
}

// signedAmount converts a transaction's magnitude into its envelope effect.
func (s *Snapshot) signedAmount(t *model.Transaction) decimal.Decimal {
	switch t.Type {
	case model.TransactionTypeIncome:
		return t.Amount
	case model.TransactionTypeExpense:
		return t.Amount.Neg()
	case model.TransactionTypeTransfer:
		if t.TransferAccountID == nil {
			return decimal.Zero
		}
		// Only boundary-crossing transfers participate in envelope math.
		if s.isBudgetAccount(t.AccountID) && s.isTrackingAccount(*t.TransferAccountID) {
			return t.Amount.Neg()
		}
		if s.isTrackingAccount(t.AccountID) && s.isBudgetAccount(*t.TransferAccountID) {
			return t.Amount
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}
