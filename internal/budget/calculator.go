package budget

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
)

// BannerState summarizes the month's To Budget position for display.
type BannerState string

const (
	// StateOverbudgeted means more has been planned, cumulatively, than the
	// budget accounts have ever held unallocated.
	StateOverbudgeted BannerState = "overbudgeted"
	// StateMoneyToBudget means unallocated money remains after accounting
	// for amounts already committed to future months.
	StateMoneyToBudget BannerState = "money-to-budget"
	// StateBalanced means every unit of money is assigned.
	StateBalanced BannerState = "balanced"
)

// ToBudgetAvailable computes the unallocated pool through the given month:
//
//	direct activity of the system category
//	+ uncategorized budget-account income/expense (transfers excluded)
//	+ uncategorized incoming tracking→budget transfers
//	- every allocation ever budgeted up to and including the month
//
// All date comparisons are strictly before the first instant of the
// following month. Returns zero when the system category is missing; that
// is a data-integrity precondition the host application re-seeds, not a
// condition the calculator repairs.
func (s *Snapshot) ToBudgetAvailable(through model.Month) decimal.Decimal {
	if s.system == nil {
		return decimal.Zero
	}

	end := through.End()
	total := decimal.Zero

	for i := range s.Transactions {
		t := &s.Transactions[i]
		if !t.Date.UTC().Before(end) {
			continue
		}

		if t.CategoryID != nil {
			if *t.CategoryID == s.system.ID {
				total = total.Add(s.signedAmount(t))
			}
			continue
		}

		switch t.Type {
		case model.TransactionTypeIncome:
			if s.isBudgetAccount(t.AccountID) {
				total = total.Add(t.Amount)
			}
		case model.TransactionTypeExpense:
			if s.isBudgetAccount(t.AccountID) {
				total = total.Sub(t.Amount)
			}
		case model.TransactionTypeTransfer:
			// Money entering the budget system from a tracking account is
			// fresh unallocated money.
			if t.TransferAccountID != nil &&
				s.isTrackingAccount(t.AccountID) && s.isBudgetAccount(*t.TransferAccountID) {
				total = total.Add(t.Amount)
			}
		}
	}

	return total.Sub(s.cumulativeBudgeted(through))
}

// cumulativeBudgeted sums every allocation across all categories and all
// months up to and including through: the total ever committed out of the
// unallocated pool.
func (s *Snapshot) cumulativeBudgeted(through model.Month) decimal.Decimal {
	total := decimal.Zero
	for i := range s.Allocations {
		a := &s.Allocations[i]
		m, ok := s.allocationMonth(a)
		if !ok || m.After(through) {
			continue
		}
		total = total.Add(a.Budgeted)
	}
	return total
}

// FutureBudgeted sums the allocations for months strictly later than after.
// Unallocated money covered by this sum is already earmarked and should not
// be surfaced as "left to budget".
func (s *Snapshot) FutureBudgeted(after model.Month) decimal.Decimal {
	total := decimal.Zero
	for i := range s.Allocations {
		a := &s.Allocations[i]
		m, ok := s.allocationMonth(a)
		if !ok || !m.After(after) {
			continue
		}
		total = total.Add(a.Budgeted)
	}
	return total
}

// AccountBalance returns the account's signed balance through the end of the
// month: income adds, expense subtracts, outgoing transfers subtract,
// incoming transfers add.
func (s *Snapshot) AccountBalance(accountID uuid.UUID, through model.Month) decimal.Decimal {
	end := through.End()
	total := decimal.Zero

	for i := range s.Transactions {
		t := &s.Transactions[i]
		if !t.Date.UTC().Before(end) {
			continue
		}

		if t.AccountID == accountID {
			switch t.Type {
			case model.TransactionTypeIncome:
				total = total.Add(t.Amount)
			case model.TransactionTypeExpense, model.TransactionTypeTransfer:
				total = total.Sub(t.Amount)
			}
		}
		if t.Type == model.TransactionTypeTransfer &&
			t.TransferAccountID != nil && *t.TransferAccountID == accountID {
			total = total.Add(t.Amount)
		}
	}

	return total
}

// BudgetAccountBalance sums the balances of all budget accounts through the
// month. The engine maintains the identity:
//
//	BudgetAccountBalance(M) = ToBudgetAvailable(M) + Σ available(category, M)
func (s *Snapshot) BudgetAccountBalance(through model.Month) decimal.Decimal {
	total := decimal.Zero
	for i := range s.Accounts {
		if s.Accounts[i].IsBudget {
			total = total.Add(s.AccountBalance(s.Accounts[i].ID, through))
		}
	}
	return total
}

// Banner derives the month's display state from the To Budget balance.
func (s *Snapshot) Banner(month model.Month) BannerState {
	available := s.ToBudgetAvailable(month)
	if available.IsNegative() {
		return StateOverbudgeted
	}
	if available.Sub(s.FutureBudgeted(month)).IsPositive() {
		return StateMoneyToBudget
	}
	return StateBalanced
}
