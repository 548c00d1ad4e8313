// Package budget implements the envelope-budgeting engine: per-category
// balance aggregation, the To Budget calculator, the auto-fill planner, and
// the deficit reallocation algorithms.
package budget

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/common"
	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"
)

// Ledger is the read side of the ledger store the engine consumes.
type Ledger interface {
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetTransactions(ctx context.Context) ([]model.Transaction, error)
	GetBudgetMonths(ctx context.Context) ([]model.BudgetMonth, error)
	GetAllocations(ctx context.Context) ([]model.BudgetAllocation, error)
}

// AllocationKey identifies one allocation by category and normalized month.
// Identity is stable across reloads, unlike record IDs held by a UI layer.
type AllocationKey struct {
	CategoryID uuid.UUID
	Month      model.Month
}

// Snapshot is a point-in-time copy of the ledger with lookup indexes. All
// aggregation queries are pure functions on a Snapshot; any cached result
// is provisional and callers rebuild the snapshot after every mutation.
type Snapshot struct {
	Accounts     []model.Account
	Categories   []model.Category
	Transactions []model.Transaction
	Months       []model.BudgetMonth
	Allocations  []model.BudgetAllocation

	accountsByID   map[uuid.UUID]*model.Account
	categoriesByID map[uuid.UUID]*model.Category
	monthsByID     map[uuid.UUID]*model.BudgetMonth
	allocationsBy  map[AllocationKey]*model.BudgetAllocation
	system         *model.Category
}

// Load fetches the full ledger and builds a snapshot.
func Load(ctx context.Context, ledger Ledger) (*Snapshot, error) {
	accounts, err := ledger.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	categories, err := ledger.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	transactions, err := ledger.GetTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	months, err := ledger.GetBudgetMonths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget months: %w", err)
	}
	allocations, err := ledger.GetAllocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load allocations: %w", err)
	}

	s := &Snapshot{
		Accounts:       accounts,
		Categories:     categories,
		Transactions:   transactions,
		Months:         months,
		Allocations:    allocations,
		accountsByID:   make(map[uuid.UUID]*model.Account, len(accounts)),
		categoriesByID: make(map[uuid.UUID]*model.Category, len(categories)),
		monthsByID:     make(map[uuid.UUID]*model.BudgetMonth, len(months)),
		allocationsBy:  make(map[AllocationKey]*model.BudgetAllocation, len(allocations)),
	}

	for i := range accounts {
		s.accountsByID[accounts[i].ID] = &accounts[i]
	}
	for i := range categories {
		s.categoriesByID[categories[i].ID] = &categories[i]
		if categories[i].IsSystem {
			s.system = &categories[i]
		}
	}
	for i := range months {
		s.monthsByID[months[i].ID] = &months[i]
	}
	for i := range allocations {
		a := &allocations[i]
		bm, ok := s.monthsByID[a.MonthID]
		if !ok {
			return nil, fmt.Errorf("allocation %s references unknown budget month %s", a.ID, a.MonthID)
		}
		s.allocationsBy[AllocationKey{CategoryID: a.CategoryID, Month: bm.Month}] = a
	}

	return s, nil
}

// SystemCategory returns the "To Budget" singleton, or nil when the store
// has not been seeded.
func (s *Snapshot) SystemCategory() *model.Category {
	return s.system
}

// Category returns the category with the given ID, or nil.
func (s *Snapshot) Category(id uuid.UUID) *model.Category {
	return s.categoriesByID[id]
}

// Account returns the account with the given ID, or nil.
func (s *Snapshot) Account(id uuid.UUID) *model.Account {
	return s.accountsByID[id]
}

// BudgetableCategories returns the categories that can hold allocations, in
// display order.
func (s *Snapshot) BudgetableCategories() []model.Category {
	var out []model.Category
	for i := range s.Categories {
		if s.Categories[i].Budgetable() {
			out = append(out, s.Categories[i])
		}
	}
	return out
}

// allocationMonth resolves an allocation's normalized month.
func (s *Snapshot) allocationMonth(a *model.BudgetAllocation) (model.Month, bool) {
	bm, ok := s.monthsByID[a.MonthID]
	if !ok {
		return model.Month{}, false
	}
	return bm.Month, true
}

// isBudgetAccount reports whether the ID names a budget account.
func (s *Snapshot) isBudgetAccount(id uuid.UUID) bool {
	account, ok := s.accountsByID[id]
	return ok && account.IsBudget
}

// isTrackingAccount reports whether the ID names a tracking account.
func (s *Snapshot) isTrackingAccount(id uuid.UUID) bool {
	account, ok := s.accountsByID[id]
	return ok && !account.IsBudget
}

// persistAllocation writes one allocation, retrying on SQLite lock
// contention from a concurrent invocation.
func persistAllocation(ctx context.Context, store service.Storage, categoryID uuid.UUID, month model.Month, amount decimal.Decimal) error {
	return common.WithRetry(ctx, func() error {
		return store.SetAllocationAmount(ctx, categoryID, month, amount)
	}, common.RetryOptions{})
}
