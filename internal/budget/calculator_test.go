package budget_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/famfin/famfin/internal/budget"
	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/testutil"
)

func TestToBudgetAvailable(t *testing.T) {
	db := testutil.SetupTestDB(t)
	checking := db.Account("Checking", true)
	brokerage := db.Account("Brokerage", false)
	groceries := db.Category("Groceries")
	march := model.NewMonth(2026, time.March)

	// Uncategorized budget-account income feeds the pool.
	db.Income(checking, nil, day(march, 1), "1000")
	// Uncategorized budget-account expense drains it.
	db.Expense(checking, nil, day(march, 2), "50")
	// Income assigned directly to the system category feeds it too.
	db.Income(checking, db.System, day(march, 3), "200")
	// Uncategorized money entering from a tracking account is fresh.
	db.Transfer(brokerage, checking, nil, day(march, 4), "100")
	// Categorized expenses only move envelope money, not the pool.
	db.Expense(checking, groceries, day(march, 5), "75")
	// Tracking-account income never touches the pool.
	db.Income(brokerage, nil, day(march, 6), "5000")

	snap := load(t, db)
	assert.Equal(t, "1250", snap.ToBudgetAvailable(march).String())

	t.Run("allocations drain the pool cumulatively", func(t *testing.T) {
		db.Budget(groceries, march, "300")
		db.Budget(groceries, march.Next(), "100")

		snap := load(t, db)
		assert.Equal(t, "950", snap.ToBudgetAvailable(march).String())
		// Next month the future allocation counts as well.
		assert.Equal(t, "850", snap.ToBudgetAvailable(march.Next()).String())
	})
}

func TestToBudgetAvailableWithoutSystemCategory(t *testing.T) {
	// An unseeded store has no system category; the calculator returns zero
	// instead of guessing.
	db := testutil.SetupTestDB(t)
	march := model.NewMonth(2026, time.March)

	snap := load(t, db)
	snapWithout := &budget.Snapshot{
		Accounts:     snap.Accounts,
		Transactions: snap.Transactions,
	}
	assert.True(t, snapWithout.ToBudgetAvailable(march).IsZero())
}

func TestFutureBudgeted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	groceries := db.Category("Groceries")
	march := model.NewMonth(2026, time.March)

	db.Budget(groceries, march, "100")
	db.Budget(groceries, march.AddMonths(1), "200")
	db.Budget(groceries, march.AddMonths(2), "300")

	snap := load(t, db)
	assert.Equal(t, "500", snap.FutureBudgeted(march).String())
	assert.Equal(t, "300", snap.FutureBudgeted(march.AddMonths(1)).String())
	assert.True(t, snap.FutureBudgeted(march.AddMonths(2)).IsZero())
}

func TestAccountBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	checking := db.Account("Checking", true)
	savings := db.Account("Savings", true)
	march := model.NewMonth(2026, time.March)

	db.Income(checking, nil, day(march, 1), "1000")
	db.Expense(checking, nil, day(march, 5), "200")
	db.Transfer(checking, savings, nil, day(march, 10), "300")

	snap := load(t, db)
	assert.Equal(t, "500", snap.AccountBalance(checking.ID, march).String())
	assert.Equal(t, "300", snap.AccountBalance(savings.ID, march).String())
	assert.Equal(t, "800", snap.BudgetAccountBalance(march).String())
}

func TestBanner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	checking := db.Account("Checking", true)
	groceries := db.Category("Groceries")
	march := model.NewMonth(2026, time.March)

	db.Income(checking, nil, day(march, 1), "500")

	t.Run("money to budget", func(t *testing.T) {
		snap := load(t, db)
		assert.Equal(t, budget.StateMoneyToBudget, snap.Banner(march))
	})

	t.Run("future allocations absorb the surplus", func(t *testing.T) {
		db.Budget(groceries, march.Next(), "500")
		snap := load(t, db)
		assert.Equal(t, budget.StateBalanced, snap.Banner(march))
	})

	t.Run("overbudgeted", func(t *testing.T) {
		db.Budget(groceries, march, "600")
		snap := load(t, db)
		assert.Equal(t, budget.StateOverbudgeted, snap.Banner(march))
	})
}

// The engine's books always balance: what the budget accounts hold equals the
// unallocated pool plus every envelope's available balance.
func TestBudgetIdentity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	checking := db.Account("Checking", true)
	savings := db.Account("Savings", true)
	brokerage := db.Account("Brokerage", false)
	groceries := db.Category("Groceries")
	rent := db.Category("Rent")
	vacation := db.Category("Vacation")
	jan := model.NewMonth(2026, time.January)
	feb := jan.Next()

	db.Income(checking, nil, day(jan, 1), "2500")
	db.Budget(groceries, jan, "400")
	db.Budget(rent, jan, "1200")
	db.Expense(checking, groceries, day(jan, 8), "350")
	db.Expense(checking, rent, day(jan, 1), "1200")
	db.Transfer(checking, savings, nil, day(jan, 15), "300")
	db.Transfer(checking, brokerage, vacation, day(jan, 20), "150")
	db.Income(checking, nil, day(feb, 1), "2500")
	db.Budget(groceries, feb, "450")
	db.Expense(savings, groceries, day(feb, 10), "500.25")
	db.Transfer(brokerage, checking, nil, day(feb, 12), "75")

	snap := load(t, db)
	for _, month := range []model.Month{jan, feb, feb.Next()} {
		total := snap.ToBudgetAvailable(month)
		for _, cat := range snap.Categories {
			if !cat.IsSystem {
				total = total.Add(snap.Available(cat.ID, month))
			}
		}
		assert.True(t, snap.BudgetAccountBalance(month).Equal(total),
			"%s: accounts hold %s but pool+envelopes sum to %s",
			month, snap.BudgetAccountBalance(month), total)
	}
}
