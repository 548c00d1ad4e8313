package budget_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/famfin/famfin/internal/budget"
	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/testutil"
)

func load(t *testing.T, db *testutil.TestDB) *budget.Snapshot {
	t.Helper()
	snap, err := budget.Load(context.Background(), db.Storage)
	require.NoError(t, err)
	return snap
}

func day(month model.Month, d int) time.Time {
	return month.Time().AddDate(0, 0, d-1)
}

func TestBudgeted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	groceries := db.Category("Groceries")
	march := model.NewMonth(2026, time.March)

	db.Budget(groceries, march, "300")

	snap := load(t, db)
	assert.Equal(t, "300", snap.Budgeted(groceries.ID, march).String())
	assert.True(t, snap.Budgeted(groceries.ID, march.Next()).IsZero(),
		"month without an allocation reads as zero")
}

func TestActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	checking := db.Account("Checking", true)
	brokerage := db.Account("Brokerage", false)
	groceries := db.Category("Groceries")
	march := model.NewMonth(2026, time.March)

	db.Expense(checking, groceries, day(march, 5), "40")
	db.Expense(checking, groceries, day(march, 20), "25")
	db.Income(checking, groceries, day(march, 10), "10")
	// Different month, must not count.
	db.Expense(checking, groceries, day(march.Next(), 1), "99")
	// Uncategorized, must not count.
	db.Expense(checking, nil, day(march, 6), "7")

	snap := load(t, db)
	assert.Equal(t, "-55", snap.Activity(groceries.ID, march).String())

	t.Run("boundary-crossing transfers carry the category", func(t *testing.T) {
		vacation := db.Category("Vacation")
		db.Transfer(checking, brokerage, vacation, day(march, 12), "100")
		db.Transfer(brokerage, checking, vacation, day(march, 14), "30")
		// Intra-budget transfers never affect envelopes, categorized or not.
		savings := db.Account("Savings", true)
		db.Transfer(checking, savings, vacation, day(march, 15), "500")

		snap := load(t, db)
		assert.Equal(t, "-70", snap.Activity(vacation.ID, march).String())
	})
}

func TestAvailableRollsForward(t *testing.T) {
	db := testutil.SetupTestDB(t)
	checking := db.Account("Checking", true)
	groceries := db.Category("Groceries")
	jan := model.NewMonth(2026, time.January)
	feb := jan.Next()

	// Budget 100 and spend 40 in January; spend 10 more in February with no
	// new allocation.
	db.Budget(groceries, jan, "100")
	db.Expense(checking, groceries, day(jan, 10), "40")
	db.Expense(checking, groceries, day(feb, 3), "10")

	snap := load(t, db)
	assert.Equal(t, "60", snap.Available(groceries.ID, jan).String())
	assert.Equal(t, "50", snap.Available(groceries.ID, feb).String())

	t.Run("overspending rolls a negative balance", func(t *testing.T) {
		db.Expense(checking, groceries, day(feb, 20), "75")
		snap := load(t, db)
		assert.Equal(t, "-25", snap.Available(groceries.ID, feb).String())
		assert.Equal(t, "-25", snap.Available(groceries.ID, feb.Next()).String())
	})
}

func TestAverages(t *testing.T) {
	db := testutil.SetupTestDB(t)
	checking := db.Account("Checking", true)
	groceries := db.Category("Groceries")
	april := model.NewMonth(2026, time.April)

	// Two of the three preceding months have data; the empty month
	// contributes zero and still counts toward the divisor.
	db.Budget(groceries, april.AddMonths(-1), "90")
	db.Budget(groceries, april.AddMonths(-3), "60")
	db.Expense(checking, groceries, day(april.AddMonths(-1), 5), "30")
	db.Expense(checking, groceries, day(april.AddMonths(-2), 5), "60")

	snap := load(t, db)
	assert.Equal(t, "50", snap.AverageBudgeted(groceries.ID, april, 3).String())
	assert.Equal(t, "30", snap.AverageSpending(groceries.ID, april, 3).String())

	t.Run("zero window", func(t *testing.T) {
		assert.True(t, snap.AverageBudgeted(groceries.ID, april, 0).IsZero())
		assert.True(t, snap.AverageSpending(groceries.ID, april, -1).IsZero())
	})

	t.Run("current month is excluded", func(t *testing.T) {
		db.Budget(groceries, april, "999")
		snap := load(t, db)
		assert.Equal(t, "50", snap.AverageBudgeted(groceries.ID, april, 3).String())
	})
}
