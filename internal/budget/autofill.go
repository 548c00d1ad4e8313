package budget

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"
)

// AutoFillSource selects the historical heuristic a plan is built from.
type AutoFillSource string

const (
	// SourceLastMonthBudgeted copies the previous month's allocations.
	SourceLastMonthBudgeted AutoFillSource = "last-budgeted"
	// SourceLastMonthSpent copies the previous month's net spending.
	SourceLastMonthSpent AutoFillSource = "last-spent"
	// SourceAverageBudgeted uses the 12-month average allocation.
	SourceAverageBudgeted AutoFillSource = "average-budgeted"
	// SourceAverageSpent uses the 12-month average net spending.
	SourceAverageSpent AutoFillSource = "average-spent"
)

// averageWindow is the number of months the average sources look back over.
const averageWindow = 12

// ParseAutoFillSource validates a source name from user input.
func ParseAutoFillSource(s string) (AutoFillSource, error) {
	switch AutoFillSource(s) {
	case SourceLastMonthBudgeted, SourceLastMonthSpent, SourceAverageBudgeted, SourceAverageSpent:
		return AutoFillSource(s), nil
	default:
		return "", fmt.Errorf("unknown auto-fill source %q", s)
	}
}

// AutoFillEntry is one category's suggested allocation.
type AutoFillEntry struct {
	Category model.Category
	Amount   decimal.Decimal
}

// AutoFillPlan is a proposed set of allocation changes for one month.
type AutoFillPlan struct {
	Source  AutoFillSource
	Entries []AutoFillEntry
	Month   model.Month
}

// BuildAutoFillPlan proposes an allocation per budgetable category using the
// chosen heuristic. Categories whose suggestion is exactly zero are left
// out; without overwrite, categories already budgeted this month are too.
func BuildAutoFillPlan(snap *Snapshot, month model.Month, source AutoFillSource, overwrite bool) *AutoFillPlan {
	plan := &AutoFillPlan{Month: month, Source: source}

	for _, cat := range snap.BudgetableCategories() {
		if !overwrite && !snap.Budgeted(cat.ID, month).IsZero() {
			continue
		}

		var amount decimal.Decimal
		switch source {
		case SourceLastMonthBudgeted:
			amount = snap.Budgeted(cat.ID, month.AddMonths(-1))
		case SourceLastMonthSpent:
			amount = snap.Activity(cat.ID, month.AddMonths(-1)).Neg()
		case SourceAverageBudgeted:
			amount = snap.AverageBudgeted(cat.ID, month, averageWindow)
		case SourceAverageSpent:
			amount = snap.AverageSpending(cat.ID, month, averageWindow)
		}

		if amount.IsZero() {
			continue
		}

		plan.Entries = append(plan.Entries, AutoFillEntry{Category: cat, Amount: amount})
	}

	return plan
}

// Total returns the sum of the plan's suggested amounts.
func (p *AutoFillPlan) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Entries {
		total = total.Add(e.Amount)
	}
	return total
}

// ApplyAutoFillPlan persists the plan one category at a time: each entry
// find-or-creates the month and allocation records and commits immediately,
// so an interrupted apply keeps the categories already written. The
// progress callback, if set, is invoked after each persisted entry.
func ApplyAutoFillPlan(ctx context.Context, store service.Storage, plan *AutoFillPlan, progress func(done, total int)) error {
	if len(plan.Entries) == 0 {
		return nil
	}

	if _, err := store.FindOrCreateBudgetMonth(ctx, plan.Month); err != nil {
		return fmt.Errorf("failed to prepare budget month %s: %w", plan.Month, err)
	}

	for i, entry := range plan.Entries {
		if err := persistAllocation(ctx, store, entry.Category.ID, plan.Month, entry.Amount); err != nil {
			return fmt.Errorf("failed to allocate %s to %q: %w", entry.Amount, entry.Category.Name, err)
		}
		if progress != nil {
			progress(i+1, len(plan.Entries))
		}
	}

	slog.Info("applied auto-fill plan",
		"month", plan.Month.String(),
		"source", string(plan.Source),
		"categories", len(plan.Entries),
		"total", plan.Total().String())
	return nil
}
