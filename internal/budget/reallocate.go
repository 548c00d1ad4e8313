package budget

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/common"
	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"
)

// Candidate is a category with money available to give back or to draw on.
type Candidate struct {
	Category  model.Category
	Available decimal.Decimal
}

// ReductionStep records one persisted budget reduction.
type ReductionStep struct {
	Category  model.Category
	Amount    decimal.Decimal
	Remaining decimal.Decimal
}

// OverbudgetedCandidates returns the budgetable categories with a positive
// available balance, descending by available. Only these can give money
// back: a category at or below zero has nothing to release.
func OverbudgetedCandidates(snap *Snapshot, month model.Month) []Candidate {
	var candidates []Candidate
	for _, cat := range snap.BudgetableCategories() {
		available := snap.Available(cat.ID, month)
		if available.IsPositive() {
			candidates = append(candidates, Candidate{Category: cat, Available: available})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Available.GreaterThan(candidates[j].Available)
	})
	return candidates
}

// ReduceBudget performs one fix-overbudgeted step for the chosen category:
// it re-reads the store, clamps the reduction to min(available, remaining
// deficit), lowers the category's budgeted amount for the month and
// persists immediately. Lowering this month's plan lowers the category's
// rolled-forward available one-for-one, and restores the same amount to the
// To Budget pool. Returns nil when there is nothing to reduce.
func ReduceBudget(ctx context.Context, store service.Storage, month model.Month, categoryID uuid.UUID) (*ReductionStep, error) {
	// Re-derive from current store state; a snapshot taken before the
	// operation began may be stale by now.
	snap, err := Load(ctx, store)
	if err != nil {
		return nil, err
	}

	deficit := snap.ToBudgetAvailable(month).Neg()
	if !deficit.IsPositive() {
		return nil, nil
	}

	category := snap.Category(categoryID)
	if category == nil {
		return nil, fmt.Errorf("category %s: %w", categoryID, common.ErrNotFound)
	}

	available := snap.Available(categoryID, month)
	if !available.IsPositive() {
		return nil, nil
	}

	amount := decimal.Min(available, deficit)
	budgeted := snap.Budgeted(categoryID, month).Sub(amount)
	if err := persistAllocation(ctx, store, categoryID, month, budgeted); err != nil {
		return nil, err
	}

	step := &ReductionStep{
		Category:  *category,
		Amount:    amount,
		Remaining: deficit.Sub(amount),
	}
	slog.Info("reduced budget",
		"category", category.Name,
		"month", month.String(),
		"amount", amount.String(),
		"remaining_deficit", step.Remaining.String())
	return step, nil
}

// FixOverbudgeted resolves a negative To Budget balance by greedily walking
// the candidates in UI order (largest available first), reducing each until
// the deficit reaches zero or no candidates remain. Every step persists
// before the next begins, so aborting midway keeps partial progress.
func FixOverbudgeted(ctx context.Context, store service.Storage, month model.Month) ([]ReductionStep, error) {
	var steps []ReductionStep
	for {
		snap, err := Load(ctx, store)
		if err != nil {
			return steps, err
		}
		if !snap.ToBudgetAvailable(month).IsNegative() {
			return steps, nil
		}

		candidates := OverbudgetedCandidates(snap, month)
		if len(candidates) == 0 {
			return steps, nil
		}

		step, err := ReduceBudget(ctx, store, month, candidates[0].Category.ID)
		if err != nil {
			return steps, err
		}
		if step == nil {
			return steps, nil
		}
		steps = append(steps, *step)
	}
}

// OverspentPlan accumulates an interactive fix-overspent selection: a set of
// overspent target categories to cover and per-source commitments to draw
// from. Amounts are clamped as they are committed, so an invalid apply is
// unreachable rather than detected afterwards.
type OverspentPlan struct {
	targets map[uuid.UUID]struct{}
	sources map[uuid.UUID]decimal.Decimal
	Month   model.Month
}

// NewOverspentPlan creates an empty plan for the month.
func NewOverspentPlan(month model.Month) *OverspentPlan {
	return &OverspentPlan{
		Month:   month,
		targets: make(map[uuid.UUID]struct{}),
		sources: make(map[uuid.UUID]decimal.Decimal),
	}
}

// OverspentCategories returns the budgetable categories whose available is
// negative, most negative first.
func OverspentCategories(snap *Snapshot, month model.Month) []Candidate {
	var overspent []Candidate
	for _, cat := range snap.BudgetableCategories() {
		available := snap.Available(cat.ID, month)
		if available.IsNegative() {
			overspent = append(overspent, Candidate{Category: cat, Available: available})
		}
	}
	sort.SliceStable(overspent, func(i, j int) bool {
		return overspent[i].Available.LessThan(overspent[j].Available)
	})
	return overspent
}

// SelectTarget adds an overspent category to the set being covered.
func (p *OverspentPlan) SelectTarget(snap *Snapshot, categoryID uuid.UUID) error {
	if snap.Category(categoryID) == nil {
		return fmt.Errorf("category %s: %w", categoryID, common.ErrNotFound)
	}
	if !snap.Available(categoryID, p.Month).IsNegative() {
		return fmt.Errorf("category %s is not overspent", categoryID)
	}
	p.targets[categoryID] = struct{}{}
	return nil
}

// TotalDeficit sums the selected targets' deficits as positive amounts.
func (p *OverspentPlan) TotalDeficit(snap *Snapshot) decimal.Decimal {
	total := decimal.Zero
	for id := range p.targets {
		available := snap.Available(id, p.Month)
		if available.IsNegative() {
			total = total.Add(available.Neg())
		}
	}
	return total
}

// Pooled sums the committed source amounts.
func (p *OverspentPlan) Pooled() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range p.sources {
		total = total.Add(amount)
	}
	return total
}

// DefaultCommitment pre-fills a source's amount: min(source available,
// total deficit of the selected targets).
func (p *OverspentPlan) DefaultCommitment(snap *Snapshot, categoryID uuid.UUID) decimal.Decimal {
	available := snap.Available(categoryID, p.Month)
	if !available.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(available, p.TotalDeficit(snap))
}

// CommitSource records the amount drawn from a source category, clamped to
// its currently available balance. Committing zero removes the source.
func (p *OverspentPlan) CommitSource(snap *Snapshot, categoryID uuid.UUID, amount decimal.Decimal) error {
	if snap.Category(categoryID) == nil {
		return fmt.Errorf("category %s: %w", categoryID, common.ErrNotFound)
	}
	available := snap.Available(categoryID, p.Month)
	if !available.IsPositive() {
		return fmt.Errorf("category %s has nothing available: %w", categoryID, common.ErrInsufficientFunds)
	}

	amount = decimal.Min(amount, available)
	if !amount.IsPositive() {
		delete(p.sources, categoryID)
		return nil
	}
	p.sources[categoryID] = amount
	return nil
}

// Ready reports whether the pooled commitments fully cover the selected
// deficits. The UI only offers the apply action once this is true; Apply
// itself distributes whatever pool exists, so partial top-ups remain
// possible.
func (p *OverspentPlan) Ready(snap *Snapshot) bool {
	if len(p.targets) == 0 {
		return false
	}
	return p.Pooled().GreaterThanOrEqual(p.TotalDeficit(snap))
}

// CoverStep records one target's share of the distributed pool.
type CoverStep struct {
	Category model.Category
	Amount   decimal.Decimal
}

// Apply executes the plan atomically: reduce every source's budgeted amount
// by its commitment, pool the released funds, then distribute to the
// selected targets most-negative-available first, fully zeroing the worst
// deficits before partially covering smaller ones. State is re-read from
// the store at the start, and all writes commit in a single transaction.
func (p *OverspentPlan) Apply(ctx context.Context, store service.Storage) ([]CoverStep, error) {
	snap, err := Load(ctx, store)
	if err != nil {
		return nil, err
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Release committed funds from the sources.
	pool := decimal.Zero
	for _, id := range sortedUUIDs(p.sources) {
		committed := decimal.Min(p.sources[id], snap.Available(id, p.Month))
		if !committed.IsPositive() {
			continue
		}
		budgeted := snap.Budgeted(id, p.Month).Sub(committed)
		if err := tx.SetAllocationAmount(ctx, id, p.Month, budgeted); err != nil {
			return nil, err
		}
		pool = pool.Add(committed)
	}

	// Distribute to targets, most negative available first.
	targets := make([]Candidate, 0, len(p.targets))
	for _, overspent := range OverspentCategories(snap, p.Month) {
		if _, ok := p.targets[overspent.Category.ID]; ok {
			targets = append(targets, overspent)
		}
	}

	var steps []CoverStep
	for _, target := range targets {
		if !pool.IsPositive() {
			break
		}
		deficit := target.Available.Neg()
		cover := decimal.Min(deficit, pool)
		budgeted := snap.Budgeted(target.Category.ID, p.Month).Add(cover)
		if err := tx.SetAllocationAmount(ctx, target.Category.ID, p.Month, budgeted); err != nil {
			return nil, err
		}
		pool = pool.Sub(cover)
		steps = append(steps, CoverStep{Category: target.Category, Amount: cover})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit overspent fix: %w", err)
	}

	slog.Info("applied overspent fix",
		"month", p.Month.String(),
		"sources", len(p.sources),
		"targets", len(steps))
	return steps, nil
}

// sortedUUIDs returns the map's keys in stable order so apply output is
// deterministic.
func sortedUUIDs(m map[uuid.UUID]decimal.Decimal) []uuid.UUID {
	keys := make([]uuid.UUID, 0, len(m))
	for id := range m {
		keys = append(keys, id)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys
}
