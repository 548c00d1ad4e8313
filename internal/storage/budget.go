package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/famfin/famfin/internal/model"
)

// GetBudgetMonths returns all budget months in chronological order.
func (s *SQLiteStorage) GetBudgetMonths(ctx context.Context) ([]model.BudgetMonth, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getBudgetMonths(ctx, s.db)
}

// GetAllocations returns every budget allocation in the store.
func (s *SQLiteStorage) GetAllocations(ctx context.Context) ([]model.BudgetAllocation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getAllocations(ctx, s.db)
}

// FindOrCreateBudgetMonth returns the BudgetMonth for the given month,
// creating the row if it does not exist yet.
func (s *SQLiteStorage) FindOrCreateBudgetMonth(ctx context.Context, month model.Month) (*model.BudgetMonth, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	return s.findOrCreateBudgetMonth(ctx, s.db, month)
}

// FindOrCreateAllocation returns the allocation for (category, month). When
// no row exists the returned handle has zero Budgeted and is not persisted:
// zero-valued allocations are never stored. SetAllocationAmount persists it.
func (s *SQLiteStorage) FindOrCreateAllocation(ctx context.Context, categoryID uuid.UUID, month model.Month) (*model.BudgetAllocation, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUUID(categoryID, "categoryID"); err != nil {
		return nil, err
	}
	if err := validateMonth(month); err != nil {
		return nil, err
	}
	return s.findOrCreateAllocation(ctx, s.db, categoryID, month)
}

// SetAllocationAmount writes the budgeted amount for (category, month).
// A zero amount deletes the allocation row.
func (s *SQLiteStorage) SetAllocationAmount(ctx context.Context, categoryID uuid.UUID, month model.Month, amount decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUUID(categoryID, "categoryID"); err != nil {
		return err
	}
	if err := validateMonth(month); err != nil {
		return err
	}
	return s.setAllocationAmount(ctx, s.db, categoryID, month, amount)
}

func (s *SQLiteStorage) getBudgetMonths(ctx context.Context, q querier) ([]model.BudgetMonth, error) {
	query := `SELECT id, month, note FROM budget_months ORDER BY month`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget months: %w", err)
	}
	defer rows.Close()

	var months []model.BudgetMonth
	for rows.Next() {
		bm, scanErr := scanBudgetMonth(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		months = append(months, *bm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget months: %w", err)
	}

	return months, nil
}

func (s *SQLiteStorage) getAllocations(ctx context.Context, q querier) ([]model.BudgetAllocation, error) {
	query := `SELECT id, budgeted, category_id, month_id FROM budget_allocations`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query allocations: %w", err)
	}
	defer rows.Close()

	var allocations []model.BudgetAllocation
	for rows.Next() {
		var (
			alloc      model.BudgetAllocation
			id         string
			budgeted   string
			categoryID string
			monthID    string
		)
		if err := rows.Scan(&id, &budgeted, &categoryID, &monthID); err != nil {
			return nil, fmt.Errorf("failed to scan allocation: %w", err)
		}

		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid allocation id %q: %w", id, err)
		}
		alloc.ID = parsed

		alloc.Budgeted, err = decimal.NewFromString(budgeted)
		if err != nil {
			return nil, fmt.Errorf("invalid budgeted amount %q: %w", budgeted, err)
		}

		category, err := uuid.Parse(categoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id %q: %w", categoryID, err)
		}
		alloc.CategoryID = category

		monthUUID, err := uuid.Parse(monthID)
		if err != nil {
			return nil, fmt.Errorf("invalid month id %q: %w", monthID, err)
		}
		alloc.MonthID = monthUUID

		allocations = append(allocations, alloc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating allocations: %w", err)
	}

	return allocations, nil
}

func (s *SQLiteStorage) findOrCreateBudgetMonth(ctx context.Context, q querier, month model.Month) (*model.BudgetMonth, error) {
	query := `SELECT id, month, note FROM budget_months WHERE month = ?`

	bm, err := scanBudgetMonth(q.QueryRowContext(ctx, query, month.Time()))
	if err == nil {
		return bm, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	created := &model.BudgetMonth{
		ID:    uuid.New(),
		Month: month,
	}

	insert := `INSERT INTO budget_months (id, month, note) VALUES (?, ?, '')`
	if _, err := q.ExecContext(ctx, insert, created.ID.String(), month.Time()); err != nil {
		return nil, fmt.Errorf("failed to create budget month %s: %w", month, err)
	}

	slog.Debug("created budget month", "month", month.String())
	return created, nil
}

func (s *SQLiteStorage) findOrCreateAllocation(ctx context.Context, q querier, categoryID uuid.UUID, month model.Month) (*model.BudgetAllocation, error) {
	bm, err := s.findOrCreateBudgetMonth(ctx, q, month)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, budgeted FROM budget_allocations
		WHERE category_id = ? AND month_id = ?`

	var (
		id       string
		budgeted string
	)
	err = q.QueryRowContext(ctx, query, categoryID.String(), bm.ID.String()).Scan(&id, &budgeted)
	if errors.Is(err, sql.ErrNoRows) {
		// Unsaved handle: persisted only once a non-zero amount is set.
		return &model.BudgetAllocation{
			ID:         uuid.New(),
			Budgeted:   decimal.Zero,
			CategoryID: categoryID,
			MonthID:    bm.ID,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query allocation: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid allocation id %q: %w", id, err)
	}
	amount, err := decimal.NewFromString(budgeted)
	if err != nil {
		return nil, fmt.Errorf("invalid budgeted amount %q: %w", budgeted, err)
	}

	return &model.BudgetAllocation{
		ID:         parsed,
		Budgeted:   amount,
		CategoryID: categoryID,
		MonthID:    bm.ID,
	}, nil
}

func (s *SQLiteStorage) setAllocationAmount(ctx context.Context, q querier, categoryID uuid.UUID, month model.Month, amount decimal.Decimal) error {
	bm, err := s.findOrCreateBudgetMonth(ctx, q, month)
	if err != nil {
		return err
	}

	if amount.IsZero() {
		// A zero allocation is equivalent to no allocation; delete the row
		// rather than keeping a no-op record.
		if _, err := q.ExecContext(ctx,
			`DELETE FROM budget_allocations WHERE category_id = ? AND month_id = ?`,
			categoryID.String(), bm.ID.String(),
		); err != nil {
			return fmt.Errorf("failed to delete allocation: %w", err)
		}
		slog.Debug("deleted allocation", "category", categoryID, "month", month.String())
		return nil
	}

	upsert := `
		INSERT INTO budget_allocations (id, budgeted, category_id, month_id)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(category_id, month_id) DO UPDATE SET budgeted = excluded.budgeted`

	if _, err := q.ExecContext(ctx, upsert,
		uuid.New().String(), amount.String(), categoryID.String(), bm.ID.String(),
	); err != nil {
		return fmt.Errorf("failed to set allocation: %w", err)
	}

	slog.Debug("set allocation", "category", categoryID, "month", month.String(), "budgeted", amount.String())
	return nil
}

func scanBudgetMonth(row rowScanner) (*model.BudgetMonth, error) {
	var (
		bm    model.BudgetMonth
		id    string
		month time.Time
	)
	if err := row.Scan(&id, &month, &bm.Note); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan budget month: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid budget month id %q: %w", id, err)
	}
	bm.ID = parsed
	bm.Month = model.MonthOf(month)

	return &bm, nil
}
