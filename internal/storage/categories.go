package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"
)

// CreateCategory creates a new category. Subcategories must name an existing
// header as parent; headers cannot have a parent.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, params service.CategoryParams) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(params.Name, "name"); err != nil {
		return nil, err
	}
	return s.createCategory(ctx, s.db, params)
}

// GetCategories returns all categories in display order (headers by sort
// order, then their children).
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getCategories(ctx, s.db)
}

// GetCategoryByName returns a category by its name, or nil if none exists.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	return s.getCategoryByName(ctx, s.db, name)
}

// GetCategoryByID returns a category by ID, or nil if none exists.
func (s *SQLiteStorage) GetCategoryByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateUUID(id, "id"); err != nil {
		return nil, err
	}
	return s.getCategoryByID(ctx, s.db, id)
}

// HideCategory marks a category hidden. Hidden categories keep their history
// but stop appearing in plans.
func (s *SQLiteStorage) HideCategory(ctx context.Context, id uuid.UUID) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUUID(id, "id"); err != nil {
		return err
	}
	return s.hideCategory(ctx, s.db, id)
}

// EnsureSystemCategory seeds the "To Budget" singleton on first run.
func (s *SQLiteStorage) EnsureSystemCategory(ctx context.Context) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.ensureSystemCategory(ctx, s.db)
}

func (s *SQLiteStorage) createCategory(ctx context.Context, q querier, params service.CategoryParams) (*model.Category, error) {
	if params.IsHeader && params.ParentID != nil {
		return nil, fmt.Errorf("header category cannot have a parent")
	}

	category := &model.Category{
		ID:        uuid.New(),
		Name:      params.Name,
		Emoji:     params.Emoji,
		IsHeader:  params.IsHeader,
		ParentID:  params.ParentID,
		SortOrder: params.SortOrder,
		CreatedAt: time.Now().UTC(),
	}

	query := `
		INSERT INTO categories (id, name, emoji, is_header, is_system, is_hidden, parent_id, sort_order, created_at)
		VALUES (?, ?, ?, ?, 0, 0, ?, ?, ?)`

	if _, err := q.ExecContext(ctx, query,
		category.ID.String(), category.Name, category.Emoji, category.IsHeader,
		uuidPtrValue(category.ParentID), category.SortOrder, category.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	slog.Info("created category", "name", params.Name, "header", params.IsHeader)
	return category, nil
}

func (s *SQLiteStorage) getCategories(ctx context.Context, q querier) ([]model.Category, error) {
	query := `
		SELECT id, name, emoji, is_header, is_system, is_hidden, parent_id, sort_order, created_at
		FROM categories
		ORDER BY is_system DESC, sort_order, name`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, *cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	return categories, nil
}

func (s *SQLiteStorage) getCategoryByName(ctx context.Context, q querier, name string) (*model.Category, error) {
	query := `
		SELECT id, name, emoji, is_header, is_system, is_hidden, parent_id, sort_order, created_at
		FROM categories
		WHERE name = ?`

	cat, err := scanCategory(q.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *SQLiteStorage) getCategoryByID(ctx context.Context, q querier, id uuid.UUID) (*model.Category, error) {
	query := `
		SELECT id, name, emoji, is_header, is_system, is_hidden, parent_id, sort_order, created_at
		FROM categories
		WHERE id = ?`

	cat, err := scanCategory(q.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func (s *SQLiteStorage) hideCategory(ctx context.Context, q querier, id uuid.UUID) error {
	result, err := q.ExecContext(ctx, `UPDATE categories SET is_hidden = 1 WHERE id = ? AND is_system = 0`, id.String())
	if err != nil {
		return fmt.Errorf("failed to hide category: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check hide result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %s not found or is the system category", id)
	}
	return nil
}

func (s *SQLiteStorage) ensureSystemCategory(ctx context.Context, q querier) (*model.Category, error) {
	query := `
		SELECT id, name, emoji, is_header, is_system, is_hidden, parent_id, sort_order, created_at
		FROM categories
		WHERE is_system = 1`

	existing, err := scanCategory(q.QueryRowContext(ctx, query))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	category := &model.Category{
		ID:        uuid.New(),
		Name:      model.SystemCategoryName,
		Emoji:     "💰",
		IsSystem:  true,
		CreatedAt: time.Now().UTC(),
	}

	insert := `
		INSERT INTO categories (id, name, emoji, is_header, is_system, is_hidden, parent_id, sort_order, created_at)
		VALUES (?, ?, ?, 0, 1, 0, NULL, 0, ?)`

	if _, err := q.ExecContext(ctx, insert,
		category.ID.String(), category.Name, category.Emoji, category.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to seed system category: %w", err)
	}

	slog.Info("seeded system category", "name", category.Name)
	return category, nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		cat      model.Category
		id       string
		parentID sql.NullString
	)
	if err := row.Scan(&id, &cat.Name, &cat.Emoji, &cat.IsHeader, &cat.IsSystem,
		&cat.IsHidden, &parentID, &cat.SortOrder, &cat.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid category id %q: %w", id, err)
	}
	cat.ID = parsed

	if parentID.Valid {
		parent, parseErr := uuid.Parse(parentID.String)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid parent id %q: %w", parentID.String, parseErr)
		}
		cat.ParentID = &parent
	}

	return &cat, nil
}

func uuidPtrValue(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}
