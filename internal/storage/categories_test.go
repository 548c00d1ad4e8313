package storage

import (
	"context"
	"testing"

	"github.com/famfin/famfin/internal/model"
	"github.com/famfin/famfin/internal/service"
)

func categoryParams(name string) service.CategoryParams {
	return service.CategoryParams{Name: name}
}

func TestCreateCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	header, err := store.CreateCategory(ctx, service.CategoryParams{Name: "Monthly Bills", IsHeader: true})
	if err != nil {
		t.Fatalf("Failed to create header: %v", err)
	}

	child, err := store.CreateCategory(ctx, service.CategoryParams{Name: "Rent", ParentID: &header.ID})
	if err != nil {
		t.Fatalf("Failed to create child category: %v", err)
	}
	if child.ParentID == nil || *child.ParentID != header.ID {
		t.Error("child category lost its parent")
	}

	if _, err := store.CreateCategory(ctx, service.CategoryParams{
		Name: "Broken", IsHeader: true, ParentID: &header.ID,
	}); err == nil {
		t.Error("header with a parent accepted")
	}
}

func TestEnsureSystemCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	first, err := store.EnsureSystemCategory(ctx)
	if err != nil {
		t.Fatalf("first EnsureSystemCategory failed: %v", err)
	}
	if first.Name != model.SystemCategoryName {
		t.Errorf("system category name = %q, want %q", first.Name, model.SystemCategoryName)
	}
	if !first.IsSystem {
		t.Error("system category not flagged as system")
	}

	second, err := store.EnsureSystemCategory(ctx)
	if err != nil {
		t.Fatalf("second EnsureSystemCategory failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("repeated calls created a second system category: %s then %s", first.ID, second.ID)
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	systemCount := 0
	for _, cat := range categories {
		if cat.IsSystem {
			systemCount++
		}
	}
	if systemCount != 1 {
		t.Errorf("store holds %d system categories, want exactly 1", systemCount)
	}
}

func TestGetCategoriesOrder(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateCategory(ctx, categoryParams("Zebra")); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if _, err := store.EnsureSystemCategory(ctx); err != nil {
		t.Fatalf("Failed to seed system category: %v", err)
	}
	if _, err := store.CreateCategory(ctx, categoryParams("Apple")); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	categories, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("got %d categories, want 3", len(categories))
	}
	if !categories[0].IsSystem {
		t.Error("system category not listed first")
	}
	if categories[1].Name != "Apple" || categories[2].Name != "Zebra" {
		t.Errorf("categories not sorted by name: %s, %s", categories[1].Name, categories[2].Name)
	}
}

func TestHideCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat, err := store.CreateCategory(ctx, categoryParams("Dining"))
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	if err := store.HideCategory(ctx, cat.ID); err != nil {
		t.Fatalf("HideCategory failed: %v", err)
	}

	hidden, err := store.GetCategoryByID(ctx, cat.ID)
	if err != nil {
		t.Fatalf("GetCategoryByID failed: %v", err)
	}
	if hidden == nil || !hidden.IsHidden {
		t.Error("category not marked hidden")
	}

	system, err := store.EnsureSystemCategory(ctx)
	if err != nil {
		t.Fatalf("Failed to seed system category: %v", err)
	}
	if err := store.HideCategory(ctx, system.ID); err == nil {
		t.Error("hiding the system category succeeded")
	}
}

func TestGetCategoryByName(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	if _, err := store.CreateCategory(ctx, categoryParams("Groceries")); err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}

	found, err := store.GetCategoryByName(ctx, "Groceries")
	if err != nil {
		t.Fatalf("GetCategoryByName failed: %v", err)
	}
	if found == nil {
		t.Fatal("existing category not found")
	}

	missing, err := store.GetCategoryByName(ctx, "Nonexistent")
	if err != nil {
		t.Fatalf("GetCategoryByName failed for missing category: %v", err)
	}
	if missing != nil {
		t.Errorf("missing category returned %+v", missing)
	}
}
