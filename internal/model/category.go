package model

import (
	"time"

	"github.com/google/uuid"
)

// SystemCategoryName is the name of the singleton "To Budget" category. It
// is seeded on first run and represents money not yet assigned to any
// envelope.
const SystemCategoryName = "To Budget"

// Category is a spending envelope. Header categories are grouping nodes and
// cannot hold money; the single system category is the unallocated pool.
type Category struct {
	CreatedAt time.Time
	ParentID  *uuid.UUID
	Name      string
	Emoji     string
	ID        uuid.UUID
	SortOrder int
	IsHeader  bool
	IsSystem  bool
	IsHidden  bool
}

// Budgetable reports whether the category can receive allocations: not a
// header, not the system category, not hidden.
func (c *Category) Budgetable() bool {
	return !c.IsHeader && !c.IsSystem && !c.IsHidden
}
