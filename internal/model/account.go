package model

import (
	"time"

	"github.com/google/uuid"
)

// Account is a real-world account money moves through. Budget accounts hold
// envelope money; tracking accounts (mortgage, investments) sit outside the
// budgeting system and only interact with it through transfers.
type Account struct {
	CreatedAt time.Time
	Name      string
	ID        uuid.UUID
	SortOrder int
	IsBudget  bool
}
