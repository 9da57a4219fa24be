package models

import (
	"time"

	"github.com/google/uuid"
)

type BankAccount struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
	AccountName   string
	AccountNumber string
	BankName      string

	// Owner username, filled by admin listings only
	Username string
}

// Partial update with explicit optional fields
// Nil field means "leave as is"
type BankAccountUpdate struct {
	AccountName   *string
	AccountNumber *string
	BankName      *string
}

func (u BankAccountUpdate) IsZero() bool {
	return u.AccountName == nil && u.AccountNumber == nil && u.BankName == nil
}
