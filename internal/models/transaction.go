package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
)

const (
	TransactionStatusPending    = "pending"
	TransactionStatusProcessing = "processing"
	TransactionStatusCompleted  = "completed"
	TransactionStatusCancelled  = "cancelled"
	TransactionStatusFailed     = "failed"
)

// Allowed status transitions
// Terminal statuses (completed, cancelled, failed) have no outgoing edges
var statusTransitions = map[string][]string{
	TransactionStatusPending: {
		TransactionStatusProcessing,
		TransactionStatusCompleted,
		TransactionStatusCancelled,
		TransactionStatusFailed,
	},
	TransactionStatusProcessing: {
		TransactionStatusCompleted,
		TransactionStatusCancelled,
		TransactionStatusFailed,
	},
}

func ValidTransactionType(t string) bool {
	return t == TransactionTypeDeposit || t == TransactionTypeWithdrawal
}

func ValidTransactionStatus(s string) bool {
	switch s {
	case TransactionStatusPending, TransactionStatusProcessing,
		TransactionStatusCompleted, TransactionStatusCancelled, TransactionStatusFailed:
		return true
	}
	return false
}

// Report if status is terminal: no further transition permitted out of it
func TerminalStatus(s string) bool {
	return ValidTransactionStatus(s) && len(statusTransitions[s]) == 0
}

// Report if transition from -> to is allowed by the lifecycle
func CanTransition(from string, to string) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type Transaction struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	BankAccountID   *uuid.UUID
	Type            string
	Amount          decimal.Decimal
	Status          string
	Description     string
	ReferenceNumber string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	CompletedAt     *time.Time

	// Bank account details joined for read queries, nil when the account
	// reference is null or details were not requested
	AccountName   *string
	AccountNumber *string
	BankName      *string
}

// Filter and pagination for transaction listings
type TransactionFilter struct {
	UserID *uuid.UUID
	Type   string
	Status string
	Limit  int
	Offset int
}
