package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akosachev/ledgerpay/internal/models"
)

// Storage is the full set of repositories plus the atomic unit of work.
// InTx runs fn with a Storage bound to one database transaction: everything
// fn does commits or rolls back together.
type Storage interface {
	User() UserRepo
	BankAccount() BankAccountRepo
	Transaction() TransactionRepo
	Setting() SettingRepo

	InTx(ctx context.Context, fn func(Storage) error) error
}

// User repository interface
type UserRepo interface {
	// Create user with role models.RoleUser
	// If user with username exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, username string, passwordHash string, displayName string) (models.User, error)

	// Get user by id or username
	// If user not found must return apperrors.ErrUserNotFound
	// forUpdate locks the row for the rest of the transaction and must only
	// be used inside InTx
	GetUserByID(ctx context.Context, userID uuid.UUID, forUpdate bool) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)

	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.UserProfileUpdate) (models.User, error)

	// Add delta (may be negative) to the user balance and return the updated user
	// The caller is responsible for holding the row lock when the adjustment
	// depends on a prior balance check
	AdjustBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (models.User, error)
}

// BankAccount repository interface
type BankAccountRepo interface {
	// If (user, account number, bank name) already exists has to return
	// apperrors.ErrBankAccountExists
	CreateBankAccount(ctx context.Context, userID uuid.UUID, accountName string, accountNumber string, bankName string) (models.BankAccount, error)

	// Get account by id scoped to owner
	// If not found (or owned by someone else) must return apperrors.ErrBankAccountNotFound
	GetUserBankAccount(ctx context.Context, accountID uuid.UUID, userID uuid.UUID) (models.BankAccount, error)
	GetBankAccount(ctx context.Context, accountID uuid.UUID) (models.BankAccount, error)

	// List accounts of one user, newest first
	ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]models.BankAccount, error)

	// List every account with owner usernames, newest first (admin listings)
	ListAllBankAccounts(ctx context.Context) ([]models.BankAccount, error)

	UpdateBankAccount(ctx context.Context, accountID uuid.UUID, update models.BankAccountUpdate) (models.BankAccount, error)

	DeleteBankAccount(ctx context.Context, accountID uuid.UUID) error
}

// Transaction repository interface
type TransactionRepo interface {
	// Insert transaction row as provided
	// Unique reference collision: apperrors.ErrDuplicateReference
	// Unknown user: apperrors.ErrUserNotFound
	// Unknown bank account: apperrors.ErrBankAccountNotFound
	CreateTransaction(ctx context.Context, tr models.Transaction) (models.Transaction, error)

	// Get transaction by id with bank account details joined
	// forUpdate locks the row and must only be used inside InTx
	GetTransaction(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Transaction, error)

	// Set status (and optionally completed_at), bumping updated_at
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) (models.Transaction, error)

	// List transactions matching the filter ordered by created_at descending,
	// plus the total count ignoring limit/offset
	ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int64, error)

	// Count pending/processing transactions referencing the bank account
	CountActiveByBankAccount(ctx context.Context, accountID uuid.UUID) (int64, error)
}

// Setting repository interface
type SettingRepo interface {
	// List settings ordered by name; names narrows to the given keys, nil lists all
	ListSettings(ctx context.Context, names []string) ([]models.Setting, error)

	// If setting not found must return apperrors.ErrSettingNotFound
	GetSetting(ctx context.Context, name string) (models.Setting, error)

	UpsertSetting(ctx context.Context, name string, value string) (models.Setting, error)

	DeleteSetting(ctx context.Context, name string) error
}
