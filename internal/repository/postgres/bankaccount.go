package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
)

type BankAccountRepo struct {
	DB DBTX
}

const bankAccountColumns = `id, user_id, created_at, updated_at, account_name, account_number, bank_name`

const createBankAccount = `-- name: CreateBankAccount
INSERT INTO bank_accounts (id, user_id, account_name, account_number, bank_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + bankAccountColumns

func (r *BankAccountRepo) CreateBankAccount(ctx context.Context, userID uuid.UUID, accountName string, accountNumber string, bankName string) (models.BankAccount, error) {
	rows, _ := r.DB.Query(ctx, createBankAccount, uuid.New(), userID, accountName, accountNumber, bankName)
	account, err := pgx.CollectOneRow(rows, rowToBankAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return account, apperrors.ErrBankAccountExists
			case pgerrcode.ForeignKeyViolation:
				return account, apperrors.ErrUserNotFound
			}
		}

		return account, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

const getUserBankAccount = `-- name: GetUserBankAccount
SELECT ` + bankAccountColumns + ` FROM bank_accounts
WHERE id = $1 AND user_id = $2
`

func (r *BankAccountRepo) GetUserBankAccount(ctx context.Context, accountID uuid.UUID, userID uuid.UUID) (models.BankAccount, error) {
	rows, _ := r.DB.Query(ctx, getUserBankAccount, accountID, userID)
	return collectBankAccount(rows)
}

const getBankAccount = `-- name: GetBankAccount
SELECT ` + bankAccountColumns + ` FROM bank_accounts
WHERE id = $1
`

func (r *BankAccountRepo) GetBankAccount(ctx context.Context, accountID uuid.UUID) (models.BankAccount, error) {
	rows, _ := r.DB.Query(ctx, getBankAccount, accountID)
	return collectBankAccount(rows)
}

const listBankAccounts = `-- name: ListBankAccounts
SELECT ` + bankAccountColumns + ` FROM bank_accounts
WHERE user_id = $1
ORDER BY created_at DESC
`

func (r *BankAccountRepo) ListBankAccounts(ctx context.Context, userID uuid.UUID) ([]models.BankAccount, error) {
	rows, _ := r.DB.Query(ctx, listBankAccounts, userID)
	accounts, err := pgx.CollectRows(rows, rowToBankAccount)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

const listAllBankAccounts = `-- name: ListAllBankAccounts
SELECT b.id, b.user_id, b.created_at, b.updated_at, b.account_name, b.account_number, b.bank_name, u.username
FROM bank_accounts b
JOIN users u ON u.id = b.user_id
ORDER BY b.created_at DESC
`

func (r *BankAccountRepo) ListAllBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	rows, _ := r.DB.Query(ctx, listAllBankAccounts)
	accounts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.BankAccount, error) {
		var a models.BankAccount
		err := row.Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.UpdatedAt, &a.AccountName, &a.AccountNumber, &a.BankName, &a.Username)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return accounts, nil
}

const updateBankAccount = `-- name: UpdateBankAccount
UPDATE bank_accounts
SET account_name = COALESCE($2, account_name),
    account_number = COALESCE($3, account_number),
    bank_name = COALESCE($4, bank_name),
    updated_at = now()
WHERE id = $1
RETURNING ` + bankAccountColumns

func (r *BankAccountRepo) UpdateBankAccount(ctx context.Context, accountID uuid.UUID, update models.BankAccountUpdate) (models.BankAccount, error) {
	rows, _ := r.DB.Query(ctx, updateBankAccount, accountID, update.AccountName, update.AccountNumber, update.BankName)
	account, err := pgx.CollectOneRow(rows, rowToBankAccount)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return account, apperrors.ErrBankAccountExists
		}
	}

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrBankAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

const deleteBankAccount = `-- name: DeleteBankAccount
DELETE FROM bank_accounts
WHERE id = $1
`

func (r *BankAccountRepo) DeleteBankAccount(ctx context.Context, accountID uuid.UUID) error {
	tag, err := r.DB.Exec(ctx, deleteBankAccount, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrBankAccountNotFound
	}

	return nil
}

func collectBankAccount(rows pgx.Rows) (models.BankAccount, error) {
	account, err := pgx.CollectOneRow(rows, rowToBankAccount)

	switch {
	case err == nil:
		return account, nil
	case errors.Is(err, pgx.ErrNoRows):
		return account, apperrors.ErrBankAccountNotFound
	default:
		return account, fmt.Errorf("db error: %w", err)
	}
}

func rowToBankAccount(row pgx.CollectableRow) (models.BankAccount, error) {
	var a models.BankAccount
	err := row.Scan(&a.ID, &a.UserID, &a.CreatedAt, &a.UpdatedAt, &a.AccountName, &a.AccountNumber, &a.BankName)
	return a, err
}
