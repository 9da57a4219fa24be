package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
)

type TransactionRepo struct {
	DB DBTX
}

const transactionColumns = `t.id, t.user_id, t.bank_account_id, t.type, t.amount, t.status, t.description,
	t.reference_number, t.created_at, t.updated_at, t.completed_at,
	b.account_name, b.account_number, b.bank_name`

const createTransaction = `-- name: CreateTransaction
INSERT INTO transactions (id, user_id, bank_account_id, type, amount, status, description, reference_number)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, user_id, bank_account_id, type, amount, status, description, reference_number, created_at, updated_at, completed_at
`

func (r *TransactionRepo) CreateTransaction(ctx context.Context, tr models.Transaction) (models.Transaction, error) {
	if tr.ID == uuid.Nil {
		tr.ID = uuid.New()
	}

	rows, _ := r.DB.Query(ctx, createTransaction,
		tr.ID, tr.UserID, tr.BankAccountID, tr.Type, tr.Amount, tr.Status, tr.Description, tr.ReferenceNumber)
	created, err := pgx.CollectOneRow(rows, func(row pgx.CollectableRow) (models.Transaction, error) {
		var t models.Transaction
		err := row.Scan(&t.ID, &t.UserID, &t.BankAccountID, &t.Type, &t.Amount, &t.Status, &t.Description,
			&t.ReferenceNumber, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt)
		return t, err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch {
			case pgErr.Code == pgerrcode.UniqueViolation:
				return created, apperrors.ErrDuplicateReference
			case pgErr.Code == pgerrcode.ForeignKeyViolation && strings.Contains(pgErr.ConstraintName, "bank_account"):
				return created, apperrors.ErrBankAccountNotFound
			case pgErr.Code == pgerrcode.ForeignKeyViolation:
				return created, apperrors.ErrUserNotFound
			}
		}

		return created, fmt.Errorf("db error: %w", err)
	}

	return created, nil
}

const getTransaction = `-- name: GetTransaction
SELECT ` + transactionColumns + `
FROM transactions t
LEFT JOIN bank_accounts b ON b.id = t.bank_account_id
WHERE t.id = $1
`

func (r *TransactionRepo) GetTransaction(ctx context.Context, id uuid.UUID, forUpdate bool) (models.Transaction, error) {
	query := getTransaction
	if forUpdate {
		// Lock the transaction row only: the joined account row must stay
		// lockable by concurrent account operations
		query += "FOR UPDATE OF t\n"
	}

	rows, _ := r.DB.Query(ctx, query, id)
	tr, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return tr, nil
	case errors.Is(err, pgx.ErrNoRows):
		return tr, apperrors.ErrTransactionNotFound
	default:
		return tr, fmt.Errorf("db error: %w", err)
	}
}

const updateTransactionStatus = `-- name: UpdateTransactionStatus
WITH updated AS (
	UPDATE transactions
	SET status = $2,
	    completed_at = COALESCE($3, completed_at),
	    updated_at = now()
	WHERE id = $1
	RETURNING *
)
SELECT ` + transactionColumns + `
FROM updated t
LEFT JOIN bank_accounts b ON b.id = t.bank_account_id
`

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, completedAt *time.Time) (models.Transaction, error) {
	rows, _ := r.DB.Query(ctx, updateTransactionStatus, id, status, completedAt)
	tr, err := pgx.CollectOneRow(rows, rowToTransaction)

	switch {
	case err == nil:
		return tr, nil
	case errors.Is(err, pgx.ErrNoRows):
		return tr, apperrors.ErrTransactionNotFound
	default:
		return tr, fmt.Errorf("db error: %w", err)
	}
}

func (r *TransactionRepo) ListTransactions(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	conditions := []string{"TRUE"}
	args := []any{}

	addCondition := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if filter.UserID != nil {
		addCondition("t.user_id = $%d", *filter.UserID)
	}
	if filter.Type != "" {
		addCondition("t.type = $%d", filter.Type)
	}
	if filter.Status != "" {
		addCondition("t.status = $%d", filter.Status)
	}

	where := strings.Join(conditions, " AND ")

	countQuery := "SELECT count(*) FROM transactions t WHERE " + where

	var total int64
	err := r.DB.QueryRow(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	listQuery := fmt.Sprintf(`
	SELECT %s
	FROM transactions t
	LEFT JOIN bank_accounts b ON b.id = t.bank_account_id
	WHERE %s
	ORDER BY t.created_at DESC
	LIMIT $%d OFFSET $%d
	`, transactionColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, _ := r.DB.Query(ctx, listQuery, args...)
	transactions, err := pgx.CollectRows(rows, rowToTransaction)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	return transactions, total, nil
}

const countActiveByBankAccount = `-- name: CountActiveByBankAccount
SELECT count(*) FROM transactions
WHERE bank_account_id = $1 AND status IN ('pending', 'processing')
`

func (r *TransactionRepo) CountActiveByBankAccount(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var count int64
	err := r.DB.QueryRow(ctx, countActiveByBankAccount, accountID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return count, nil
}

func rowToTransaction(row pgx.CollectableRow) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.UserID, &t.BankAccountID, &t.Type, &t.Amount, &t.Status, &t.Description,
		&t.ReferenceNumber, &t.CreatedAt, &t.UpdatedAt, &t.CompletedAt,
		&t.AccountName, &t.AccountNumber, &t.BankName)
	return t, err
}
