package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
	"github.com/akosachev/ledgerpay/internal/repository"
)

// How many times to retry an insert on reference number collision
const referenceAttempts = 3

// Service owns the money movement rules: it is the only code path that
// mutates user balances, and every mutation runs inside one storage
// transaction with the user row locked for the balance check
type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

// Create withdrawal transaction in status pending and debit user balance.
// The check and the debit execute against a locked user row, so concurrent
// withdrawals against the same user serialize and can't both pass the
// sufficiency check
func (s *Service) CreateWithdrawal(ctx context.Context, userID uuid.UUID, bankAccountID uuid.UUID, amount decimal.Decimal, description string) (models.Transaction, error) {
	var created models.Transaction

	if !amount.IsPositive() {
		return created, apperrors.ErrAmountInvalid
	}

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.BankAccount().GetUserBankAccount(ctx, bankAccountID, userID); err != nil {
			return err
		}

		user, err := st.User().GetUserByID(ctx, userID, true)
		if err != nil {
			return err
		}

		if user.Balance.LessThan(amount) {
			return apperrors.ErrBalanceInsufficient
		}

		if _, err := st.User().AdjustBalance(ctx, userID, amount.Neg()); err != nil {
			return fmt.Errorf("debit balance: %w", err)
		}

		created, err = s.insertWithReference(ctx, st, models.Transaction{
			UserID:        userID,
			BankAccountID: &bankAccountID,
			Type:          models.TransactionTypeWithdrawal,
			Amount:        amount,
			Status:        models.TransactionStatusPending,
			Description:   description,
		})
		return err
	})

	return created, err
}

// Create deposit transaction in status pending
// Balance is credited when the deposit completes, never at creation
func (s *Service) CreateDeposit(ctx context.Context, userID uuid.UUID, bankAccountID uuid.UUID, amount decimal.Decimal, description string) (models.Transaction, error) {
	var created models.Transaction

	if !amount.IsPositive() {
		return created, apperrors.ErrAmountInvalid
	}

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := st.BankAccount().GetUserBankAccount(ctx, bankAccountID, userID); err != nil {
			return err
		}

		var err error
		created, err = s.insertWithReference(ctx, st, models.Transaction{
			UserID:        userID,
			BankAccountID: &bankAccountID,
			Type:          models.TransactionTypeDeposit,
			Amount:        amount,
			Status:        models.TransactionStatusPending,
			Description:   description,
		})
		return err
	})

	return created, err
}

// Cancel transaction on behalf of caller
// Non-admin callers may cancel their own transactions only; cancelling a
// withdrawal refunds the debited amount in the same storage transaction
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, caller *models.User) (models.Transaction, error) {
	scope := caller
	if caller.IsAdmin() {
		scope = nil
	}

	return s.transition(ctx, id, models.TransactionStatusCancelled, scope)
}

// SetStatus moves a transaction to the given status (admin operation)
// Lifecycle side effects apply: refund on cancelled/failed withdrawals,
// balance credit on completed deposits, completion timestamp on completed
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status string) (models.Transaction, error) {
	if !models.ValidTransactionStatus(status) || status == models.TransactionStatusPending {
		return models.Transaction{}, apperrors.ErrInvalidStateTransition
	}

	return s.transition(ctx, id, status, nil)
}

// Get transaction scoped to caller: non-admins can't observe others' transactions
func (s *Service) Get(ctx context.Context, id uuid.UUID, caller *models.User) (models.Transaction, error) {
	tr, err := s.storage.Transaction().GetTransaction(ctx, id, false)
	if err != nil {
		return tr, err
	}

	if !caller.IsAdmin() && tr.UserID != caller.ID {
		return models.Transaction{}, apperrors.ErrTransactionNotFound
	}

	return tr, nil
}

// List transactions for caller
// Non-admin callers are forced to their own transactions; admins may filter
// by arbitrary user or list everything
func (s *Service) List(ctx context.Context, caller *models.User, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	if !caller.IsAdmin() {
		filter.UserID = &caller.ID
	}

	return s.storage.Transaction().ListTransactions(ctx, filter)
}

// transition performs one lifecycle step with its side effects as a single
// atomic unit. scope, when set, restricts the operation to that user's rows
func (s *Service) transition(ctx context.Context, id uuid.UUID, next string, scope *models.User) (models.Transaction, error) {
	var updated models.Transaction

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		// Lock the row so concurrent transitions of one transaction serialize
		// and at most one performs the side effects
		tr, err := st.Transaction().GetTransaction(ctx, id, true)
		if err != nil {
			return err
		}

		if scope != nil && tr.UserID != scope.ID {
			return apperrors.ErrTransactionNotFound
		}

		if !models.CanTransition(tr.Status, next) {
			return fmt.Errorf("%q -> %q: %w", tr.Status, next, apperrors.ErrInvalidStateTransition)
		}

		refund := tr.Type == models.TransactionTypeWithdrawal &&
			(next == models.TransactionStatusCancelled || next == models.TransactionStatusFailed)
		credit := tr.Type == models.TransactionTypeDeposit && next == models.TransactionStatusCompleted

		if refund || credit {
			if _, err := st.User().AdjustBalance(ctx, tr.UserID, tr.Amount); err != nil {
				return fmt.Errorf("adjust balance: %w", err)
			}
		}

		var completedAt *time.Time
		if next == models.TransactionStatusCompleted {
			now := time.Now()
			completedAt = &now
		}

		updated, err = st.Transaction().UpdateStatus(ctx, id, next, completedAt)
		return err
	})

	return updated, err
}

// insertWithReference inserts the transaction with a fresh reference number,
// regenerating on the (rare) collision instead of failing the operation.
// Each attempt runs in a nested transaction (a savepoint): a unique violation
// aborts the current postgres transaction, so the insert has to be isolated
// for the retry to be possible at all
func (s *Service) insertWithReference(ctx context.Context, st repository.Storage, tr models.Transaction) (models.Transaction, error) {
	var err error

	for range referenceAttempts {
		tr.ID = uuid.New()
		tr.ReferenceNumber = newReferenceNumber()

		var created models.Transaction
		attemptErr := st.InTx(ctx, func(st repository.Storage) error {
			var err error
			created, err = st.Transaction().CreateTransaction(ctx, tr)
			return err
		})

		if errors.Is(attemptErr, apperrors.ErrDuplicateReference) {
			err = attemptErr
			continue
		}

		return created, attemptErr
	}

	return models.Transaction{}, fmt.Errorf("reference generation exhausted %d attempts: %w", referenceAttempts, err)
}
