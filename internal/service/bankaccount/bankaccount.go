package bankaccount

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
	"github.com/akosachev/ledgerpay/internal/repository"
)

// Service manages linked bank accounts
// Deletion is refused while pending or processing transactions still
// reference the account; terminal transactions keep a nulled reference
type Service struct {
	storage repository.Storage
}

func NewService(storage repository.Storage) *Service {
	return &Service{storage: storage}
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, accountName string, accountNumber string, bankName string) (models.BankAccount, error) {
	return s.storage.BankAccount().CreateBankAccount(ctx, userID, accountName, accountNumber, bankName)
}

// Get account scoped to caller: non-admins see their own accounts only
func (s *Service) Get(ctx context.Context, accountID uuid.UUID, caller *models.User) (models.BankAccount, error) {
	if caller.IsAdmin() {
		return s.storage.BankAccount().GetBankAccount(ctx, accountID)
	}

	return s.storage.BankAccount().GetUserBankAccount(ctx, accountID, caller.ID)
}

// List accounts: admins get every account with owner usernames
func (s *Service) List(ctx context.Context, caller *models.User) ([]models.BankAccount, error) {
	if caller.IsAdmin() {
		return s.storage.BankAccount().ListAllBankAccounts(ctx)
	}

	return s.storage.BankAccount().ListBankAccounts(ctx, caller.ID)
}

func (s *Service) Update(ctx context.Context, accountID uuid.UUID, caller *models.User, update models.BankAccountUpdate) (models.BankAccount, error) {
	var updated models.BankAccount

	err := s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := ownedAccount(ctx, st, accountID, caller); err != nil {
			return err
		}

		var err error
		updated, err = st.BankAccount().UpdateBankAccount(ctx, accountID, update)
		return err
	})

	return updated, err
}

// Delete account unless active transactions still reference it
func (s *Service) Delete(ctx context.Context, accountID uuid.UUID, caller *models.User) error {
	return s.storage.InTx(ctx, func(st repository.Storage) error {
		if _, err := ownedAccount(ctx, st, accountID, caller); err != nil {
			return err
		}

		active, err := st.Transaction().CountActiveByBankAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("%d active transactions: %w", active, apperrors.ErrBankAccountInUse)
		}

		return st.BankAccount().DeleteBankAccount(ctx, accountID)
	})
}

func ownedAccount(ctx context.Context, st repository.Storage, accountID uuid.UUID, caller *models.User) (models.BankAccount, error) {
	if caller.IsAdmin() {
		return st.BankAccount().GetBankAccount(ctx, accountID)
	}

	return st.BankAccount().GetUserBankAccount(ctx, accountID, caller.ID)
}
