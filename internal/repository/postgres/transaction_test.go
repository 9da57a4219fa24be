package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
	"github.com/akosachev/ledgerpay/internal/repository"
	"github.com/akosachev/ledgerpay/internal/testutil"
)

func TestTransactionRepo(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.WithTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	// Fixture helpers, reused by most subtests below
	createUser := func(t *testing.T, storage repository.Storage, username string) models.User {
		t.Helper()
		user, err := storage.User().CreateUser(t.Context(), username, "hashedpassword", username)
		require.NoError(t, err)
		return user
	}
	createAccount := func(t *testing.T, storage repository.Storage, userID uuid.UUID) models.BankAccount {
		t.Helper()
		account, err := storage.BankAccount().CreateBankAccount(t.Context(), userID, "Main", "40817810000000000001", "Alpha Bank")
		require.NoError(t, err)
		return account
	}
	newTransaction := func(userID uuid.UUID, accountID *uuid.UUID, reference string) models.Transaction {
		return models.Transaction{
			UserID:          userID,
			BankAccountID:   accountID,
			Type:            models.TransactionTypeWithdrawal,
			Amount:          decimal.NewFromInt(100),
			Status:          models.TransactionStatusPending,
			Description:     "test withdrawal",
			ReferenceNumber: reference,
		}
	}

	t.Run("CreateTransaction", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user := createUser(t, storage, "testuser")
			account := createAccount(t, storage, user.ID)

			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					created, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-1"))

					require.NoError(t, err)
					require.NotEqual(t, uuid.Nil, created.ID)
					require.Equal(t, user.ID, created.UserID)
					require.Equal(t, models.TransactionStatusPending, created.Status)
					require.True(t, created.Amount.Equal(decimal.NewFromInt(100)))
					require.Nil(t, created.CompletedAt)
				})
			})

			t.Run("duplicate reference", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-1"))
					require.NoError(t, err)

					_, err = storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-1"))

					require.ErrorIs(t, err, apperrors.ErrDuplicateReference)
				})
			})

			t.Run("unknown bank account", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					missing := uuid.New()
					_, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &missing, "TXN-2"))

					require.ErrorIs(t, err, apperrors.ErrBankAccountNotFound)
				})
			})

			t.Run("unknown user", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(uuid.New(), &account.ID, "TXN-3"))

					require.ErrorIs(t, err, apperrors.ErrUserNotFound)
				})
			})
		})
	})

	t.Run("GetTransaction", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user := createUser(t, storage, "testuser")
			account := createAccount(t, storage, user.ID)

			created, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-1"))
			require.NoError(t, err)

			t.Run("with account details joined", func(t *testing.T) {
				got, err := storage.Transaction().GetTransaction(t.Context(), created.ID, false)

				require.NoError(t, err)
				require.Equal(t, created.ID, got.ID)
				require.NotNil(t, got.AccountName)
				require.Equal(t, "Main", *got.AccountName)
				require.NotNil(t, got.AccountNumber)
				require.Equal(t, "40817810000000000001", *got.AccountNumber)
			})

			t.Run("for update", func(t *testing.T) {
				got, err := storage.Transaction().GetTransaction(t.Context(), created.ID, true)

				require.NoError(t, err)
				require.Equal(t, created.ID, got.ID)
			})

			t.Run("not found", func(t *testing.T) {
				_, err := storage.Transaction().GetTransaction(t.Context(), uuid.New(), false)

				require.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
			})
		})
	})

	t.Run("DeletedAccountKeepsTransaction", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user := createUser(t, storage, "testuser")
			account := createAccount(t, storage, user.ID)

			created, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-1"))
			require.NoError(t, err)

			_, err = storage.Transaction().UpdateStatus(t.Context(), created.ID, models.TransactionStatusCancelled, nil)
			require.NoError(t, err)

			err = storage.BankAccount().DeleteBankAccount(t.Context(), account.ID)
			require.NoError(t, err)

			got, err := storage.Transaction().GetTransaction(t.Context(), created.ID, false)

			require.NoError(t, err, "transaction must survive account deletion")
			require.Nil(t, got.BankAccountID)
			require.Nil(t, got.AccountName)
		})
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user := createUser(t, storage, "testuser")
			account := createAccount(t, storage, user.ID)

			created, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-1"))
			require.NoError(t, err)

			t.Run("without completed at", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					updated, err := storage.Transaction().UpdateStatus(t.Context(), created.ID, models.TransactionStatusProcessing, nil)

					require.NoError(t, err)
					require.Equal(t, models.TransactionStatusProcessing, updated.Status)
					require.Nil(t, updated.CompletedAt)
					require.NotNil(t, updated.AccountName, "account details should stay joined")
				})
			})

			t.Run("with completed at", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					now := time.Now().UTC()
					updated, err := storage.Transaction().UpdateStatus(t.Context(), created.ID, models.TransactionStatusCompleted, &now)

					require.NoError(t, err)
					require.Equal(t, models.TransactionStatusCompleted, updated.Status)
					require.NotNil(t, updated.CompletedAt)
					require.WithinDuration(t, now, *updated.CompletedAt, time.Second)
				})
			})

			t.Run("not found", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.Transaction().UpdateStatus(t.Context(), uuid.New(), models.TransactionStatusFailed, nil)

					require.ErrorIs(t, err, apperrors.ErrTransactionNotFound)
				})
			})
		})
	})

	t.Run("ListTransactions", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			alice := createUser(t, storage, "alice")
			bob := createUser(t, storage, "bob")
			account := createAccount(t, storage, alice.ID)

			// alice: 3 withdrawals (one completed) and 1 deposit, bob: 1 withdrawal
			for i, tr := range []models.Transaction{
				newTransaction(alice.ID, &account.ID, "TXN-1"),
				newTransaction(alice.ID, &account.ID, "TXN-2"),
				newTransaction(alice.ID, &account.ID, "TXN-3"),
				{UserID: alice.ID, Type: models.TransactionTypeDeposit, Amount: decimal.NewFromInt(50), Status: models.TransactionStatusPending, ReferenceNumber: "TXN-4"},
				newTransaction(bob.ID, nil, "TXN-5"),
			} {
				created, err := storage.Transaction().CreateTransaction(t.Context(), tr)
				require.NoError(t, err, fmt.Sprintf("fixture %d", i))

				if tr.ReferenceNumber == "TXN-3" {
					_, err = storage.Transaction().UpdateStatus(t.Context(), created.ID, models.TransactionStatusCompleted, nil)
					require.NoError(t, err)
				}
			}

			t.Run("filter by user", func(t *testing.T) {
				items, total, err := storage.Transaction().ListTransactions(t.Context(), models.TransactionFilter{UserID: &alice.ID, Limit: 10})

				require.NoError(t, err)
				require.EqualValues(t, 4, total)
				require.Len(t, items, 4)
				for _, item := range items {
					require.Equal(t, alice.ID, item.UserID)
				}
			})

			t.Run("filter by type and status", func(t *testing.T) {
				items, total, err := storage.Transaction().ListTransactions(t.Context(), models.TransactionFilter{
					UserID: &alice.ID,
					Type:   models.TransactionTypeWithdrawal,
					Status: models.TransactionStatusPending,
					Limit:  10,
				})

				require.NoError(t, err)
				require.EqualValues(t, 2, total)
				require.Len(t, items, 2)
			})

			t.Run("pagination keeps total", func(t *testing.T) {
				items, total, err := storage.Transaction().ListTransactions(t.Context(), models.TransactionFilter{UserID: &alice.ID, Limit: 2, Offset: 2})

				require.NoError(t, err)
				require.EqualValues(t, 4, total, "total must ignore limit and offset")
				require.Len(t, items, 2)
			})

			t.Run("no filter lists everyone", func(t *testing.T) {
				_, total, err := storage.Transaction().ListTransactions(t.Context(), models.TransactionFilter{Limit: 10})

				require.NoError(t, err)
				require.EqualValues(t, 5, total)
			})
		})
	})

	t.Run("CountActiveByBankAccount", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user := createUser(t, storage, "testuser")
			account := createAccount(t, storage, user.ID)

			pending, err := storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-1"))
			require.NoError(t, err)
			_, err = storage.Transaction().CreateTransaction(t.Context(), newTransaction(user.ID, &account.ID, "TXN-2"))
			require.NoError(t, err)

			count, err := storage.Transaction().CountActiveByBankAccount(t.Context(), account.ID)
			require.NoError(t, err)
			require.EqualValues(t, 2, count)

			_, err = storage.Transaction().UpdateStatus(t.Context(), pending.ID, models.TransactionStatusCancelled, nil)
			require.NoError(t, err)

			count, err = storage.Transaction().CountActiveByBankAccount(t.Context(), account.ID)
			require.NoError(t, err)
			require.EqualValues(t, 1, count, "terminal transactions must not count as active")
		})
	})
}
