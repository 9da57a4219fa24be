package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
	"github.com/akosachev/ledgerpay/internal/repository"
	"github.com/akosachev/ledgerpay/internal/testutil"
)

func TestBankAccountRepo(t *testing.T) {
	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	inTx := func(t *testing.T, outerTx DBTX, fn func(pgx.Tx, repository.Storage)) {
		testutil.WithTx(outerTx, t, func(innerTx pgx.Tx) {
			storage := NewStorage(innerTx)
			fn(innerTx, storage)
		})
	}

	t.Run("CreateBankAccount", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword", "Test User")
			require.NoError(t, err)

			t.Run("create ok", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					account, err := storage.BankAccount().CreateBankAccount(t.Context(), user.ID, "Main", "40817810000000000001", "Alpha Bank")

					require.NoError(t, err)
					require.NotEqual(t, uuid.Nil, account.ID)
					require.Equal(t, user.ID, account.UserID)
					require.Equal(t, "Main", account.AccountName)
					require.Equal(t, "40817810000000000001", account.AccountNumber)
					require.Equal(t, "Alpha Bank", account.BankName)
				})
			})

			t.Run("create duplicate for same user", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.BankAccount().CreateBankAccount(t.Context(), user.ID, "Main", "40817810000000000001", "Alpha Bank")
					require.NoError(t, err)

					_, err = storage.BankAccount().CreateBankAccount(t.Context(), user.ID, "Other name", "40817810000000000001", "Alpha Bank")

					require.ErrorIs(t, err, apperrors.ErrBankAccountExists)
				})
			})

			t.Run("same number for another user is fine", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					other, err := storage.User().CreateUser(t.Context(), "otheruser", "hashedpassword", "Other User")
					require.NoError(t, err)

					_, err = storage.BankAccount().CreateBankAccount(t.Context(), user.ID, "Main", "40817810000000000001", "Alpha Bank")
					require.NoError(t, err)

					_, err = storage.BankAccount().CreateBankAccount(t.Context(), other.ID, "Main", "40817810000000000001", "Alpha Bank")

					require.NoError(t, err)
				})
			})

			t.Run("unknown user", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					_, err := storage.BankAccount().CreateBankAccount(t.Context(), uuid.New(), "Main", "40817810000000000001", "Alpha Bank")

					require.ErrorIs(t, err, apperrors.ErrUserNotFound)
				})
			})
		})
	})

	t.Run("GetAndList", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			owner, err := storage.User().CreateUser(t.Context(), "owner", "hashedpassword", "Owner")
			require.NoError(t, err)
			stranger, err := storage.User().CreateUser(t.Context(), "stranger", "hashedpassword", "Stranger")
			require.NoError(t, err)

			account, err := storage.BankAccount().CreateBankAccount(t.Context(), owner.ID, "Main", "40817810000000000001", "Alpha Bank")
			require.NoError(t, err)

			t.Run("get scoped to owner", func(t *testing.T) {
				got, err := storage.BankAccount().GetUserBankAccount(t.Context(), account.ID, owner.ID)

				require.NoError(t, err)
				require.Equal(t, account.ID, got.ID)
			})

			t.Run("get scoped to stranger", func(t *testing.T) {
				_, err := storage.BankAccount().GetUserBankAccount(t.Context(), account.ID, stranger.ID)

				require.ErrorIs(t, err, apperrors.ErrBankAccountNotFound)
			})

			t.Run("get unscoped", func(t *testing.T) {
				got, err := storage.BankAccount().GetBankAccount(t.Context(), account.ID)

				require.NoError(t, err)
				require.Equal(t, account.ID, got.ID)
			})

			t.Run("list for user", func(t *testing.T) {
				accounts, err := storage.BankAccount().ListBankAccounts(t.Context(), owner.ID)
				require.NoError(t, err)
				require.Len(t, accounts, 1)

				accounts, err = storage.BankAccount().ListBankAccounts(t.Context(), stranger.ID)
				require.NoError(t, err)
				require.Empty(t, accounts)
			})

			t.Run("list all with usernames", func(t *testing.T) {
				accounts, err := storage.BankAccount().ListAllBankAccounts(t.Context())

				require.NoError(t, err)
				require.Len(t, accounts, 1)
				require.Equal(t, "owner", accounts[0].Username)
			})
		})
	})

	t.Run("UpdateBankAccount", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword", "Test User")
			require.NoError(t, err)

			account, err := storage.BankAccount().CreateBankAccount(t.Context(), user.ID, "Main", "40817810000000000001", "Alpha Bank")
			require.NoError(t, err)

			t.Run("partial update", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					name := "Savings"
					updated, err := storage.BankAccount().UpdateBankAccount(t.Context(), account.ID, models.BankAccountUpdate{AccountName: &name})

					require.NoError(t, err)
					require.Equal(t, "Savings", updated.AccountName)
					require.Equal(t, account.AccountNumber, updated.AccountNumber, "untouched fields should keep their values")
					require.Equal(t, account.BankName, updated.BankName)
				})
			})

			t.Run("not found", func(t *testing.T) {
				inTx(t, tx, func(ttx pgx.Tx, storage repository.Storage) {
					name := "Savings"
					_, err := storage.BankAccount().UpdateBankAccount(t.Context(), uuid.New(), models.BankAccountUpdate{AccountName: &name})

					require.ErrorIs(t, err, apperrors.ErrBankAccountNotFound)
				})
			})
		})
	})

	t.Run("DeleteBankAccount", func(t *testing.T) {
		inTx(t, pg.Pool, func(tx pgx.Tx, storage repository.Storage) {
			user, err := storage.User().CreateUser(t.Context(), "testuser", "hashedpassword", "Test User")
			require.NoError(t, err)

			account, err := storage.BankAccount().CreateBankAccount(t.Context(), user.ID, "Main", "40817810000000000001", "Alpha Bank")
			require.NoError(t, err)

			err = storage.BankAccount().DeleteBankAccount(t.Context(), account.ID)
			require.NoError(t, err)

			err = storage.BankAccount().DeleteBankAccount(t.Context(), account.ID)
			require.ErrorIs(t, err, apperrors.ErrBankAccountNotFound)
		})
	})
}
