package setting

import (
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/akosachev/ledgerpay/internal/repository/postgres"
	"github.com/akosachev/ledgerpay/internal/testutil"
)

func TestSetting(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	withTx := func(t *testing.T, fn func(s *Service)) {
		testutil.WithTx(pg.Pool, t, func(tx pgx.Tx) {
			fn(NewService(&postgres.SettingRepo{DB: tx}))
		})
	}

	t.Run("public listing filters internal settings", func(t *testing.T) {
		withTx(t, func(s *Service) {
			_, err := s.Set(t.Context(), "site_name", "LedgerPay")
			require.NoError(t, err)
			_, err = s.Set(t.Context(), "smtp_password", "hunter2")
			require.NoError(t, err)

			public, err := s.ListPublic(t.Context())
			require.NoError(t, err)
			require.Len(t, public, 1)
			require.Equal(t, "site_name", public[0].Name)

			all, err := s.List(t.Context())
			require.NoError(t, err)
			require.Len(t, all, 2)
		})
	})

	t.Run("set get delete round trip", func(t *testing.T) {
		withTx(t, func(s *Service) {
			_, err := s.Set(t.Context(), "min_deposit_amount", "10")
			require.NoError(t, err)

			setting, err := s.Get(t.Context(), "min_deposit_amount")
			require.NoError(t, err)
			require.Equal(t, "10", setting.Value)

			_, err = s.Set(t.Context(), "min_deposit_amount", "20")
			require.NoError(t, err)

			setting, err = s.Get(t.Context(), "min_deposit_amount")
			require.NoError(t, err)
			require.Equal(t, "20", setting.Value)

			require.NoError(t, s.Delete(t.Context(), "min_deposit_amount"))
		})
	})
}
