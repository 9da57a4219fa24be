package e2e

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/akosachev/ledgerpay/internal/handlers"
	"github.com/akosachev/ledgerpay/internal/logger"
	"github.com/akosachev/ledgerpay/internal/repository"
	"github.com/akosachev/ledgerpay/internal/repository/postgres"
	"github.com/akosachev/ledgerpay/internal/service/auth"
	"github.com/akosachev/ledgerpay/internal/service/bankaccount"
	"github.com/akosachev/ledgerpay/internal/service/ledger"
	"github.com/akosachev/ledgerpay/internal/service/setting"
	"github.com/akosachev/ledgerpay/internal/testutil"
)

type Services struct {
	Storage        repository.Storage
	AuthService    *auth.AuthService
	LedgerService  *ledger.Service
	AccountService *bankaccount.Service
	SettingService *setting.Service
}

// Create db transaction and run server with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services)) {
	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		storage := postgres.NewStorage(tx)

		as, err := auth.NewService(auth.Config{SecretKey: "test-secret"}, storage.User())
		require.NoError(t, err, "auth service starting error")

		ls := ledger.NewService(storage)
		bs := bankaccount.NewService(storage)
		ss := setting.NewService(storage.Setting())

		router := handlers.NewRouter(as, ls, bs, ss, storage.User(), logger.NewNoOpLogger())

		// Run http server with the router in transaction
		srv := httptest.NewServer(router)
		defer srv.Close()

		fn(tx, srv.URL, Services{
			Storage:        storage,
			AuthService:    as,
			LedgerService:  ls,
			AccountService: bs,
			SettingService: ss,
		})
	})
}
