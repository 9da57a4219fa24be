package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akosachev/ledgerpay/internal/handlers/middleware"
	"github.com/akosachev/ledgerpay/internal/logger"
	"github.com/akosachev/ledgerpay/internal/models"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	ledgerService ledgerService,
	accountService accountService,
	settingService settingService,
	userService userService,
	l logger.Logger,
) http.Handler {
	authMiddleware := middleware.AuthMiddleware(authService)
	withAuth := func(h http.Handler) http.Handler {
		return authMiddleware(h)
	}
	withAdmin := func(h http.Handler) http.Handler {
		return authMiddleware(middleware.RequireAdmin(h))
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/register", handleRegister(authService, l))
	api.Handle("POST /auth/login", handleLogin(authService, l))

	api.Handle("GET /users/profile", withAuth(handleUserProfile()))
	api.Handle("PUT /users/profile", withAuth(handleUpdateProfile(userService, l)))

	api.Handle("POST /bank-accounts", withAuth(handleCreateBankAccount(accountService, l)))
	api.Handle("GET /bank-accounts", withAuth(handleListBankAccounts(accountService, l)))
	api.Handle("GET /bank-accounts/{id}", withAuth(handleGetBankAccount(accountService, l)))
	api.Handle("PUT /bank-accounts/{id}", withAuth(handleUpdateBankAccount(accountService, l)))
	api.Handle("DELETE /bank-accounts/{id}", withAuth(handleDeleteBankAccount(accountService, l)))

	api.Handle("POST /transactions/withdrawal", withAuth(handleCreateWithdrawal(ledgerService, l)))
	api.Handle("POST /transactions/deposit", withAuth(handleCreateDeposit(ledgerService, l)))
	api.Handle("PUT /transactions/{id}/cancel", withAuth(handleCancelTransaction(ledgerService, l)))
	api.Handle("PUT /transactions/{id}/status", withAdmin(handleSetTransactionStatus(ledgerService, l)))
	api.Handle("GET /transactions", withAuth(handleListTransactions(ledgerService, l)))
	api.Handle("GET /transactions/{id}", withAuth(handleGetTransaction(ledgerService, l)))

	api.Handle("GET /settings/public", handlePublicSettings(settingService, l))
	api.Handle("GET /settings", withAdmin(handleListSettings(settingService, l)))
	api.Handle("GET /settings/{name}", withAdmin(handleGetSetting(settingService, l)))
	api.Handle("PUT /settings/{name}", withAdmin(handleSetSetting(settingService, l)))
	api.Handle("DELETE /settings/{name}", withAdmin(handleDeleteSetting(settingService, l)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	handler := chain(root,
		middleware.LoggerMiddleware(l),
	)

	return handler
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if username is taken
	Register(ctx context.Context, username string, password string, displayName string) (models.User, string, error)

	// Login user with username and password
	// Has to return apperrors.ErrInvalidCredentials on unknown user or wrong password
	Login(ctx context.Context, username string, password string) (models.User, string, error)

	// Get request and return user if it authenticated or error
	Auth(ctx context.Context, r *http.Request) (models.User, error)
}

type ledgerService interface {
	CreateWithdrawal(ctx context.Context, userID uuid.UUID, bankAccountID uuid.UUID, amount decimal.Decimal, description string) (models.Transaction, error)
	CreateDeposit(ctx context.Context, userID uuid.UUID, bankAccountID uuid.UUID, amount decimal.Decimal, description string) (models.Transaction, error)
	Cancel(ctx context.Context, id uuid.UUID, caller *models.User) (models.Transaction, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (models.Transaction, error)
	Get(ctx context.Context, id uuid.UUID, caller *models.User) (models.Transaction, error)
	List(ctx context.Context, caller *models.User, filter models.TransactionFilter) ([]models.Transaction, int64, error)
}

type accountService interface {
	Create(ctx context.Context, userID uuid.UUID, accountName string, accountNumber string, bankName string) (models.BankAccount, error)
	Get(ctx context.Context, accountID uuid.UUID, caller *models.User) (models.BankAccount, error)
	List(ctx context.Context, caller *models.User) ([]models.BankAccount, error)
	Update(ctx context.Context, accountID uuid.UUID, caller *models.User, update models.BankAccountUpdate) (models.BankAccount, error)
	Delete(ctx context.Context, accountID uuid.UUID, caller *models.User) error
}

type settingService interface {
	List(ctx context.Context) ([]models.Setting, error)
	ListPublic(ctx context.Context) ([]models.Setting, error)
	Get(ctx context.Context, name string) (models.Setting, error)
	Set(ctx context.Context, name string, value string) (models.Setting, error)
	Delete(ctx context.Context, name string) error
}

type userService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, update models.UserProfileUpdate) (models.User, error)
}
