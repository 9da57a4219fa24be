package auth

import (
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/repository/postgres"
	"github.com/akosachev/ledgerpay/internal/testutil"
)

func Test_Auth(t *testing.T) {
	t.Parallel()

	pg := testutil.StartPostgresContainer(t)
	t.Cleanup(pg.Terminate)

	// Begin new db transaction and create new AuthService
	// Rollback transaction when test stops
	withTx := func(dbpool *pgxpool.Pool, t *testing.T, fn func(s *AuthService)) {
		testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
			userRepo := &postgres.UserRepo{DB: tx}

			s, err := NewService(Config{SecretKey: "test-secret-key"}, userRepo)
			require.NoError(t, err, "auth service couldn't be started", err)

			fn(s)
		})
	}

	t.Run("new auth service", func(t *testing.T) {
		t.Run("defaults", func(t *testing.T) {
			s, err := NewService(Config{SecretKey: "test-secret-key"}, &postgres.UserRepo{})
			require.NoError(t, err, "auth service should be created without errors")

			require.Equal(t, BcryptHasher{}, s.hasher, "default hasher should be set to BcryptHasher")
			require.Equal(t, defaultAccessTTL, s.token.accessTTL, "default access TTL should be set")
		})

		t.Run("empty secret fails", func(t *testing.T) {
			_, err := NewService(Config{}, &postgres.UserRepo{})
			require.Error(t, err)
		})

		t.Run("nil repo fails", func(t *testing.T) {
			_, err := NewService(Config{SecretKey: "test-secret-key"}, nil)
			require.Error(t, err)
		})
	})

	t.Run("Register", func(t *testing.T) {
		t.Run("new user ok", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService) {
				user, access, err := s.Register(t.Context(), "testuser", "pwd", "Test User")

				require.NoError(t, err, "registering new user should be ok")
				require.NotEmpty(t, access, "access token should not be empty")
				require.Equal(t, "testuser", user.Username)
				require.Equal(t, "Test User", user.DisplayName)
			})
		})

		t.Run("display name defaults to username", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService) {
				user, _, err := s.Register(t.Context(), "testuser", "pwd", "")

				require.NoError(t, err)
				require.Equal(t, "testuser", user.DisplayName)
			})
		})

		t.Run("fail if user exists", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService) {
				_, _, err := s.Register(t.Context(), "testuser", "pwd", "")
				require.NoError(t, err, "no error should happen if user not exists")

				_, _, err = s.Register(t.Context(), "testuser", "other-pwd", "")

				require.Error(t, err)
				require.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
			})
		})
	})

	t.Run("Login", func(t *testing.T) {
		t.Run("existing user ok", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService) {
				_, _, err := s.Register(t.Context(), "testuser", "pwd", "")
				require.NoError(t, err)

				user, access, err := s.Login(t.Context(), "testuser", "pwd")

				require.NoError(t, err)
				require.NotEmpty(t, access, "access token should not be empty")
				require.Equal(t, "testuser", user.Username)
			})
		})

		tests := []struct {
			name     string
			username string
			password string
		}{
			{
				name:     "login fail if wrong password",
				username: "testuser",
				password: "wrong",
			},
			{
				name:     "login fail if user not exists",
				username: "not-existed-user",
				password: "pwd",
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				withTx(pg.Pool, t, func(s *AuthService) {
					_, _, err := s.Register(t.Context(), "testuser", "pwd", "")
					require.NoError(t, err)

					_, _, err = s.Login(t.Context(), tt.username, tt.password)

					require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
				})
			})
		}
	})

	t.Run("Auth", func(t *testing.T) {
		t.Run("valid bearer token", func(t *testing.T) {
			withTx(pg.Pool, t, func(s *AuthService) {
				registered, access, err := s.Register(t.Context(), "testuser", "pwd", "")
				require.NoError(t, err)

				r := httptest.NewRequest("GET", "/", nil)
				r.Header.Set("Authorization", "Bearer "+access)

				user, err := s.Auth(t.Context(), r)

				require.NoError(t, err)
				require.Equal(t, registered.ID, user.ID)
			})
		})

		tests := []struct {
			name   string
			header string
		}{
			{name: "no header", header: ""},
			{name: "no bearer prefix", header: "token-without-scheme"},
			{name: "empty token", header: "Bearer "},
			{name: "garbage token", header: "Bearer not-a-jwt"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				withTx(pg.Pool, t, func(s *AuthService) {
					r := httptest.NewRequest("GET", "/", nil)
					if tt.header != "" {
						r.Header.Set("Authorization", tt.header)
					}

					_, err := s.Auth(t.Context(), r)

					require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
				})
			})
		}
	})
}
