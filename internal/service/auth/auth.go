package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/akosachev/ledgerpay/internal/apperrors"
	"github.com/akosachev/ledgerpay/internal/models"
	"github.com/akosachev/ledgerpay/internal/repository"
)

const defaultAccessTTL = 30 * time.Minute

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

var DefaultHasher PasswordHasher = BcryptHasher{}

type Config struct {
	// Secret key to sign access tokens
	SecretKey string

	// Hasher to use during registration or login, DefaultHasher if nil
	Hasher PasswordHasher

	// Access token lifetime, defaultAccessTTL if zero
	AccessTokenTTL time.Duration
}

// AuthService resolves credentials and bearer tokens to users
// The rest of the application treats the returned models.User as the opaque
// caller identity and role
type AuthService struct {
	token    TokenManager
	hasher   PasswordHasher
	userRepo repository.UserRepo
}

func NewService(cfg Config, userRepo repository.UserRepo) (*AuthService, error) {
	if cfg.SecretKey == "" {
		return nil, errors.New("secret key must not be empty")
	}
	if userRepo == nil {
		return nil, errors.New("user repo must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	accessTTL := cfg.AccessTokenTTL
	if accessTTL == 0 {
		accessTTL = defaultAccessTTL
	}

	return &AuthService{
		token: TokenManager{
			key:       cfg.SecretKey,
			alg:       jwt.SigningMethodHS256,
			accessTTL: accessTTL,
		},
		hasher:   hasher,
		userRepo: userRepo,
	}, nil
}

func (s *AuthService) Register(ctx context.Context, username string, password string, displayName string) (models.User, string, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, "", fmt.Errorf("can't use this as password, error=%w", err)
	}

	if displayName == "" {
		displayName = username
	}

	user, err := s.userRepo.CreateUser(ctx, username, hash, displayName)
	if err != nil {
		return models.User{}, "", err
	}

	access, err := s.token.Generate(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return user, access, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (models.User, string, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, username)
	if err != nil {
		// Burn a comparison anyway to keep unknown-user timing close to
		// wrong-password timing
		_ = s.hasher.Compare("", password)
		return models.User{}, "", apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return models.User{}, "", apperrors.ErrInvalidCredentials
	}

	access, err := s.token.Generate(user.ID)
	if err != nil {
		return models.User{}, "", fmt.Errorf("token could not be generated, sorry. %w", err)
	}

	return user, access, nil
}

// Auth resolves the request Authorization header to a user
func (s *AuthService) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	header := r.Header.Get("Authorization")
	access, found := strings.CutPrefix(header, "Bearer ")
	if !found || access == "" {
		return models.User{}, apperrors.ErrInvalidCredentials
	}

	userID, err := s.token.Parse(access)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, userID, false)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidCredentials, err)
	}

	return user, nil
}
