package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUserExists indicates an account is already registered for the email.
	ErrUserExists = errors.New("users: email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password
	// so a caller cannot tell which part of the credential failed.
	ErrInvalidCredentials = errors.New("users: invalid credentials")
	// ErrMissingCredentials indicates an empty email or password.
	ErrMissingCredentials = errors.New("users: email and password are required")

	errMissingDatabase   = errors.New("users: database handle is required")
	errMissingIDProvider = errors.New("users: id provider is required")

	noOpLogger = zap.NewNop()
)

// IDProvider mints identifiers for newly registered accounts.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies required for account management.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Service registers accounts and verifies sign-in credentials.
type Service struct {
	db         *gorm.DB
	now        func() time.Time
	idProvider IDProvider
	logger     *zap.Logger
}

// NewService constructs the account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{
		db:         cfg.Database,
		now:        clock,
		idProvider: cfg.IDProvider,
		logger:     logger,
	}, nil
}

// Register hashes the password and persists a new account. The email is
// checked before the insert so a duplicate surfaces as ErrUserExists rather
// than a driver constraint error.
func (s *Service) Register(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	var existing User
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return User{}, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("user lookup failed", zap.Error(err))
		return User{}, fmt.Errorf("users: lookup by email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	id, err := s.idProvider.NewID()
	if err != nil {
		s.logger.Error("user id generation failed", zap.Error(err))
		return User{}, fmt.Errorf("users: mint id: %w", err)
	}

	account := User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return User{}, ErrUserExists
		}
		s.logger.Error("user insert failed", zap.Error(err))
		return User{}, fmt.Errorf("users: insert: %w", err)
	}

	return account, nil
}

// Authenticate verifies the email and password against the stored hash and
// returns the matching account. Unknown emails and wrong passwords produce
// the same ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrMissingCredentials
	}

	account, err := s.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("user lookup failed", zap.Error(err))
		return User{}, fmt.Errorf("users: lookup by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return account, nil
}

// GetByEmail returns the first account matching the email, or
// gorm.ErrRecordNotFound when none is registered.
func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	var account User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&account).Error
	if err != nil {
		return User{}, err
	}
	return account, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
