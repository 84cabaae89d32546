package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nekogravitycat/resource-share-backend/internal/auth"
	"github.com/nekogravitycat/resource-share-backend/internal/pkg/logger"
)

const minPasswordLength = 8

// Service manages accounts. A user's normalized email is the owner identity
// stamped on the resources and reservations they create.
type Service interface {
	Register(ctx context.Context, email, password, displayName string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher
	log    *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, hasher auth.PasswordHasher, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	return &service{repo: repo, hasher: hasher, log: log, now: time.Now}
}

// identity is the form in which emails are stored and compared.
func identity(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Register(ctx context.Context, email, password, displayName string) (*User, error) {
	owner := identity(email)
	switch {
	case owner == "":
		return nil, ErrEmailRequired
	case len(password) < minPasswordLength:
		return nil, fmt.Errorf("%w: at least %d characters", ErrPasswordTooShort, minPasswordLength)
	}

	switch _, err := s.repo.GetByEmail(ctx, owner); {
	case err == nil:
		return nil, ErrEmailAlreadyUsed
	case !errors.Is(err, ErrNotFound):
		return nil, fmt.Errorf("look up %s: %w", owner, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{Email: owner, PasswordHash: hash, IsActive: true}
	if name := strings.TrimSpace(displayName); name != "" {
		u.DisplayName = &name
	}

	// The unique index still catches a register racing this one.
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailAlreadyUsed) {
			return nil, err
		}
		return nil, fmt.Errorf("create user %s: %w", owner, err)
	}

	logger.FromContext(ctx, s.log).Info("user registered", "operation", "user.register", "user_id", u.ID)
	return u, nil
}

// Login answers unknown emails, wrong passwords and deactivated accounts with
// the same 401.
func (s *service) Login(ctx context.Context, email, password string) (*User, error) {
	owner := identity(email)
	if owner == "" || strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("look up %s: %w", owner, err)
	}

	if s.hasher.Compare(u.PasswordHash, password) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactiveUser
	}

	at := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, u.ID, at); err != nil {
		logger.FromContext(ctx, s.log).Warn("last login not recorded",
			"operation", "user.login", "user_id", u.ID, "error", err)
		return u, nil
	}
	u.LastLoginAt = &at
	return u, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}
