// Package services contains server-side business logic. UserService
// registers accounts, checks credentials and mints session tokens.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/bpay/bpay/internal/common"
	"github.com/bpay/bpay/internal/logging"
	"github.com/bpay/bpay/internal/server/auth"
	"github.com/bpay/bpay/internal/server/models"
	"github.com/bpay/bpay/internal/server/repositories/users"
)

// TokenIssuer mints signed session tokens.
type TokenIssuer interface {
	Issue(email, role string) (string, error)
	IssuePayload(payload map[string]any) (string, error)
}

var _ TokenIssuer = (*auth.Issuer)(nil)

type UserService struct {
	repo        users.Repository
	hasher      auth.SecretHasher
	issuer      TokenIssuer
	logger      logging.Logger
	defaultRole string
	now         func() time.Time
	newID       func() string
}

// NewUserService wires the service. An empty defaultRole falls back to
// common.DefaultRole.
func NewUserService(repo users.Repository, hasher auth.SecretHasher, issuer TokenIssuer, logger logging.Logger, defaultRole string) *UserService {
	if defaultRole == "" {
		defaultRole = common.DefaultRole
	}
	return &UserService{
		repo:        repo,
		hasher:      hasher,
		issuer:      issuer,
		logger:      logger.With("module", "users"),
		defaultRole: defaultRole,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

// Register creates an account. A taken email yields common.ErrorAlreadyExists
// whether it was found up front or lost to a concurrent insert; the existing
// record is left untouched either way.
func (s *UserService) Register(ctx context.Context, name, email, pin, role string) (*models.User, error) {
	if email == "" || pin == "" {
		return nil, common.ErrorValidation
	}

	_, err := s.repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		s.logger.Info(ctx, "registration rejected: email taken", "email", email)
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "user lookup failed", "email", email, "error", err)
		return nil, common.ErrorInternal
	}

	hash, err := s.hasher.Hash(pin)
	if err != nil {
		s.logger.Error(ctx, "pin hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	if strings.TrimSpace(role) == "" {
		role = s.defaultRole
	}

	user := &models.User{
		ID:        s.newID(),
		Name:      name,
		Email:     email,
		PinHash:   hash,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Info(ctx, "registration lost race for email", "email", email)
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "user insert failed", "email", email, "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "email", email, "id", created.ID)
	return created, nil
}

// Login checks pin against the stored hash and returns a session token
// carrying the account's email and role.
func (s *UserService) Login(ctx context.Context, email, pin string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Info(ctx, "login for unknown email", "email", email)
			return "", common.ErrorUserNotFound
		}
		s.logger.Error(ctx, "user lookup failed", "email", email, "error", err)
		return "", common.ErrorInternal
	}

	if !s.hasher.Verify(pin, user.PinHash) {
		s.logger.Info(ctx, "login with wrong pin", "email", email)
		return "", common.ErrorInvalidCredentials
	}

	token, err := s.issuer.Issue(user.Email, user.Role)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "email", email, "error", err)
		return "", common.ErrorInternal
	}

	s.logger.Info(ctx, "login succeeded", "email", email)
	return token, nil
}

// IssueToken signs an arbitrary payload with the session TTL. No account is
// consulted.
func (s *UserService) IssueToken(ctx context.Context, payload map[string]any) (string, error) {
	token, err := s.issuer.IssuePayload(payload)
	if err != nil {
		s.logger.Error(ctx, "direct token issue failed", "error", err)
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error(ctx, "user list failed", "error", err)
		return nil, common.ErrorInternal
	}
	return list, nil
}
