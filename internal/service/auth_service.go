package service

import (
	"context"
	"time"

	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/config"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
	apperrors "github.com/spec-kit/employee-directory/pkg/util/errorutil"
)

// Actor identifies the caller of a service operation.
type Actor struct {
	ID   int64
	Role domain.Role
}

// AuthService coordinates login, logout and password changes.
type AuthService struct {
	store      repository.Store
	denylist   repository.TokenDenylist
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	Store    repository.Store
	Denylist repository.TokenDenylist
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		store:      deps.Store,
		denylist:   deps.Denylist,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Login authenticates a username/password pair and issues a session token.
// An unknown username and a wrong password produce the identical error so
// responses never reveal which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	cred, err := s.store.Credentials().GetByUsername(ctx, username)
	if err != nil {
		if repository.IsNoRows(err) {
			return "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return "", time.Time{}, err
	}

	if err := auth.ComparePassword(cred.PasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, claims, err := s.tokenMgr.Issue(cred.Username)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// Logout revokes the presented token until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.denylist.Revoke(ctx, tokenID, expiresAt)
}

// ChangePassword verifies the old password before storing the new hash.
// Only the account owner may change their own password.
func (s *AuthService) ChangePassword(ctx context.Context, actor Actor, targetID int64, oldPassword, newPassword string) error {
	if actor.ID != targetID {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	cred, err := s.store.Credentials().GetByID(ctx, targetID)
	if err != nil {
		if repository.IsNoRows(err) {
			return apperrors.NewNotFound("user")
		}
		return err
	}

	if err := auth.ComparePassword(cred.PasswordHash, oldPassword); err != nil {
		return apperrors.NewForbidden("Invalid Credentials")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	return s.store.Credentials().UpdatePassword(ctx, targetID, hash)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
