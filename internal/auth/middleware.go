package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository"
	apperrors "github.com/spec-kit/employee-directory/pkg/util/errorutil"
)

// TokenHeader carries the session token on protected routes.
const TokenHeader = "jwt-auth-token"

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	ID             int64
	Username       string
	Role           domain.Role
	TokenID        string
	TokenExpiresAt time.Time
}

// Middleware validates session tokens and resolves the caller's credential.
type Middleware struct {
	tokens   *TokenManager
	creds    repository.CredentialRepository
	denylist repository.TokenDenylist
}

// NewMiddleware constructs the authorization gate.
func NewMiddleware(tokens *TokenManager, creds repository.CredentialRepository, denylist repository.TokenDenylist) *Middleware {
	return &Middleware{tokens: tokens, creds: creds, denylist: denylist}
}

// Handle enforces authentication for protected routes. Missing tokens, bad
// signatures, revoked tokens and unknown usernames all collapse into one
// Forbidden response so callers cannot probe which usernames exist; only
// expiry is reported distinctly.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	tokenStr := c.Get(TokenHeader)
	if tokenStr == "" {
		return apperrors.NewForbidden("Forbidden")
	}

	claims, err := m.tokens.Verify(tokenStr)
	if err != nil {
		if err == ErrTokenExpired {
			return apperrors.NewSessionExpired()
		}
		return apperrors.NewForbidden("Forbidden")
	}

	if m.denylist != nil {
		revoked, err := m.denylist.IsRevoked(c.Context(), claims.ID)
		if err != nil {
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return apperrors.NewForbidden("Forbidden")
		}
	}

	cred, err := m.creds.GetByUsername(c.Context(), claims.Username)
	if err != nil {
		if repository.IsNoRows(err) {
			return apperrors.NewForbidden("Forbidden")
		}
		return apperrors.NewInternalError(err)
	}

	c.Locals(principalKey, &Principal{
		ID:             cred.ID,
		Username:       cred.Username,
		Role:           cred.Role,
		TokenID:        claims.ID,
		TokenExpiresAt: claims.ExpiresAt.Time,
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
