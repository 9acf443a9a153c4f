package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	tm := NewTokenManager("secret", 30)

	token, claims, err := tm.Issue("jdoe")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, claims.ID)

	parsed, err := tm.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "jdoe", parsed.Username)
	require.Equal(t, claims.ID, parsed.ID)
	require.WithinDuration(t, time.Now().Add(30*time.Minute), parsed.ExpiresAt.Time, time.Minute)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", 30)
	other := NewTokenManager("different", 30)

	token, _, err := other.Issue("jdoe")
	require.NoError(t, err)

	_, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 30)

	_, err := tm.Verify("not-a-token")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyReportsExpiryDistinctly(t *testing.T) {
	tm := NewTokenManager("secret", 30)

	expired := &Claims{
		Username: "jdoe",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-31 * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString(tm.secret)
	require.NoError(t, err)

	_, err = tm.Verify(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestDefaultTTLIsThirtyMinutes(t *testing.T) {
	tm := NewTokenManager("secret", 0)
	require.Equal(t, 30*time.Minute, tm.ttl)
}
