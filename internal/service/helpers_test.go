package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/config"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository/memstore"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 30,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

// seedEmployee inserts detail, credential and role rows directly, bypassing
// the lifecycle service, and returns the generated id.
func seedEmployee(t *testing.T, st *memstore.Store, username, password string, role domain.Role, mut func(*domain.RoleRecord)) int64 {
	t.Helper()
	ctx := context.Background()

	detail := &domain.Detail{
		FirstName:   "Test",
		LastName:    username,
		Title:       "Employee",
		PhoneNumber: "5550100",
		DateOfBirth: time.Date(1990, time.March, 14, 0, 0, 0, 0, time.UTC),
		Email:       username + "@example.com",
	}
	require.NoError(t, st.Details().Create(ctx, detail))

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, st.Credentials().Create(ctx, &domain.Credential{
		ID:           detail.ID,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}))

	rec := domain.RoleRecord{Role: role, ID: detail.ID}
	if mut != nil {
		mut(&rec)
	}
	require.NoError(t, st.Roles().Insert(ctx, rec))
	return detail.ID
}

func ref[T any](v T) *T { return &v }
