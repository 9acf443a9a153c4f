package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/employee-directory/internal/api/http/handlers"
	"github.com/spec-kit/employee-directory/internal/auth"
	"github.com/spec-kit/employee-directory/internal/config"
	"github.com/spec-kit/employee-directory/internal/domain"
	"github.com/spec-kit/employee-directory/internal/repository/memstore"
	"github.com/spec-kit/employee-directory/internal/service"
)

const testSecret = "test-secret"

type testApp struct {
	app   *fiber.App
	store *memstore.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             testSecret,
			AccessTokenTTLMinutes: 30,
			BcryptCost:            bcrypt.MinCost,
		},
	}

	st := memstore.New()
	denylist := memstore.NewDenylist()

	authService := service.NewAuthService(cfg, service.AuthDependencies{Store: st, Denylist: denylist})
	directoryService := service.NewDirectoryService(st)
	lifecycleService := service.NewLifecycleService(cfg, st)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterMiddlewares(app, zap.NewNop(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("employee-directory", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(directoryService, lifecycleService, authService),
		AuthMiddleware: auth.NewMiddleware(authService.TokenManager(), st.Credentials(), denylist),
	})

	return &testApp{app: app, store: st}
}

// seed inserts detail, credential and role rows directly and returns the id.
func (ta *testApp) seed(t *testing.T, username, password string, role domain.Role) int64 {
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
	require.NoError(t, ta.store.Details().Create(ctx, detail))

	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, ta.store.Credentials().Create(ctx, &domain.Credential{
		ID:           detail.ID,
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}))
	require.NoError(t, ta.store.Roles().Insert(ctx, domain.RoleRecord{Role: role, ID: detail.ID}))
	return detail.ID
}

func (ta *testApp) request(t *testing.T, method, path, token string, body any) *stdhttp.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := stdhttp.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	resp, err := ta.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (ta *testApp) login(t *testing.T, username, password string) string {
	t.Helper()

	resp := ta.request(t, stdhttp.MethodPost, "/login", "", fiber.Map{
		"username": username,
		"password": password,
	})
	require.Equal(t, 200, resp.StatusCode)

	body := decodeBody(t, resp)
	token, ok := body["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func decodeBody(t *testing.T, resp *stdhttp.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestGreeting(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, stdhttp.MethodGet, "/", "", nil)
	require.Equal(t, 200, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "Hello There!", string(raw))
}

func TestHealthLive(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, stdhttp.MethodGet, "/health/live", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "alive", decodeBody(t, resp)["status"])
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)

	wrongPassword := ta.request(t, stdhttp.MethodPost, "/login", "", fiber.Map{
		"username": "jdoe", "password": "nope",
	})
	unknownUser := ta.request(t, stdhttp.MethodPost, "/login", "", fiber.Map{
		"username": "ghost", "password": "nope",
	})

	require.Equal(t, 401, wrongPassword.StatusCode)
	require.Equal(t, 401, unknownUser.StatusCode)
	require.Equal(t, decodeBody(t, wrongPassword), decodeBody(t, unknownUser))
}

func TestLoginValidatesPayload(t *testing.T) {
	ta := newTestApp(t)

	resp := ta.request(t, stdhttp.MethodPost, "/login", "", fiber.Map{"username": "jdoe"})
	require.Equal(t, 400, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Contains(t, body, "details")
}

func TestListValidatesRange(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)

	for _, path := range []string{"/users?limit=101", "/users?limit=0", "/users?from=-1"} {
		resp := ta.request(t, stdhttp.MethodGet, path, "", nil)
		require.Equal(t, 422, resp.StatusCode, path)
	}

	resp := ta.request(t, stdhttp.MethodGet, "/users", "", nil)
	require.Equal(t, 200, resp.StatusCode)
	require.Len(t, decodeBody(t, resp)["data"], 1)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)

	resp := ta.request(t, stdhttp.MethodGet, "/user/1", "", nil)
	require.Equal(t, 403, resp.StatusCode)
	require.Equal(t, "Forbidden", decodeBody(t, resp)["message"])
}

func TestTamperedTokenIsForbidden(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)
	token := ta.login(t, "jdoe", "hunter2")

	resp := ta.request(t, stdhttp.MethodGet, "/user/1", token+"x", nil)
	require.Equal(t, 403, resp.StatusCode)
	require.Equal(t, "Forbidden", decodeBody(t, resp)["message"])
}

func TestExpiredTokenReportedDistinctly(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)

	claims := &auth.Claims{
		Username: "jdoe",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "expired-token",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	resp := ta.request(t, stdhttp.MethodGet, "/user/1", token, nil)
	require.Equal(t, 403, resp.StatusCode)
	require.Equal(t, "Session Expired", decodeBody(t, resp)["message"])
}

func TestProfileShapeDependsOnRequester(t *testing.T) {
	ta := newTestApp(t)
	targetID := ta.seed(t, "jdoe", "hunter2", domain.RoleManager)
	ta.seed(t, "asmith", "secret", domain.RoleStaff)

	ownToken := ta.login(t, "jdoe", "hunter2")
	otherToken := ta.login(t, "asmith", "secret")
	path := "/user/" + itoa(targetID)

	own := ta.request(t, stdhttp.MethodGet, path, ownToken, nil)
	require.Equal(t, 200, own.StatusCode)
	ownData := decodeBody(t, own)["data"].(map[string]any)
	require.Contains(t, ownData, "username")
	require.Contains(t, ownData, "phone_number")
	require.Contains(t, ownData, "date_of_birth")

	other := ta.request(t, stdhttp.MethodGet, path, otherToken, nil)
	require.Equal(t, 200, other.StatusCode)
	otherData := decodeBody(t, other)["data"].(map[string]any)
	require.Equal(t, "jdoe", otherData["last_name"])
	require.NotContains(t, otherData, "username")
	require.NotContains(t, otherData, "phone_number")
	require.NotContains(t, otherData, "date_of_birth")
}

func TestScopeNoopReturnsNotModified(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "root", "pw", domain.RoleAdmin)
	managerID := ta.seed(t, "boss", "pw", domain.RoleManager)
	token := ta.login(t, "root", "pw")

	resp := ta.request(t, stdhttp.MethodPatch, "/user/"+itoa(managerID), token, fiber.Map{
		"change_type": "scope",
		"scope":       fiber.Map{"to": "manager"},
	})
	require.Equal(t, 304, resp.StatusCode)
}

func TestScopeChangeToAdminRejected(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "root", "pw", domain.RoleAdmin)
	managerID := ta.seed(t, "boss", "pw", domain.RoleManager)
	token := ta.login(t, "root", "pw")

	resp := ta.request(t, stdhttp.MethodPatch, "/user/"+itoa(managerID), token, fiber.Map{
		"change_type": "scope",
		"scope":       fiber.Map{"to": "admin"},
	})
	require.Equal(t, 400, resp.StatusCode)
	require.Contains(t, decodeBody(t, resp), "details")
}

func TestAddRequiresAdmin(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)
	token := ta.login(t, "jdoe", "hunter2")

	resp := ta.request(t, stdhttp.MethodPost, "/add", token, fiber.Map{
		"role": "staff", "last_name": "Smith", "title": "Clerk",
		"date_of_birth": "1991-05-02", "email": "asmith@example.com", "username": "asmith",
	})
	require.Equal(t, 401, resp.StatusCode)
}

func TestAddReturnsUsableInitialPassword(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "root", "pw", domain.RoleAdmin)
	token := ta.login(t, "root", "pw")

	resp := ta.request(t, stdhttp.MethodPost, "/add", token, fiber.Map{
		"role": "staff", "first_name": "Alice", "last_name": "Smith", "title": "Clerk",
		"phone_number": "5550101", "date_of_birth": "1991-05-02",
		"email": "asmith@example.com", "username": "asmith",
	})
	require.Equal(t, 201, resp.StatusCode)

	body := decodeBody(t, resp)
	require.Equal(t, "User Created", body["message"])
	password := body["data"].(map[string]any)["initial_password"].(string)
	require.NotEmpty(t, password)

	// The returned password must open a session for the new employee.
	ta.login(t, "asmith", password)
}

func TestAddValidatesPayload(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "root", "pw", domain.RoleAdmin)
	token := ta.login(t, "root", "pw")

	resp := ta.request(t, stdhttp.MethodPost, "/add", token, fiber.Map{
		"role": "wizard", "last_name": "Smith", "title": "Clerk",
		"date_of_birth": "1991-05-02", "email": "not-an-email", "username": "asmith",
	})
	require.Equal(t, 400, resp.StatusCode)
	require.Contains(t, decodeBody(t, resp), "details")
}

func TestDeleteUser(t *testing.T) {
	ta := newTestApp(t)
	ta.seed(t, "root", "pw", domain.RoleAdmin)
	staffID := ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)
	token := ta.login(t, "root", "pw")

	resp := ta.request(t, stdhttp.MethodDelete, "/user/"+itoa(staffID), token, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "User Deleted", decodeBody(t, resp)["message"])

	resp = ta.request(t, stdhttp.MethodGet, "/user/"+itoa(staffID), token, nil)
	require.Equal(t, 404, resp.StatusCode)
}

func TestLogoutRevokesSession(t *testing.T) {
	ta := newTestApp(t)
	targetID := ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)
	token := ta.login(t, "jdoe", "hunter2")
	path := "/user/" + itoa(targetID)

	resp := ta.request(t, stdhttp.MethodGet, path, token, nil)
	require.Equal(t, 200, resp.StatusCode)

	resp = ta.request(t, stdhttp.MethodPost, "/logout", token, nil)
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "Logged Out", decodeBody(t, resp)["message"])

	resp = ta.request(t, stdhttp.MethodGet, path, token, nil)
	require.Equal(t, 403, resp.StatusCode)
	require.Equal(t, "Forbidden", decodeBody(t, resp)["message"])
}

func TestChangePasswordFlow(t *testing.T) {
	ta := newTestApp(t)
	targetID := ta.seed(t, "jdoe", "hunter2", domain.RoleStaff)
	token := ta.login(t, "jdoe", "hunter2")

	resp := ta.request(t, stdhttp.MethodPatch, "/pwd/"+itoa(targetID), token, fiber.Map{
		"old_password": "hunter2", "new_password": "correcthorse",
	})
	require.Equal(t, 200, resp.StatusCode)
	require.Equal(t, "Password Changed", decodeBody(t, resp)["message"])

	ta.login(t, "jdoe", "correcthorse")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
