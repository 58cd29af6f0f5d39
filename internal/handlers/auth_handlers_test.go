package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/blocklist"
	"github.com/tdminh/hrm-backend/internal/hash"
	authmw "github.com/tdminh/hrm-backend/internal/middleware/auth"
	"github.com/tdminh/hrm-backend/internal/models"
	"github.com/tdminh/hrm-backend/internal/mykafka"
	"github.com/tdminh/hrm-backend/internal/service"
	"github.com/tdminh/hrm-backend/internal/tokens"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Department{},
		&models.Position{},
		&models.Education{},
		&models.Contract{},
		&models.Payroll{},
		&models.Attendance{},
		&models.WorkPoint{},
	)
	require.NoError(t, err)

	return db
}

func newAuthServer(t *testing.T) (*echo.Echo, *service.AuthService) {
	t.Helper()

	svc := &service.AuthService{
		DB:         initTestDB(t),
		Codec:      tokens.NewCodec([]byte("test-secret")),
		Blocklist:  blocklist.NewMemory(),
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
	mw := authmw.New(svc)
	h := &AuthHandler{Svc: svc, Producer: &mykafka.Producer{}}

	e := echo.New()
	e.POST("/api/v1/auth/signup", h.Signup)
	e.POST("/api/v1/auth/login", h.Login)
	e.GET("/api/v1/auth/refresh", h.Refresh)
	e.GET("/api/v1/auth/logout", h.Logout)
	e.GET("/api/v1/auth/me", h.Me, mw.RequireAccess(models.RoleAdmin, models.RoleUser))
	e.GET("/api/v1/admin/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "pong"})
	}, mw.RequireAccess(models.RoleAdmin))

	return e, svc
}

func seedUser(t *testing.T, db *gorm.DB, username, password, role string, verified bool) *models.User {
	t.Helper()

	pwHash, err := hash.HashPassword(password)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
		IsVerified:   verified,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func doRequest(e *echo.Echo, method, path string, body any, bearer string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func loginTokens(t *testing.T, e *echo.Echo, username, password string) (string, string) {
	t.Helper()

	rec := doRequest(e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	return body["access_token"].(string), body["refresh_token"].(string)
}

func TestLoginSuccess(t *testing.T) {
	e, svc := newAuthServer(t)
	seedUser(t, svc.DB, "alice", "Secret123!", models.RoleUser, true)

	rec := doRequest(e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "Secret123!",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.NotEmpty(t, body["access_token"])
	require.NotEmpty(t, body["refresh_token"])

	user := body["user"].(map[string]any)
	require.Equal(t, "alice", user["username"])
	require.Equal(t, "user", user["role"])
}

func TestLoginWrongPassword(t *testing.T) {
	e, svc := newAuthServer(t)
	seedUser(t, svc.DB, "alice", "Secret123!", models.RoleUser, true)

	rec := doRequest(e, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong-password",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	body := decodeBody(t, rec)
	require.NotContains(t, body, "access_token")
	require.NotContains(t, body, "refresh_token")
	require.Equal(t, "invalid username or password", body["message"])
}

func TestSignup(t *testing.T) {
	e, _ := newAuthServer(t)

	rec := doRequest(e, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": "bob",
		"password": "password",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "bob", body["username"])
	require.Equal(t, "user", body["role"])
	require.Equal(t, false, body["is_verified"])
	require.NotContains(t, body, "password_hash")

	rec = doRequest(e, http.MethodPost, "/api/v1/auth/signup", map[string]string{
		"username": "bob",
		"password": "password",
	}, "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestRefreshFlow(t *testing.T) {
	e, svc := newAuthServer(t)
	seedUser(t, svc.DB, "alice", "Secret123!", models.RoleUser, true)

	accessToken, refreshToken := loginTokens(t, e, "alice", "Secret123!")

	rec := doRequest(e, http.MethodGet, "/api/v1/auth/refresh", nil, refreshToken)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.NotEmpty(t, body["access_token"])

	// An access token is rejected by the refresh endpoint.
	rec = doRequest(e, http.MethodGet, "/api/v1/auth/refresh", nil, accessToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRouteRequiresToken(t *testing.T) {
	e, svc := newAuthServer(t)
	seedUser(t, svc.DB, "alice", "Secret123!", models.RoleUser, true)

	rec := doRequest(e, http.MethodGet, "/api/v1/auth/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	accessToken, _ := loginTokens(t, e, "alice", "Secret123!")
	rec = doRequest(e, http.MethodGet, "/api/v1/auth/me", nil, accessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "alice", body["username"])
	require.NotContains(t, body, "password_hash")
}

func TestProtectedRouteExpiredToken(t *testing.T) {
	e, svc := newAuthServer(t)
	user := seedUser(t, svc.DB, "alice", "Secret123!", models.RoleUser, true)

	expired, err := svc.Codec.Issue(tokens.UserClaims{
		UID:      user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, -time.Second, false)
	require.NoError(t, err)

	rec := doRequest(e, http.MethodGet, "/api/v1/auth/me", nil, expired)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "token has expired", decodeBody(t, rec)["message"])
}

func TestAdminOnlyRoute(t *testing.T) {
	e, svc := newAuthServer(t)
	seedUser(t, svc.DB, "alice", "Secret123!", models.RoleUser, true)
	seedUser(t, svc.DB, "root", "Secret123!", models.RoleAdmin, true)

	userToken, _ := loginTokens(t, e, "alice", "Secret123!")
	rec := doRequest(e, http.MethodGet, "/api/v1/admin/ping", nil, userToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "operation not permitted", decodeBody(t, rec)["message"])

	adminToken, _ := loginTokens(t, e, "root", "Secret123!")
	rec = doRequest(e, http.MethodGet, "/api/v1/admin/ping", nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLogoutFlow(t *testing.T) {
	e, svc := newAuthServer(t)
	seedUser(t, svc.DB, "alice", "Secret123!", models.RoleUser, true)

	accessToken, _ := loginTokens(t, e, "alice", "Secret123!")

	rec := doRequest(e, http.MethodGet, "/api/v1/auth/logout", nil, accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "logged out", decodeBody(t, rec)["message"])

	// The revoked token no longer opens protected routes.
	rec = doRequest(e, http.MethodGet, "/api/v1/auth/me", nil, accessToken)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "token has been revoked", decodeBody(t, rec)["message"])

	// A second logout with the same token still succeeds.
	rec = doRequest(e, http.MethodGet, "/api/v1/auth/logout", nil, accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUnverifiedUserForbidden(t *testing.T) {
	e, svc := newAuthServer(t)
	seedUser(t, svc.DB, "bob", "password", models.RoleUser, false)

	accessToken, _ := loginTokens(t, e, "bob", "password")
	rec := doRequest(e, http.MethodGet, "/api/v1/auth/me", nil, accessToken)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
