package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tdminh/hrm-backend/internal/logging"
	authmw "github.com/tdminh/hrm-backend/internal/middleware/auth"
	"github.com/tdminh/hrm-backend/internal/models"
	"github.com/tdminh/hrm-backend/internal/mykafka"
	"github.com/tdminh/hrm-backend/internal/service"
	"github.com/tdminh/hrm-backend/internal/tokens"
)

type AuthHandler struct {
	Svc      *service.AuthService
	Producer *mykafka.Producer
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Password, models.RoleUser)
	if err != nil {
		if errors.Is(err, service.ErrUserAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, "user already exists")
		}
		l.Error("signup_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "signup failed")
	}

	publish(c, h.Producer, "user_events", user.ID, map[string]any{
		"type":     "user_registered",
		"user_id":  user.ID,
		"username": user.Username,
	})

	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_failed", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDependencyUnavailable) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
	}

	publish(c, h.Producer, "user_events", res.User.UID, map[string]any{
		"type":     "user_logged_in",
		"user_id":  res.User.UID,
		"username": res.User.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"message":       "login successful",
		"access_token":  res.AccessToken,
		"refresh_token": res.RefreshToken,
		"user": echo.Map{
			"uid":      res.User.UID,
			"username": res.User.Username,
			"role":     res.User.Role,
		},
	})
}

// Refresh mints a new access token off the Bearer refresh token. The
// refresh token is returned untouched in the sense that it stays valid.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	raw, err := authmw.BearerToken(c)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "reason", "missing bearer token")
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	accessToken, err := h.Svc.Refresh(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, tokens.ErrTokenExpired):
			l.Warn("refresh_failed", "status", 401, "reason", "refresh token expired")
			return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
		case errors.Is(err, service.ErrRefreshTokenRequired):
			l.Warn("refresh_failed", "status", 401, "reason", "access token presented")
			return echo.NewHTTPError(http.StatusUnauthorized, "refresh token required")
		case errors.Is(err, service.ErrDependencyUnavailable):
			l.Error("refresh_failed", "status", 503, "error", err)
			return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
		default:
			l.Warn("refresh_failed", "status", 401, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": accessToken,
	})
}

// Logout revokes the presented access token. Logging out twice with the
// same token succeeds both times.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	raw, err := authmw.BearerToken(c)
	if err != nil {
		l.Warn("logout_failed", "status", 401, "reason", "missing bearer token")
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	claims, err := h.Svc.ParseAccess(raw)
	if err != nil {
		l.Warn("logout_failed", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	if err := h.Svc.Logout(ctx, claims); err != nil {
		l.Error("logout_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

// Me returns the account behind the access token the middleware verified.
func (h *AuthHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := authmw.ClaimsFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	user, err := h.Svc.GetUser(ctx, claims.User.UID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	return c.JSON(http.StatusOK, user)
}
