package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tdminh/hrm-backend/internal/logging"
	"github.com/tdminh/hrm-backend/internal/service"
	"github.com/tdminh/hrm-backend/internal/tokens"
)

// Context keys set for downstream handlers.
const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"
	RoleKey   = "role"
)

type Middleware struct {
	Auth *service.AuthService
}

func New(auth *service.AuthService) *Middleware {
	return &Middleware{Auth: auth}
}

// RequireAccess verifies the Bearer access token and gates the route on the
// allowed role set before any handler logic runs.
func (m *Middleware) RequireAccess(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "require_access")

			raw, err := BearerToken(c)
			if err != nil {
				l.Warn("auth_failed", "status", 401, "reason", "missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
			}

			claims, err := m.Auth.VerifyAccess(ctx, raw)
			if err != nil {
				return authHTTPError(c, err)
			}

			if err := m.Auth.Authorize(ctx, claims, allowed...); err != nil {
				return authHTTPError(c, err)
			}

			c.Set(ClaimsKey, claims)
			c.Set(UserIDKey, claims.User.UID)
			c.Set(RoleKey, claims.User.Role)
			return next(c)
		}
	}
}

// BearerToken extracts the value of an `Authorization: Bearer <token>`
// header. Absence or a malformed value is a hard failure.
func BearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", errors.New("missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", errors.New("malformed authorization header")
	}
	return parts[1], nil
}

// ClaimsFromContext returns the claims RequireAccess stored for the request.
func ClaimsFromContext(c echo.Context) (*tokens.Claims, bool) {
	claims, ok := c.Get(ClaimsKey).(*tokens.Claims)
	return claims, ok
}

// authHTTPError maps verification failures onto generic client-facing
// responses; the specific failed check is only visible in the server log.
func authHTTPError(c echo.Context, err error) error {
	l := logging.FromContext(c.Request().Context()).With("middleware", "require_access")

	switch {
	case errors.Is(err, tokens.ErrTokenExpired):
		l.Warn("auth_failed", "status", 401, "reason", "token expired")
		return echo.NewHTTPError(http.StatusUnauthorized, "token has expired")
	case errors.Is(err, service.ErrTokenRevoked):
		l.Warn("auth_failed", "status", 401, "reason", "token revoked")
		return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
	case errors.Is(err, service.ErrAccessTokenRequired):
		l.Warn("auth_failed", "status", 401, "reason", "refresh token presented")
		return echo.NewHTTPError(http.StatusUnauthorized, "access token required")
	case errors.Is(err, service.ErrRefreshTokenRequired):
		l.Warn("auth_failed", "status", 401, "reason", "access token presented")
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token required")
	case errors.Is(err, service.ErrInsufficientPermission):
		l.Warn("auth_failed", "status", 403, "reason", "role not allowed or account unverified")
		return echo.NewHTTPError(http.StatusForbidden, "operation not permitted")
	case errors.Is(err, service.ErrDependencyUnavailable):
		l.Error("auth_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "service unavailable")
	default:
		l.Warn("auth_failed", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}
}
