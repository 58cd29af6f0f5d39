package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tdminh/hrm-backend/internal/blocklist"
	"github.com/tdminh/hrm-backend/internal/hash"
	"github.com/tdminh/hrm-backend/internal/logging"
	"github.com/tdminh/hrm-backend/internal/models"
	"github.com/tdminh/hrm-backend/internal/tokens"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrUserAlreadyExists      = errors.New("user already exists")
	ErrAccessTokenRequired    = errors.New("access token required")
	ErrRefreshTokenRequired   = errors.New("refresh token required")
	ErrTokenRevoked           = errors.New("token revoked")
	ErrInsufficientPermission = errors.New("insufficient permission")
	ErrDependencyUnavailable  = errors.New("dependency unavailable")
)

// AuthService owns the session token lifecycle: login, verification,
// refresh, logout and role gating. One instance is built at startup and
// injected into the handlers.
type AuthService struct {
	DB         *gorm.DB
	Codec      *tokens.Codec
	Blocklist  blocklist.Registry
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         tokens.UserClaims
}

// dummyHash is compared against on the unknown-username path so a login
// attempt costs one bcrypt comparison whether or not the account exists.
var dummyHash, _ = hash.HashPassword("login-timing-pad")

func (s *AuthService) Register(ctx context.Context, username, password, role string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "username", username)

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, err
	}
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
	}
	tx := s.DB.WithContext(ctx).Where("username = ?", username).FirstOrCreate(&user)
	if tx.Error != nil {
		l.Error("register_failed", "error", tx.Error)
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, tx.Error)
	}
	if tx.RowsAffected == 0 {
		l.Warn("register_failed", "reason", "username taken")
		return nil, ErrUserAlreadyExists
	}

	l.Info("register_successful", "user_id", user.ID)
	return &user, nil
}

// Login checks the credentials and issues an access/refresh token pair
// carrying the same redacted user summary. Unknown username and wrong
// password collapse into the same error.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			hash.CheckPassword(dummyHash, password)
			l.Warn("login_failed", "reason", "unknown username")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch")
		return nil, ErrInvalidCredentials
	}

	claims := tokens.UserClaims{
		UID:      user.ID,
		Username: user.Username,
		Role:     user.Role,
	}

	accessToken, err := s.Codec.Issue(claims, s.AccessTTL, false)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign access token", "error", err)
		return nil, err
	}
	refreshToken, err := s.Codec.Issue(claims, s.RefreshTTL, true)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign refresh token", "error", err)
		return nil, err
	}

	l.Info("login_successful", "user_id", user.ID)
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         claims,
	}, nil
}

// ParseAccess decodes an access token without consulting the revocation
// registry. Logout uses it so that revoking an already revoked token stays
// harmless.
func (s *AuthService) ParseAccess(raw string) (*tokens.Claims, error) {
	claims, err := s.Codec.Parse(raw)
	if err != nil {
		return nil, err
	}
	if claims.Refresh {
		return nil, ErrAccessTokenRequired
	}
	return claims, nil
}

// VerifyAccess decodes an access token and checks its jti against the
// revocation registry. A registry failure denies the request.
func (s *AuthService) VerifyAccess(ctx context.Context, raw string) (*tokens.Claims, error) {
	claims, err := s.ParseAccess(raw)
	if err != nil {
		return nil, err
	}
	revoked, err := s.Blocklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

func (s *AuthService) VerifyRefresh(ctx context.Context, raw string) (*tokens.Claims, error) {
	claims, err := s.Codec.Parse(raw)
	if err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, ErrRefreshTokenRequired
	}
	revoked, err := s.Blocklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Refresh mints a new access token off a valid refresh token. The refresh
// token itself is neither rotated nor invalidated.
func (s *AuthService) Refresh(ctx context.Context, rawRefresh string) (string, error) {
	claims, err := s.VerifyRefresh(ctx, rawRefresh)
	if err != nil {
		return "", err
	}
	return s.Codec.Issue(claims.User, s.AccessTTL, false)
}

// Authorize allows the request iff the claims' role is in allowed and the
// underlying account is verified. Pure check, no side effects.
func (s *AuthService) Authorize(ctx context.Context, claims *tokens.Claims, allowed ...string) error {
	ok := false
	for _, role := range allowed {
		if claims.User.Role == role {
			ok = true
			break
		}
	}
	if !ok {
		return ErrInsufficientPermission
	}

	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", claims.User.UID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInsufficientPermission
		}
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}
	if !user.IsVerified {
		return ErrInsufficientPermission
	}
	return nil
}

// Logout inserts the token's jti into the registry for the remainder of the
// token's life. Revoking twice is harmless.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout", "user_id", claims.User.UID)

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.Blocklist.Add(ctx, claims.ID, ttl); err != nil {
		l.Error("logout_failed", "reason", "cannot reach revocation registry", "error", err)
		return fmt.Errorf("%w: %v", ErrDependencyUnavailable, err)
	}

	l.Info("logout_successful")
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
