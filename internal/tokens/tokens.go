package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// UserClaims is the redacted user summary embedded in every token.
type UserClaims struct {
	UID      string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Claims is the full token payload. Refresh discriminates refresh tokens
// from access tokens; a token without the field decodes as access.
type Claims struct {
	User    UserClaims `json:"user"`
	Refresh bool       `json:"refresh"`
	jwt.RegisteredClaims
}

type Codec struct {
	secret []byte
}

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret}
}

// Issue signs a token carrying user, an absolute expiry of now+ttl and a
// fresh random jti that the blocklist keys on.
func (c *Codec) Issue(user UserClaims, ttl time.Duration, refresh bool) (string, error) {
	now := time.Now()
	claims := Claims{
		User:    user,
		Refresh: refresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Parse verifies signature and expiry. On any failure no claims are
// returned; callers must not trust fields of a token that failed to parse.
func (c *Codec) Parse(raw string) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
