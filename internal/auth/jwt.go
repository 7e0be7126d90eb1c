package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims defines the session token claims.
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Config holds the secret and knobs for session tokens. It is injected at
// construction so nothing in this package reads the environment.
type Config struct {
	Secret        []byte
	TokenLifetime time.Duration
	CookieSecure  bool
}

// TokenManager issues and verifies session tokens. Tokens are stateless:
// logout clears the cookie but an already-issued token stays valid until its
// natural expiry.
type TokenManager struct {
	cfg Config
}

// NewTokenManager creates a TokenManager from an explicit config.
func NewTokenManager(cfg Config) *TokenManager {
	return &TokenManager{cfg: cfg}
}

// Issue creates a signed session token for the given user ID.
func (m *TokenManager) Issue(userID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.TokenLifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.cfg.Secret)
}

// Verify parses a session token and validates its signature and expiry.
func (m *TokenManager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return m.cfg.Secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
