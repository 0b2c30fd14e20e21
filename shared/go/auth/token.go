package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long a session token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for tokens that fail any verification check.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies HS256 session tokens whose subject is a user id.
//
// Every token carries the manager's audience and is only accepted by a manager
// with the same audience. User ids are only meaningful within one store, so the
// audience identifies the store that issued them.
type TokenManager struct {
	secret   []byte
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenManager creates a TokenManager signing with secret. The audience
// defaults to a random value, so tokens do not survive a new manager.
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret:   []byte(secret),
		audience: uuid.NewString(),
		ttl:      DefaultTokenTTL,
		now:      time.Now,
	}
}

// WithAudience returns a copy of the manager that issues and accepts tokens
// for audience only.
func (m *TokenManager) WithAudience(audience string) *TokenManager {
	clone := *m
	clone.audience = audience
	return &clone
}

// WithTTL returns a copy of the manager issuing tokens valid for ttl.
func (m *TokenManager) WithTTL(ttl time.Duration) *TokenManager {
	clone := *m
	clone.ttl = ttl
	return &clone
}

// GenerateToken issues a signed token for userID.
func (m *TokenManager) GenerateToken(userID int64) (string, error) {
	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(userID, 10),
		Audience:  jwt.ClaimStrings{m.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies token and returns the user id it was issued for.
func (m *TokenManager) ParseToken(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithAudience(m.audience),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return userID, nil
}
