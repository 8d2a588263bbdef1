// internal/app/system/token/token.go

// Package token mints and verifies the signed bearer credentials issued at
// login. Tokens are HS256 JWTs carrying the user id as subject with a
// 24-hour default lifetime; every API request without a cookie session is
// authenticated through Verify.
package token

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is the token lifetime used when none is configured.
const DefaultTTL = 24 * time.Hour

var (
	// ErrInvalidToken covers malformed tokens, bad signatures, and wrong
	// signing algorithms.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for tokens past their expiry.
	ErrExpiredToken = errors.New("token expired")
)

// Manager signs and verifies bearer tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager builds a Manager. The secret must be non-empty; ttl of zero
// means DefaultTTL.
func NewManager(secret string, ttl time.Duration) (*Manager, error) {
	if secret == "" {
		return nil, fmt.Errorf("token secret is empty; provide ≥32 random chars")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Mint issues a signed token for the given user id.
func (m *Manager) Mint(userID string) (string, error) {
	now := m.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the embedded user id.
func (m *Manager) Verify(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidToken
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// FromHeader extracts the bearer token from an Authorization header.
// The second return is false when the header is absent or not Bearer.
func FromHeader(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", false
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	if tok == "" {
		return "", false
	}
	return tok, true
}
