// Package token issues and validates signed session tokens.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/meridian-hr/meridian/internal/identity"
	"github.com/meridian-hr/meridian/internal/platform/httpx"
)

// Kind distinguishes what a token may be used for.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Claims is the payload embedded in every signed token.
type Claims struct {
	UserID int64 `json:"user_id"`
	Kind   Kind  `json:"kind"`
	jwt.RegisteredClaims
}

// Config holds the signing secret and lifetime policy. It is constructed once
// at process start and injected; no package state.
type Config struct {
	Secret      []byte
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	RememberTTL time.Duration
}

// Service signs and verifies session tokens. Issuance and validation are pure
// computations; the service holds no mutable state.
type Service struct {
	cfg Config
}

// NewService constructs a token service.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// Issue produces a signed token of the given kind expiring after ttl.
func (s *Service) Issue(user identity.User, kind Kind, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: user.ID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// IssueAccess issues an access token. A remember-me login substitutes the long
// lifetime at issuance time; nothing about it is embedded in the token.
func (s *Service) IssueAccess(user identity.User, rememberMe bool) (string, error) {
	ttl := s.cfg.AccessTTL
	if rememberMe {
		ttl = s.cfg.RememberTTL
	}
	return s.Issue(user, KindAccess, ttl)
}

// IssueRefresh issues a refresh token with the refresh lifetime.
func (s *Service) IssueRefresh(user identity.User) (string, error) {
	return s.Issue(user, KindRefresh, s.cfg.RefreshTTL)
}

// Validate verifies signature and expiry and returns the embedded claims.
// Malformed, tampered and expired tokens all fail with Unauthorized.
func (s *Service) Validate(raw string) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, httpx.ErrUnauthorized
	}
	return claims, nil
}
