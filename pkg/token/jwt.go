package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/clusterboard/dashboard-api/internal/repository"
)

const issuer = "dashboard-api"

var ErrTokenRevoked = errors.New("token has been revoked")

// Manager mints and validates signed session tokens. Revocation goes through
// the blacklist; tokens are never deleted before their natural expiry.
type Manager struct {
	secret    []byte
	ttl       time.Duration
	blacklist repository.TokenBlacklist
}

func NewManager(secret string, ttl time.Duration, blacklist repository.TokenBlacklist) *Manager {
	return &Manager{
		secret:    []byte(secret),
		ttl:       ttl,
		blacklist: blacklist,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

func (m *Manager) Generate(username string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.New().String(),
		Subject:   username,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature, expiry and the blacklist, and resolves the token
// back to its username.
func (m *Manager) Validate(ctx context.Context, raw string) (string, error) {
	claims, err := m.parse(raw, true)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	revoked, err := m.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return "", fmt.Errorf("failed to check blacklist: %w", err)
	}
	if revoked {
		return "", ErrTokenRevoked
	}

	return claims.Subject, nil
}

// Blacklist revokes a token until its expiry. Idempotent: revoking an
// already-revoked, expired or unparseable token is not an error.
func (m *Manager) Blacklist(ctx context.Context, raw string) error {
	claims, err := m.parse(raw, false)
	if err != nil {
		return nil
	}

	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	return m.blacklist.Add(ctx, claims.ID, ttl)
}

func (m *Manager) parse(raw string, validateClaims bool) (*jwt.RegisteredClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !validateClaims {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
