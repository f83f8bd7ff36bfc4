package repository

import (
	"context"
	"errors"
	"time"

	"github.com/clusterboard/dashboard-api/internal/model"
)

// ErrUserNotFound is the sentinel for a missing credential-store record.
// Callers branch on it; it must never leak to an HTTP response as anything
// other than invalid credentials.
var ErrUserNotFound = errors.New("user does not exist")

type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	SetEnabled(ctx context.Context, username string, enabled bool) error
	Count(ctx context.Context) (int, error)
}

// AttemptRepository tracks consecutive failed logins per username. Increment
// must be atomic so concurrent failures cannot lose updates.
type AttemptRepository interface {
	Get(ctx context.Context, username string) (int, error)
	Increment(ctx context.Context, username string) (int, error)
	Reset(ctx context.Context, username string) error
}

// TokenBlacklist records revoked token IDs until their natural expiry.
type TokenBlacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}
