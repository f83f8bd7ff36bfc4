package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/clusterboard/dashboard-api/internal/repository"
)

const blacklistPrefix = "blacklist"

// Blacklist stores revoked token IDs in Redis with a TTL matching the
// remaining token lifetime, so entries expire on their own once the token
// would no longer verify anyway.
type Blacklist struct {
	client *red.Client
}

func NewBlacklist(url string) (*Blacklist, error) {
	opts, err := red.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := red.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Blacklist{client: client}, nil
}

func (b *Blacklist) Add(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("jti must not be empty")
	}
	if ttl <= 0 {
		// Token already expired; nothing to revoke.
		return nil
	}

	key := fmt.Sprintf("%s:%s", blacklistPrefix, jti)
	if err := b.client.Set(ctx, key, "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("redis set blacklisted jti: %w", err)
	}
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, jti string) (bool, error) {
	key := fmt.Sprintf("%s:%s", blacklistPrefix, jti)
	if err := b.client.Get(ctx, key).Err(); err != nil {
		if errors.Is(err, red.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get blacklisted jti: %w", err)
	}
	return true, nil
}

func (b *Blacklist) Close() error {
	return b.client.Close()
}

var _ repository.TokenBlacklist = (*Blacklist)(nil)
