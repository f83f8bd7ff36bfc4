package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/clusterboard/dashboard-api/internal/repository"
)

const cleanupInterval = 10 * time.Minute

// Blacklist is the in-process token blacklist used by single-node
// deployments. Entries carry the remaining token lifetime as TTL, which keeps
// the set bounded without a background sweeper of our own.
type Blacklist struct {
	store *cache.Cache
}

func NewBlacklist(defaultTTL time.Duration) *Blacklist {
	return &Blacklist{store: cache.New(defaultTTL, cleanupInterval)}
}

func (b *Blacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	b.store.Set(jti, struct{}{}, ttl)
	return nil
}

func (b *Blacklist) Contains(_ context.Context, jti string) (bool, error) {
	_, found := b.store.Get(jti)
	return found, nil
}

var _ repository.TokenBlacklist = (*Blacklist)(nil)
