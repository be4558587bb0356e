package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sahay/internal/identity"
	id "sahay/pkg/domain"
	"sahay/pkg/platform/sentinel"
)

const viewKeyPrefix = "view:account:"

// Redis is the shared-deployment cache. Views are stored as JSON under a
// per-account key with the TTL applied by SET, so expiry needs no sweeper
// here either.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisOption func(*Redis)

// WithRedisTTL overrides the default entry lifetime.
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(r *Redis) {
		r.ttl = ttl
	}
}

func NewRedis(client *redis.Client, opts ...RedisOption) *Redis {
	r := &Redis{client: client, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func viewKey(accountID id.AccountID) string {
	return viewKeyPrefix + accountID.String()
}

func (r *Redis) Get(ctx context.Context, accountID id.AccountID) (*identity.CombinedView, error) {
	raw, err := r.client.Get(ctx, viewKey(accountID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var view identity.CombinedView
	if err := json.Unmarshal(raw, &view); err != nil {
		// A corrupt entry behaves like a miss; the next Set repairs it.
		return nil, sentinel.ErrNotFound
	}
	return &view, nil
}

func (r *Redis) Set(ctx context.Context, accountID id.AccountID, view *identity.CombinedView) error {
	raw, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal view: %w", err)
	}
	if err := r.client.Set(ctx, viewKey(accountID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, accountID id.AccountID) error {
	if err := r.client.Del(ctx, viewKey(accountID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
