// Package idem remembers which order a payment session produced, so repeated
// finalize calls can answer without opening a transaction.
package idem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "idem:order:finalize:"
	DefaultTTL = 24 * time.Hour
)

type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// Cache is a hint only: the unique index on orders stays authoritative.
type Cache struct {
	rdb kv
	ttl time.Duration
}

func New(rdb redis.UniversalClient, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func Key(sessionID string) string {
	return keyPrefix + sessionID
}

func (c *Cache) Get(ctx context.Context, sessionID string) (uuid.UUID, bool, error) {
	v, err := c.rdb.Get(ctx, Key(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("idem get: %w", err)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("idem get: bad value %q: %w", v, err)
	}
	return id, true, nil
}

func (c *Cache) Set(ctx context.Context, sessionID string, orderID uuid.UUID) error {
	if err := c.rdb.Set(ctx, Key(sessionID), orderID.String(), c.ttl).Err(); err != nil {
		return fmt.Errorf("idem set: %w", err)
	}
	return nil
}
