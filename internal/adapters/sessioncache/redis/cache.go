// Package redis keeps authorized upstream sessions in redis so polling cycles
// can skip the login round trip while the session is still valid.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/wm-pickup-cli/internal/domain"
	"github.com/bnema/wm-pickup-cli/internal/ports"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "wmp:"

// kv is the subset of redis.Cmdable the cache needs.
type kv interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type Cache struct {
	client kv
	closer func() error
}

var _ ports.SessionCache = (*Cache)(nil)

func NewCache(ctx context.Context, redisURL string) (*Cache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{client: client, closer: client.Close}, nil
}

func newCache(client kv) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Get(ctx context.Context, key string) (domain.Session, bool, error) {
	raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("read session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, false, fmt.Errorf("decode session: %w", err)
	}

	return session, true, nil
}

// Put stores the session for ttl, shortened to the token expiry when that
// comes first. An already expired session is not stored.
func (c *Cache) Put(ctx context.Context, key string, session domain.Session, ttl time.Duration) error {
	if !session.ExpiresAt.IsZero() {
		if left := time.Until(session.ExpiresAt); ttl <= 0 || left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return nil
	}

	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	return nil
}

func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

func (c *Cache) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
