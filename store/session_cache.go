package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of go-redis client methods used by the session
// cache. Keeping it as an interface enables mocking in tests.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Close() error
}

// CachedSessionStore wraps a SessionStore with a read-through Redis cache
// keyed by session token. Lookups hit Redis first; writes invalidate.
// Cache failures fall back to the underlying store, never to an error.
type CachedSessionStore struct {
	inner  SessionStore
	client RedisClient
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSessionStore creates a CachedSessionStore. A zero ttl defaults
// to five minutes; entries also never outlive the session expiry.
func NewCachedSessionStore(inner SessionStore, client RedisClient, ttl time.Duration, logger *slog.Logger) *CachedSessionStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSessionStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func sessionKey(token string) string {
	return "homebase:session:" + token
}

func (c *CachedSessionStore) Create(ctx context.Context, s *Session) error {
	return c.inner.Create(ctx, s)
}

func (c *CachedSessionStore) GetByToken(ctx context.Context, token string) (*Session, error) {
	val, err := c.client.Get(ctx, sessionKey(token)).Result()
	if err == nil {
		var sess Session
		if jsonErr := json.Unmarshal([]byte(val), &sess); jsonErr == nil {
			return &sess, nil
		}
		// Corrupt entry; drop it and fall through to the store.
		_ = c.client.Del(ctx, sessionKey(token)).Err()
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("session cache read failed", "error", err)
	}

	sess, err := c.inner.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	ttl := c.ttl
	if remaining := time.Until(sess.ExpiresAt); remaining > 0 && remaining < ttl {
		ttl = remaining
	}
	if b, jsonErr := json.Marshal(sess); jsonErr == nil {
		if setErr := c.client.Set(ctx, sessionKey(token), b, ttl).Err(); setErr != nil {
			c.logger.Warn("session cache write failed", "error", setErr)
		}
	}
	return sess, nil
}

func (c *CachedSessionStore) Update(ctx context.Context, s *Session) error {
	if err := c.inner.Update(ctx, s); err != nil {
		return err
	}
	if err := c.client.Del(ctx, sessionKey(s.Token)).Err(); err != nil {
		c.logger.Warn("session cache invalidate failed", "error", err)
	}
	return nil
}

func (c *CachedSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	// Token is not known from the id alone; find it so the cache entry can
	// be dropped along with the row.
	sessions, err := c.inner.List(ctx, SessionFilter{})
	if err == nil {
		for _, s := range sessions {
			if s.ID == id {
				_ = c.client.Del(ctx, sessionKey(s.Token)).Err()
				break
			}
		}
	}
	return c.inner.Delete(ctx, id)
}

func (c *CachedSessionStore) List(ctx context.Context, f SessionFilter) ([]*Session, error) {
	return c.inner.List(ctx, f)
}

func (c *CachedSessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	return c.inner.DeleteExpired(ctx)
}

// DialRedis connects a go-redis client and verifies it with PING.
func DialRedis(ctx context.Context, addr, password string, db int) (RedisClient, error) {
	opts := &redis.Options{Addr: addr, DB: db}
	if password != "" {
		opts.Password = password
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}
