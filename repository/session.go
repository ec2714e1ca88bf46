package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storepay/database"
	"storepay/lib"

	"github.com/go-redis/redis/v8"
	"github.com/patrickmn/go-cache"
)

// Sessions live as long as a checkout reasonably can.
const sessionTTL = 24 * time.Hour

// RedisSessionStore backs lib.SessionStore with the shared redis client.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore() *RedisSessionStore {
	return &RedisSessionStore{client: database.RedisClient}
}

func (s *RedisSessionStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = sessionTTL
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}

// MemorySessionStore is the in-process fallback used in development and
// tests. Not shared across instances.
type MemorySessionStore struct {
	cache *cache.Cache
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{cache: cache.New(sessionTTL, 10*time.Minute)}
}

func (s *MemorySessionStore) Get(_ context.Context, key string) (string, bool, error) {
	value, found := s.cache.Get(key)
	if !found {
		return "", false, nil
	}
	return value.(string), true, nil
}

func (s *MemorySessionStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

// CheckoutSession is the per-session memo of the most recent created order:
// its id, the content fingerprint it was composed from, and the idempotency
// key used to create it. An unchanged fingerprint lets the checkout reuse
// the existing order instead of creating a duplicate.
type CheckoutSession struct {
	OrderID     string `json:"order_id"`
	Fingerprint string `json:"fingerprint"`
	RequestID   string `json:"request_id"`
}

func checkoutSessionKey(sessionID string) string {
	return "checkout:session:" + sessionID
}

// LoadCheckoutSession fetches the session memo, if any.
func LoadCheckoutSession(ctx context.Context, store lib.SessionStore, sessionID string) (*CheckoutSession, error) {
	raw, found, err := store.Get(ctx, checkoutSessionKey(sessionID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}

	var session CheckoutSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		// Corrupt entry, treat as absent.
		_ = store.Delete(ctx, checkoutSessionKey(sessionID))
		return nil, nil
	}
	return &session, nil
}

// SaveCheckoutSession persists the memo for the session's lifetime.
func SaveCheckoutSession(ctx context.Context, store lib.SessionStore, sessionID string, session CheckoutSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal checkout session: %w", err)
	}
	return store.Set(ctx, checkoutSessionKey(sessionID), string(raw), sessionTTL)
}

// ClearCheckoutSession drops the memo, forcing the next checkout to create
// a fresh order.
func ClearCheckoutSession(ctx context.Context, store lib.SessionStore, sessionID string) error {
	return store.Delete(ctx, checkoutSessionKey(sessionID))
}
