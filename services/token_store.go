package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore remembers revoked token ids until the tokens would have expired anyway
type TokenStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

var tokenStoreInstance TokenStore

// InitTokenStore connects to Redis when redisURL is set and falls back to
// an in-process store otherwise
func InitTokenStore(ctx context.Context, redisURL string) (TokenStore, error) {
	if redisURL == "" {
		tokenStoreInstance = NewMemoryTokenStore()
		return tokenStoreInstance, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	tokenStoreInstance = NewRedisTokenStore(client)
	return tokenStoreInstance, nil
}

// GetTokenStore returns the initialized token store
func GetTokenStore() TokenStore {
	return tokenStoreInstance
}

// SetTokenStore sets the token store instance (primarily for testing)
func SetTokenStore(store TokenStore) {
	tokenStoreInstance = store
}

const revokedKeyPrefix = "revoked_token:"

// RedisTokenStore keeps revocations in Redis with a TTL matching the token lifetime
type RedisTokenStore struct {
	client redis.UniversalClient
}

// NewRedisTokenStore creates a Redis-backed store
func NewRedisTokenStore(client redis.UniversalClient) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

// Revoke marks jti as revoked until expiresAt
func (s *RedisTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedKeyPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked
func (s *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// MemoryTokenStore is a single-process TokenStore for development and tests
type MemoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenStore creates an empty in-memory store
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke marks jti as revoked until expiresAt
func (s *MemoryTokenStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, exp := range s.revoked {
		if !exp.After(now) {
			delete(s.revoked, id)
		}
	}
	if expiresAt.After(now) {
		s.revoked[jti] = expiresAt
	}
	return nil
}

// IsRevoked reports whether jti was revoked and has not yet expired
func (s *MemoryTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.revoked[jti]
	return ok && exp.After(s.now()), nil
}
