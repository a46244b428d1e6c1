package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps revoked refresh-token ids until their natural
// expiry. Keys carry a TTL equal to the token's remaining lifetime, so the
// set never grows beyond the live token population.
type RevocationStore struct {
	client *redis.Client
}

func New(ctx context.Context, addr, password string, db int) (*RevocationStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return &RevocationStore{client: client}, nil
}

func (s *RevocationStore) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("redis.RevocationStore.Close: %w", err)
	}
	return nil
}

// Revoke marks a token id as revoked for ttl.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if err := s.client.Set(ctx, revocationKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis.RevocationStore.Revoke: %w", err)
	}
	return nil
}

// IsRevoked reports whether a token id has been revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.client.Get(ctx, revocationKey(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis.RevocationStore.IsRevoked: %w", err)
	}
	return true, nil
}

// revocationKey returns the Redis key for a revoked token id.
func revocationKey(jti string) string {
	return "revoked:" + jti
}
