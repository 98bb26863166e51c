// Package redisstore keeps session results in Redis with an optional expiry.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"parseview/internal/config"
	"parseview/internal/domain"
	"parseview/internal/port"
)

// Store implements port.ResultStore with one string key per session.
type Store struct {
	client    redis.UniversalClient
	keyPrefix string
	ttl       time.Duration
}

var _ port.ResultStore = (*Store)(nil)

// NewClient creates a Redis client and verifies the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return client, nil
}

// New wraps an existing client. A zero ttl stores keys without expiry.
func New(client redis.UniversalClient, keyPrefix string, ttl time.Duration) *Store {
	return &Store{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// Key returns the Redis key for a session.
func (s *Store) Key(sessionID string) string {
	return s.keyPrefix + sessionID
}

func (s *Store) Put(ctx context.Context, result *domain.SessionResult) error {
	if err := domain.ValidateSessionID(result.SessionID); err != nil {
		return err
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("redisStore.Put: encoding result: %w", err)
	}
	if err := s.client.Set(ctx, s.Key(result.SessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redisStore.Put: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, sessionID string) (*domain.SessionResult, error) {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.Key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("redisStore.Get: %w", err)
	}
	var result domain.SessionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("redisStore.Get: decoding result: %w", err)
	}
	return &result, nil
}

func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := domain.ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.Key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redisStore.Delete: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
