package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pricing-intel-engine/internal/domain"
	"pricing-intel-engine/internal/storage"
)

// RedisStore is a Redis-backed implementation of Store for sharing
// cached recommendations across engine replicas. SET NX preserves the
// write-once property per fingerprint.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
// ttl <= 0 stores entries without expiry.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

// Compile-time interface check.
var _ Store = (*RedisStore)(nil)

func redisKey(fingerprint string) string {
	return "recommendation:" + fingerprint
}

// Get retrieves a cached recommendation.
func (s *RedisStore) Get(ctx context.Context, fingerprint string) (*domain.PriceRecommendation, bool, error) {
	data, err := s.client.Get(ctx, redisKey(fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", mapRedisError(err))
	}

	var rec domain.PriceRecommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false, fmt.Errorf("decode cached recommendation: %w", err)
	}
	return &rec, true, nil
}

// Put stores a recommendation with SET NX so an existing entry is never
// overwritten.
func (s *RedisStore) Put(ctx context.Context, fingerprint string, rec *domain.PriceRecommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recommendation: %w", err)
	}

	if err := s.client.SetNX(ctx, redisKey(fingerprint), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", mapRedisError(err))
	}
	return nil
}

// mapRedisError marks client failures as storage.ErrUnavailable; the
// cache has no constraint errors of its own, so anything beyond a miss
// is the backend being unreachable.
func mapRedisError(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	return fmt.Errorf("%w: %v", storage.ErrUnavailable, err)
}

// Close releases the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
