// Package cache is a thin Redis wrapper used to serve repeated
// box-score reads without hitting Postgres.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// BoxscoreTTL is how long a cached match box score stays fresh. Match
// data is immutable once ingested, but a short TTL keeps a re-ingested
// failed upload from serving stale reads.
const BoxscoreTTL = 5 * time.Minute

// RedisCache handles caching and fast state storage.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a new Redis cache connection.
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
	}, nil
}

// Close closes the Redis connection.
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

// Client returns the underlying Redis client.
func (rc *RedisCache) Client() *redis.Client {
	return rc.client
}

// HealthCheck pings Redis to verify connection.
func (rc *RedisCache) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// BoxscoreKey builds the cache key for one match's box score.
func BoxscoreKey(matchID int64) string {
	return fmt.Sprintf("boxscore:match:%d", matchID)
}

// GetJSON loads a cached value into out. Absent keys return ErrMiss.
func (rc *RedisCache) GetJSON(ctx context.Context, key string, out any) error {
	raw, err := rc.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(raw), out)
}

// SetJSON stores a value under key with the given TTL.
func (rc *RedisCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return rc.client.Set(ctx, key, raw, ttl).Err()
}

// Delete removes keys.
func (rc *RedisCache) Delete(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}
