package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"melodex/db"

	"github.com/go-redis/redis/v8"
)

// Versioned cache for analytics query results. Every ingestion call that
// persisted rows (and every reset) bumps the version key, which orphans all
// previously cached results; orphaned entries simply expire. This keeps the
// cached analytics consistent without tracking which query touches which
// table.

const versionKey = "analytics:version"

// Invalidate bumps the cache version, orphaning every cached result.
func Invalidate(ctx context.Context) error {
	if db.RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	if err := db.RedisClient.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump analytics cache version: %w", err)
	}
	return nil
}

// GetResult loads a cached analytics result into dest. The second return is
// false on a miss.
func GetResult(ctx context.Context, queryKey string, dest interface{}) (bool, error) {
	if db.RedisClient == nil {
		return false, fmt.Errorf("redis client not initialized")
	}

	key, err := resultKey(ctx, queryKey)
	if err != nil {
		return false, err
	}

	raw, err := db.RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cached analytics result: %w", err)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached analytics result: %w", err)
	}
	return true, nil
}

// SetResult caches an analytics result under the current version.
func SetResult(ctx context.Context, queryKey string, val interface{}, ttl time.Duration) error {
	if db.RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}

	key, err := resultKey(ctx, queryKey)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics result: %w", err)
	}

	if err := db.RedisClient.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache analytics result: %w", err)
	}
	return nil
}

func resultKey(ctx context.Context, queryKey string) (string, error) {
	ver, err := db.RedisClient.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		return "", fmt.Errorf("failed to read analytics cache version: %w", err)
	}
	return fmt.Sprintf("analytics:v%d:%s", ver, queryKey), nil
}
