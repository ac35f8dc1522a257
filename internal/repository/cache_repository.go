package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

// cacheNamespace prefixes every cache key so gateway entries can be
// inspected and flushed without touching report job records in the same
// Redis database.
const cacheNamespace = "gw:"

// deleteChunk bounds a single DEL so invalidation never ships a huge
// argument list in one command.
const deleteChunk = 128

// CacheRepository stores composed dashboard payloads in Redis as JSON.
type CacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewCacheRepository constructs a cache repository.
func NewCacheRepository(client *redis.Client, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, logger: logger}
}

func namespaced(key string) string {
	return cacheNamespace + key
}

// Get retrieves and unmarshals the cached value into dest. An entry that no
// longer unmarshals into the current payload shape is purged and reported
// as a miss, so stale shapes heal themselves after a deploy.
func (r *CacheRepository) Get(ctx context.Context, key string, dest any) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	nskey := namespaced(key)
	raw, err := r.client.Get(ctx, nskey).Bytes()
	if err == redis.Nil {
		return appErrors.ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get %s: %w", nskey, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("purging unreadable cache entry", zap.String("key", nskey), zap.Error(err))
		_ = r.client.Del(ctx, nskey).Err()
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set marshals the value and stores it under the namespaced key with the
// given TTL.
func (r *CacheRepository) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	nskey := namespaced(key)
	if err := r.client.Set(ctx, nskey, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", nskey, err)
	}
	return nil
}

// DeleteByPattern removes cache entries matching the pattern. Keys are
// gathered through SCAN, never KEYS, and deleted in bounded chunks.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}
	nspattern := namespaced(pattern)

	var keys []string
	iter := r.client.Scan(ctx, 0, nspattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= deleteChunk {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete chunk for %s: %w", nspattern, err)
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan pattern %s: %w", nspattern, err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete %d keys for %s: %w", len(keys), nspattern, err)
	}
	return nil
}
