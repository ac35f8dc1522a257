package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/umarmf343/vea-2025-sub005/pkg/errors"
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService fronts the dashboard cache. The cache is strictly advisory:
// a broken Redis degrades to misses and log warnings, and never turns into
// a request error for the client.
type CacheService struct {
	store       CacheRepository
	metrics     *MetricsService
	fallbackTTL time.Duration
	logger      *zap.Logger
	enabled     bool
}

// NewCacheService constructs a cache service. A nil store or enabled=false
// yields a service where every lookup misses.
func NewCacheService(store CacheRepository, metrics *MetricsService, fallbackTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if fallbackTTL <= 0 {
		fallbackTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		store:       store,
		metrics:     metrics,
		fallbackTTL: fallbackTTL,
		logger:      logger,
		enabled:     enabled,
	}
}

// Enabled reports whether lookups can ever hit.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

// Get populates dest from the cache and reports whether it hit. Transport
// failures count as misses.
func (s *CacheService) Get(ctx context.Context, key string, dest any) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.store.Get(ctx, key, dest)
	s.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	return err == nil
}

// Set stores value under key, substituting the fallback TTL when the
// caller passes none.
func (s *CacheService) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.fallbackTTL
	}
	start := time.Now()
	err := s.store.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return err
}

// Invalidate drops every key matching the pattern.
func (s *CacheService) Invalidate(ctx context.Context, pattern string) error {
	if !s.Enabled() {
		return nil
	}
	err := s.store.DeleteByPattern(ctx, pattern)
	if err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
	return err
}
