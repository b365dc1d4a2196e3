package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// CacheStore is the subset of the redis repository derived-status caching needs.
type CacheStore interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService namespaces derived-status cache entries and hides cache
// failures from callers: a broken cache degrades to recomputation, never to a
// request error.
type CacheService struct {
	store    CacheStore
	keySpace string
	ttl      time.Duration
	enabled  bool
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewCacheService builds a CacheService. A nil store disables caching.
func NewCacheService(store CacheStore, keySpace string, ttl time.Duration, enabled bool, metrics *MetricsService, logger *zap.Logger) *CacheService {
	if keySpace == "" {
		keySpace = "vhub"
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{
		store:    store,
		keySpace: keySpace,
		ttl:      ttl,
		enabled:  enabled && store != nil,
		metrics:  metrics,
		logger:   logger,
	}
}

// Key builds a namespaced cache key: <keyspace>:<entity>:<parts...>.
func (s *CacheService) Key(entity models.EntityType, parts ...string) string {
	key := fmt.Sprintf("%s:%s", s.keySpace, entity)
	for _, p := range parts {
		key += ":" + p
	}
	return key
}

// Get loads a cached value into dest. Returns false on miss or cache failure.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) bool {
	if s == nil || !s.enabled {
		return false
	}

	err := s.store.Get(ctx, key, dest)
	if err == nil {
		s.metrics.ObserveCacheHit(true)
		return true
	}

	s.metrics.ObserveCacheHit(false)
	if !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
	}
	return false
}

// Set stores a value under the service TTL. Failures are logged, not returned.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}) {
	if s == nil || !s.enabled {
		return
	}
	if err := s.store.Set(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateEntity drops every cached entry derived from the given entity
// type. Import batches call this on completion so derived statuses are
// recomputed from fresh canonical data.
func (s *CacheService) InvalidateEntity(ctx context.Context, entity models.EntityType) {
	if s == nil || !s.enabled {
		return
	}
	pattern := fmt.Sprintf("%s:%s:*", s.keySpace, entity)
	if err := s.store.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
