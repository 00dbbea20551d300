// util/cache_service.go
package util

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ucook/accessflow/db"
	logger "github.com/ucook/accessflow/logging"
)

// CacheService memoises ownership lookups. A nil receiver or a nil redis
// client turns every call into a miss.
type CacheService struct {
	redis *db.Redis
	ttl   time.Duration
}

func NewCacheService(redis *db.Redis, ttl time.Duration) *CacheService {
	return &CacheService{redis: redis, ttl: ttl}
}

func (c *CacheService) enabled() bool {
	return c != nil && c.redis != nil && c.redis.Client != nil
}

func (c *CacheService) GetOwnership(ctx context.Context, userID, systemID string) (isOwner bool, found bool) {
	if !c.enabled() {
		return false, false
	}
	isOwner, found, err := c.redis.GetCachedOwnership(ctx, userID, systemID)
	if err != nil {
		logger.Warn("Ownership cache read failed", zap.Error(err))
		return false, false
	}
	return isOwner, found
}

func (c *CacheService) SetOwnership(ctx context.Context, userID, systemID string, isOwner bool) {
	if !c.enabled() {
		return
	}
	if err := c.redis.CacheOwnership(ctx, userID, systemID, isOwner, c.ttl); err != nil {
		logger.Warn("Ownership cache write failed", zap.Error(err))
	}
}

func (c *CacheService) DeleteOwnership(ctx context.Context, userID, systemID string) {
	if !c.enabled() {
		return
	}
	if err := c.redis.DeleteCachedOwnership(ctx, userID, systemID); err != nil {
		logger.Warn("Ownership cache invalidation failed", zap.Error(err))
	}
}
