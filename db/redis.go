// db/redis.go
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ucook/accessflow/config"
	logger "github.com/ucook/accessflow/logging"
)

// Redis backs the ownership cache and the rate limiter. Both are optional;
// callers treat a nil *Redis as "disabled".
type Redis struct {
	Client *redis.Client
}

func InitRedis(cfg config.RedisConfiguration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Successfully connected to Redis", zap.String("addr", cfg.Addr))
	return &Redis{Client: client}, nil
}

func (r *Redis) Close() {
	if r == nil || r.Client == nil {
		return
	}
	if err := r.Client.Close(); err != nil {
		logger.Error("Error closing Redis connection", zap.Error(err))
	}
}

func ownershipKey(userID, systemID string) string {
	return fmt.Sprintf("owner:%s:%s", userID, systemID)
}

func (r *Redis) CacheOwnership(ctx context.Context, userID, systemID string, isOwner bool, ttl time.Duration) error {
	value := "0"
	if isOwner {
		value = "1"
	}
	if err := r.Client.Set(ctx, ownershipKey(userID, systemID), value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache ownership: %w", err)
	}
	logger.Debug("Ownership cached", zap.String("userID", userID), zap.String("systemID", systemID))
	return nil
}

// GetCachedOwnership returns found=false on a cache miss.
func (r *Redis) GetCachedOwnership(ctx context.Context, userID, systemID string) (isOwner bool, found bool, err error) {
	value, err := r.Client.Get(ctx, ownershipKey(userID, systemID)).Result()
	if err == redis.Nil {
		return false, false, nil
	} else if err != nil {
		return false, false, fmt.Errorf("failed to get ownership from cache: %w", err)
	}
	return value == "1", true, nil
}

func (r *Redis) DeleteCachedOwnership(ctx context.Context, userID, systemID string) error {
	if err := r.Client.Del(ctx, ownershipKey(userID, systemID)).Err(); err != nil {
		return fmt.Errorf("failed to delete ownership from cache: %w", err)
	}
	return nil
}

// RateLimit implements a sliding window over a sorted set per key.
func (r *Redis) RateLimit(ctx context.Context, key string, limit int, per time.Duration) (bool, error) {
	pipe := r.Client.Pipeline()
	now := time.Now().UnixNano()
	key = fmt.Sprintf("ratelimit:%s", key)

	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", now-(per.Nanoseconds())))
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: now})
	pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, per)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit commands: %w", err)
	}

	count := cmds[2].(*redis.IntCmd).Val()
	allowed := count <= int64(limit)
	logger.Debug("Rate limit check",
		zap.String("key", key),
		zap.Int64("count", count),
		zap.Int("limit", limit),
		zap.Bool("allowed", allowed))
	return allowed, nil
}
