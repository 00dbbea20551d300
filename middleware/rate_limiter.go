// middleware/rate_limiter.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ucook/accessflow/db"
	logger "github.com/ucook/accessflow/logging"
	"github.com/ucook/accessflow/util"
)

// RateLimiter caps requests per caller within a fixed window. Callers are
// keyed by user id once authenticated, by client IP before. A nil store
// disables limiting.
func RateLimiter(store *db.Redis, limit int, per time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil || store.Client == nil || limit <= 0 {
			c.Next()
			return
		}

		key := "ip:" + c.ClientIP()
		if userID, err := util.GetUserIDFromContext(c); err == nil {
			key = "user:" + userID
		}
		allowed, err := store.RateLimit(c.Request.Context(), key, limit, per)
		if err != nil {
			logger.Error("Rate limiting failed", zap.Error(err), zap.String("key", key))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limiting failed"})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Duration", per.String())

		if !allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", limit),
				zap.Duration("per", per))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}
