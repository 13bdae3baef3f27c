package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PlayerRateLimit limits engine operations per player (not per IP) using
// Redis. Requires the JWT middleware to have run first.
func PlayerRateLimit(maxOps int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			// Redis not configured, fail-open
			c.Next()
			return
		}

		keyVal, exists := c.Get("player_key")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		playerKey, ok := keyVal.(string)
		if !ok || playerKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid player"})
			return
		}

		key := "op_rl:" + playerKey + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		ctx := context.Background()

		val, err := redisClient.Incr(ctx, key).Result()
		if err != nil {
			// On Redis error, fail-open
			c.Header("X-OpRateLimit-Error", "redis-error")
			c.Next()
			return
		}

		if val == 1 {
			redisClient.Expire(ctx, key, window)
		}

		c.Header("X-OpRateLimit-Limit", strconv.Itoa(maxOps))
		c.Header("X-OpRateLimit-Remaining", strconv.FormatInt(max(0, int64(maxOps)-val), 10))

		if val > int64(maxOps) {
			RLBlocked.WithLabelValues("op:" + c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "operation rate limit exceeded",
				"retry_after": int(window.Seconds()),
			})
			return
		}

		RLRequests.WithLabelValues("op:" + c.FullPath()).Inc()
		c.Next()
	}
}

func max(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
