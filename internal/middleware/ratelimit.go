package middleware

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sanojDD/Balentine/internal/cache"
	"github.com/sanojDD/Balentine/internal/logger"
	"github.com/sanojDD/Balentine/internal/metrics"
	"go.uber.org/zap"
)

// RedisRateLimit creates a fixed-window rate limiter backed by Redis, keyed
// by client IP. When Redis is not configured requests pass through.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		redisClient := cache.GetRedisClient()
		if redisClient == nil {
			c.Next()
			return
		}

		clientIP := clientIP(c.Request.RemoteAddr)
		key := fmt.Sprintf("rate_limit:%s", clientIP)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		val, err := redisClient.GetInt(ctx, key)
		if err != nil {
			// Redis errors reject the request instead of bypassing the limiter
			logger.Log.Error("Rate limit check failed, rejecting request",
				logger.WithIP(clientIP), zap.Error(err))
			c.JSON(503, gin.H{"error": "service temporarily unavailable"})
			c.Abort()
			return
		}

		if val >= int64(maxRequests) {
			metrics.Get().RateLimitExceededTotal.WithLabelValues("auth").Inc()
			logger.Log.Warn("Rate limit exceeded",
				logger.WithIP(clientIP),
				zap.Int64("current_requests", val),
			)
			c.JSON(429, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": window.Seconds(),
			})
			c.Abort()
			return
		}

		newVal, err := redisClient.IncrBy(ctx, key, 1)
		if err != nil {
			logger.Log.Error("Rate limit increment failed, rejecting request",
				logger.WithIP(clientIP), zap.Error(err))
			c.JSON(503, gin.H{"error": "service temporarily unavailable"})
			c.Abort()
			return
		}

		if newVal == 1 {
			if err := redisClient.Expire(ctx, key, window); err != nil {
				logger.Log.Warn("Failed to set rate limit expiration",
					logger.WithIP(clientIP), zap.Error(err))
			}
		}

		c.Next()
	}
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
