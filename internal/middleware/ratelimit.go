package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/cache"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/logger"
	"github.com/Mohsinkhani/hotel-management-sub000/internal/common/response"
)

// RateLimitConfig 限流配置
type RateLimitConfig struct {
	Store   *cache.Store
	Scope   string
	Limit   int
	Window  time.Duration
	KeyFunc func(*gin.Context) string
}

// RateLimit 固定窗口限流，Redis 不可用或未配置时放行
func RateLimit(config *RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}

	return func(c *gin.Context) {
		if !config.Store.Enabled() || config.Limit <= 0 || config.Window <= 0 {
			c.Next()
			return
		}

		key := cache.BuildKey(cache.KeyPrefixRateLimit, config.Scope, keyFunc(c))
		count, err := config.Store.IncrWindow(c.Request.Context(), key, config.Window)
		if err != nil {
			logger.Warn("限流计数失败，已放行", logger.String("scope", config.Scope), logger.Err(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", config.Limit))
		if int(count) > config.Limit {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", fmt.Sprintf("%d", int(config.Window.Seconds())))
			response.TooManyRequests(c, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", config.Limit-int(count)))
		c.Next()
	}
}

// BookingRateLimit 公开预订接口按 IP 限流
func BookingRateLimit(store *cache.Store, limit int, window time.Duration) gin.HandlerFunc {
	return RateLimit(&RateLimitConfig{
		Store:  store,
		Scope:  "booking",
		Limit:  limit,
		Window: window,
	})
}
