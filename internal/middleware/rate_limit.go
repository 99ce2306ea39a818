package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RateLimitMiddleware struct {
	client *redis.Client
}

func NewRateLimitMiddleware(client *redis.Client) *RateLimitMiddleware {
	return &RateLimitMiddleware{client: client}
}

// RateLimit caps requests per authenticated user per endpoint using a
// fixed redis window.
func (m *RateLimitMiddleware) RateLimit(requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, exists := c.Get("uid")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		key := fmt.Sprintf("rate_limit:%s:%s", uid, c.Request.URL.Path)
		ctx := c.Request.Context()

		count, err := m.client.Incr(ctx, key).Result()
		if err != nil {
			// Rate limiting is best effort; a redis hiccup must not
			// take the API down.
			c.Next()
			return
		}
		if count == 1 {
			m.client.Expire(ctx, key, window)
		}

		if count > int64(requests) {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": fmt.Sprintf("rate limit exceeded: %d per %v", requests, window),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
