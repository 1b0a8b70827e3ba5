package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimiter counts requests per client IP in Redis. It is
// defense-in-depth in front of the per-(phone, role) OTP cooldown, which
// lives in the store. A nil or unreachable Redis bypasses limiting
// rather than failing requests.
func RateLimiter(redisClient *redis.Client, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil {
			return c.Next()
		}

		ctx := context.Background()
		key := fmt.Sprintf("rate_limit:%s:%s", c.Path(), c.IP())

		count, err := redisClient.Get(ctx, key).Int()
		if err == redis.Nil {
			if err := redisClient.Set(ctx, key, 1, window).Err(); err != nil {
				log.Printf("⚠️  Rate limiter failed to set key: %v", err)
			}
			return c.Next()
		}
		if err != nil {
			log.Printf("⚠️  Rate limiter unavailable: %v", err)
			return c.Next()
		}

		if count >= limit {
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
			c.Set("X-RateLimit-Remaining", "0")
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Too many requests",
				"retry_after": int(ttl.Seconds()),
			})
		}

		newCount, _ := redisClient.Incr(ctx, key).Result()
		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limit-int(newCount)))
		return c.Next()
	}
}
