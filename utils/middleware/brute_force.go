package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/eduverse/eduverse-api/utils/cache"
	"github.com/eduverse/eduverse-api/utils/response"
)

// BruteForceProtection throttles repeated failed logins per client IP using
// Redis counters with progressive lockouts.
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{redisCache: redisCache}
}

// CheckAttempts middleware rejects requests from a locked-out IP.
func (b *BruteForceProtection) CheckAttempts() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		lockKey := fmt.Sprintf("login:lock:%s", ip)

		locked, err := b.redisCache.Exists(c.Context(), lockKey)
		if err != nil {
			// Redis being down must not lock out legitimate users.
			return c.Next()
		}

		if locked {
			ttl, _ := b.redisCache.TTL(c.Context(), lockKey)
			retryAfter := int(ttl.Seconds())
			if retryAfter < 0 {
				retryAfter = 60
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailure records a failed login attempt and applies progressive
// lockouts.
func (b *BruteForceProtection) RecordFailure(c *fiber.Ctx, ip string) error {
	ctx := c.Context()
	attemptKey := fmt.Sprintf("login:attempts:%s", ip)
	lockKey := fmt.Sprintf("login:lock:%s", ip)

	attempts, err := b.redisCache.Increment(ctx, attemptKey)
	if err != nil {
		return nil
	}

	// Counting window
	if attempts == 1 {
		b.redisCache.Expire(ctx, attemptKey, 15*time.Minute)
	}

	var lockDuration time.Duration
	switch {
	case attempts >= 25:
		lockDuration = 24 * time.Hour
	case attempts >= 10:
		lockDuration = 1 * time.Hour
	case attempts >= 5:
		lockDuration = 2 * time.Minute
	default:
		return nil
	}

	return b.redisCache.Set(ctx, lockKey, "locked", lockDuration)
}

// RecordSuccess clears failed attempts after a successful login.
func (b *BruteForceProtection) RecordSuccess(c *fiber.Ctx, ip string) error {
	ctx := c.Context()
	b.redisCache.Delete(ctx, fmt.Sprintf("login:attempts:%s", ip))
	b.redisCache.Delete(ctx, fmt.Sprintf("login:lock:%s", ip))
	return nil
}
