package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy defines the behavior when the rate limit store (Redis) is unavailable.
type FailPolicy int

const (
	// FailOpen allows the request to proceed if Redis is unavailable.
	FailOpen FailPolicy = iota
	// FailClosed blocks the request (503 Service Unavailable) if Redis is unavailable.
	FailClosed
)

var errNoStore = errors.New("rate limit store is not configured")

// RateLimiter counts requests per caller in fixed redis windows.
type RateLimiter struct {
	rdb     *redis.Client
	enabled bool
	policy  FailPolicy
}

// NewRateLimiter builds a limiter for the given environment. Development and
// test environments are never limited.
func NewRateLimiter(rdb *redis.Client, env string) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		enabled: env != "" && env != "development" && env != "test",
	}
}

// WithPolicy returns a copy of l that handles store failures with p.
func (l *RateLimiter) WithPolicy(p FailPolicy) *RateLimiter {
	clone := *l
	clone.policy = p
	return &clone
}

func rateLimitKey(resource, id string) string {
	return fmt.Sprintf("blogicum:ratelimit:%s:%s", resource, id)
}

// Allow counts one request by id against resource and reports whether it fits
// in limit, along with how many requests are left in the window.
func (l *RateLimiter) Allow(ctx context.Context, resource, id string, limit int, window time.Duration) (bool, int, error) {
	if !l.enabled {
		return true, limit, nil
	}
	if l.rdb == nil {
		return false, 0, errNoStore
	}

	key := rateLimitKey(resource, id)
	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}
	return count <= int64(limit), max(limit-int(count), 0), nil
}

// Limit enforces limit requests per window on the named resource. Signed-in
// callers are counted per user, anonymous ones per IP. Only the listed methods
// are counted; all of them when none are given.
func (l *RateLimiter) Limit(name string, limit int, window time.Duration, methods ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(methods) > 0 && !slices.Contains(methods, c.Method()) {
			return c.Next()
		}

		id := "ip:" + c.IP()
		if viewer := Viewer(c); viewer != nil {
			id = "user:" + strconv.FormatUint(uint64(viewer.ID), 10)
		}

		allowed, remaining, err := l.Allow(c.UserContext(), name, id, limit, window)
		if err != nil {
			if l.policy == FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit fail-closed",
					slog.String("resource", name),
					slog.String("error", err.Error()),
				)
				return fiber.NewError(fiber.StatusServiceUnavailable, "rate limit unavailable")
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests, please try again later.")
		}
		return c.Next()
	}
}
