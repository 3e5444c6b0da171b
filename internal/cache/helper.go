package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"blogicum/internal/middleware"
	"blogicum/internal/observability"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by GetJSON when the key is absent or no client is configured.
var ErrMiss = errors.New("cache miss")

// GetJSON loads key and decodes it into dest.
func GetJSON(ctx context.Context, key string, dest interface{}) error {
	if client == nil {
		return ErrMiss
	}
	raw, err := client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// SetJSON stores value under key for ttl. It is a no-op without a client.
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, raw, ttl).Err()
}

// Aside implements cache-aside: it returns the cached value for key when
// present, otherwise calls load and caches its result. Redis failures fall
// through to load so the cache never turns into an outage.
func Aside[T any](ctx context.Context, name, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	var cached T
	err := GetJSON(ctx, key, &cached)
	switch {
	case err == nil:
		observability.CacheLookups.WithLabelValues(name, "hit").Inc()
		return cached, nil
	case errors.Is(err, ErrMiss):
		observability.CacheLookups.WithLabelValues(name, "miss").Inc()
	default:
		observability.CacheLookups.WithLabelValues(name, "error").Inc()
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}
	if err := SetJSON(ctx, key, value, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return value, nil
}
