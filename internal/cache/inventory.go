package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	CategoryKeyPrefix       = "category:slug:%s"
	RevokedSessionKeyPrefix = "session:revoked:%s"
)

const (
	CategoryTTL = 10 * time.Minute
)

func CategoryKey(slug string) string {
	return fmt.Sprintf(CategoryKeyPrefix, slug)
}

func RevokedSessionKey(jti string) string {
	return fmt.Sprintf(RevokedSessionKeyPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateCategory(ctx context.Context, slug string) {
	Invalidate(ctx, CategoryKey(slug))
}
