package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"blogicum/internal/cache"
	"blogicum/internal/config"
	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedIfEmpty bool
	Seed        seed.Options
}

// InitRuntime connects to DB and Redis and optionally seeds an empty database.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// nil when redis is not configured or unreachable
	r := cache.InitRedis(ctx, cfg.RedisURL)

	if opts.SeedIfEmpty {
		if err := seedIfEmpty(ctx, cfg, db, opts.Seed); err != nil {
			return nil, nil, fmt.Errorf("failed to seed development data: %w", err)
		}
	}

	return db, r, nil
}

// seedIfEmpty runs the seeder in development when no user exists yet.
func seedIfEmpty(ctx context.Context, cfg *config.Config, db *gorm.DB, opts seed.Options) error {
	if cfg == nil || db == nil || cfg.Env != "development" {
		return nil
	}

	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return err
	}
	if users > 0 {
		middleware.Logger.InfoContext(ctx, "database already has data, skipping seed", slog.Int64("users", users))
		return nil
	}

	_, err := seed.NewSeeder(db, opts).Run(ctx)
	return err
}
