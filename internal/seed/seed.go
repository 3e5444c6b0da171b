// Package seed fills a development database with users, categories,
// locations, posts and comments.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blogicum/internal/database"
	"blogicum/internal/middleware"
	"blogicum/internal/models"

	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options configuration for the seeder
type Options struct {
	NumUsers        int
	NumCategories   int
	NumLocations    int
	NumPosts        int
	CommentsPerPost int
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
}

// DefaultOptions is what cmd/seed runs without flags.
func DefaultOptions() Options {
	return Options{
		NumUsers:        10,
		NumCategories:   5,
		NumLocations:    4,
		NumPosts:        60,
		CommentsPerPost: 3,
	}
}

// Result lists what a run created.
type Result struct {
	Users      []*models.User
	Categories []*models.Category
	Locations  []*models.Location
	Posts      []*models.Post
	Comments   int
}

type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts, time.Now), opts: opts}
}

// ClearAll deletes every row of every table, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	middleware.Logger.InfoContext(ctx, "clearing existing data")
	tables := database.PersistentModels()
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for i := len(tables) - 1; i >= 0; i-- {
		if err := tx.Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	return nil
}

// Run creates the configured number of records inside one transaction.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	res := &Result{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		f := s.factory.WithDB(tx)
		var err error

		if res.Users, err = f.CreateUsers(s.opts.NumUsers); err != nil {
			return fmt.Errorf("failed to create users: %w", err)
		}
		if res.Categories, err = f.CreateCategories(s.opts.NumCategories); err != nil {
			return fmt.Errorf("failed to create categories: %w", err)
		}
		if res.Locations, err = f.CreateLocations(s.opts.NumLocations); err != nil {
			return fmt.Errorf("failed to create locations: %w", err)
		}
		if res.Posts, err = f.CreatePosts(res.Users, res.Categories, res.Locations, s.opts.NumPosts); err != nil {
			return fmt.Errorf("failed to create posts: %w", err)
		}
		if res.Comments, err = f.CreateComments(res.Users, res.Posts, s.opts.CommentsPerPost); err != nil {
			return fmt.Errorf("failed to create comments: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "database seeded",
		slog.Int("users", len(res.Users)),
		slog.Int("categories", len(res.Categories)),
		slog.Int("locations", len(res.Locations)),
		slog.Int("posts", len(res.Posts)),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}
