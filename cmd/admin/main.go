// Command admin manages categories, locations, post publication and users
// from the command line.
package main

import (
	"context"
	"fmt"
	"os"

	"blogicum/internal/bootstrap"
	"blogicum/internal/config"
	"blogicum/internal/middleware"

	"gorm.io/gorm"
)

func main() {
	open := func(ctx context.Context) (*gorm.DB, error) {
		cfg, err := config.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		middleware.Logger = middleware.NewLogger(cfg.Env)
		db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
		return db, err
	}

	if err := newRootCmd(open).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
