// Command seed fills the database with demo content.
package main

import (
	"context"
	"fmt"
	"os"

	"blogicum/internal/bootstrap"
	"blogicum/internal/config"
	"blogicum/internal/middleware"
	"blogicum/internal/seed"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := seed.DefaultOptions()
	var clean bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with fake users, categories, locations, posts and comments",
		Long: `Populate the database with demo content.

Posts get a mix of past and scheduled publication dates and of published and
unpublished flags, so every visibility rule has something to hide.

Examples:
  seed                       # default volumes, existing rows are removed
  seed --posts 500 --users 40
  seed --clean=false         # add to the existing data`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			middleware.Logger = middleware.NewLogger(cfg.Env)

			ctx := cmd.Context()
			db, _, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
			if err != nil {
				return err
			}

			s := seed.NewSeeder(db, opts)
			if clean {
				if err := s.ClearAll(ctx); err != nil {
					return fmt.Errorf("cleanup failed: %w", err)
				}
			}
			res, err := s.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created %d users, %d categories, %d locations, %d posts and %d comments.\n",
				len(res.Users), len(res.Categories), len(res.Locations), len(res.Posts), res.Comments)
			fmt.Fprintf(out, "All seeded users have the password: %s\n", seed.DefaultPassword)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.NumUsers, "users", opts.NumUsers, "number of users to create")
	flags.IntVar(&opts.NumCategories, "categories", opts.NumCategories, "number of categories to create")
	flags.IntVar(&opts.NumLocations, "locations", opts.NumLocations, "number of locations to create")
	flags.IntVar(&opts.NumPosts, "posts", opts.NumPosts, "number of posts to create")
	flags.IntVar(&opts.CommentsPerPost, "comments", opts.CommentsPerPost, "maximum comments per post")
	flags.Int64Var(&opts.Seed, "seed", 0, "random seed for reproducible content (0 picks one)")
	flags.BoolVar(&clean, "clean", true, "delete existing data before seeding")
	return cmd
}
