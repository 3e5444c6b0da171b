package main

import (
	"context"
	"fmt"
	"strconv"

	"blogicum/internal/repository"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Opener connects to the database the commands work on.
type Opener func(ctx context.Context) (*gorm.DB, error)

// app is shared by every subcommand. The database is opened lazily so that
// --help works without one.
type app struct {
	open Opener
	db   *gorm.DB
}

func (a *app) conn(ctx context.Context) (*gorm.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	a.db = db
	return db, nil
}

func (a *app) categories(ctx context.Context) (repository.CategoryRepository, error) {
	db, err := a.conn(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewCategoryRepository(db), nil
}

func (a *app) locations(ctx context.Context) (repository.LocationRepository, error) {
	db, err := a.conn(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewLocationRepository(db), nil
}

func (a *app) posts(ctx context.Context) (repository.PostRepository, error) {
	db, err := a.conn(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewPostRepository(db), nil
}

func (a *app) users(ctx context.Context) (repository.UserRepository, error) {
	db, err := a.conn(ctx)
	if err != nil {
		return nil, err
	}
	return repository.NewUserRepository(db), nil
}

func newRootCmd(open Opener) *cobra.Command {
	a := &app{open: open}

	root := &cobra.Command{
		Use:   "admin",
		Short: "Blogicum administration",
		Long: `Manage the content that has no web form.

Subcommands:
  category  - create, publish, unpublish and delete categories
  location  - create, publish, unpublish and delete locations
  post      - publish and unpublish posts
  user      - list accounts`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newCategoryCmd(a),
		newLocationCmd(a),
		newPostCmd(a),
		newUserCmd(a),
	)
	return root
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return uint(id), nil
}
