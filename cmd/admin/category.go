package main

import (
	"fmt"

	"blogicum/internal/models"
	"blogicum/internal/validation"

	"github.com/spf13/cobra"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var (
		title       string
		description string
		hidden      bool
	)
	create := &cobra.Command{
		Use:   "create <slug>",
		Short: "Create a category",
		Long: `Create a category.

Examples:
  admin category create travel --title "Travel" --description "Notes from the road"
  admin category create drafts --title "Drafts" --unpublished`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]
			if err := validation.ValidateSlug(slug); err != nil {
				return err
			}
			if title == "" {
				title = slug
			}
			repo, err := a.categories(cmd.Context())
			if err != nil {
				return err
			}
			category := &models.Category{
				Title:         title,
				Description:   description,
				Slug:          slug,
				PublishFields: models.PublishFields{IsPublished: !hidden},
			}
			if err := repo.Create(cmd.Context(), category); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created category %s (ID: %d, published: %t)\n", category.Slug, category.ID, category.IsPublished)
			return nil
		},
	}
	create.Flags().StringVar(&title, "title", "", "category title (defaults to the slug)")
	create.Flags().StringVar(&description, "description", "", "category description")
	create.Flags().BoolVar(&hidden, "unpublished", false, "create the category hidden")

	setPublished := func(published bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			repo, err := a.categories(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.SetPublished(cmd.Context(), args[0], published); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %s published: %t\n", args[0], published)
			return nil
		}
	}

	publish := &cobra.Command{
		Use:   "publish <slug>",
		Short: "Show a category and its posts",
		Args:  cobra.ExactArgs(1),
		RunE:  setPublished(true),
	}
	unpublish := &cobra.Command{
		Use:   "unpublish <slug>",
		Short: "Hide a category and its posts",
		Args:  cobra.ExactArgs(1),
		RunE:  setPublished(false),
	}
	del := &cobra.Command{
		Use:   "delete <slug>",
		Short: "Delete a category together with its posts and their comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.categories(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted category %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(create, publish, unpublish, del)
	return cmd
}
