package main

import (
	"fmt"
	"strings"

	"blogicum/internal/models"

	"github.com/spf13/cobra"
)

func newLocationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Manage locations",
	}

	var hidden bool
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if name == "" || len(name) > 256 {
				return fmt.Errorf("location name must be 1 to 256 characters")
			}
			repo, err := a.locations(cmd.Context())
			if err != nil {
				return err
			}
			location := &models.Location{Name: name, PublishFields: models.PublishFields{IsPublished: !hidden}}
			if err := repo.Create(cmd.Context(), location); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created location %q (ID: %d, published: %t)\n", location.Name, location.ID, location.IsPublished)
			return nil
		},
	}
	create.Flags().BoolVar(&hidden, "unpublished", false, "create the location hidden")

	setPublished := func(published bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := a.locations(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.SetPublished(cmd.Context(), id, published); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Location %d published: %t\n", id, published)
			return nil
		}
	}

	publish := &cobra.Command{
		Use:   "publish <id>",
		Short: "Publish a location",
		Args:  cobra.ExactArgs(1),
		RunE:  setPublished(true),
	}
	unpublish := &cobra.Command{
		Use:   "unpublish <id>",
		Short: "Unpublish a location",
		Args:  cobra.ExactArgs(1),
		RunE:  setPublished(false),
	}
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a location; its posts stay without one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := a.locations(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted location %d\n", id)
			return nil
		},
	}

	cmd.AddCommand(create, publish, unpublish, del)
	return cmd
}
