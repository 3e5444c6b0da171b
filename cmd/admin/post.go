package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPostCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "post",
		Short: "Change post publication",
	}

	setPublished := func(published bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			repo, err := a.posts(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.SetPublished(cmd.Context(), id, published); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Post %d published: %t\n", id, published)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "publish <id>",
			Short: "Publish a post",
			Args:  cobra.ExactArgs(1),
			RunE:  setPublished(true),
		},
		&cobra.Command{
			Use:   "unpublish <id>",
			Short: "Hide a post from everyone but its author",
			Args:  cobra.ExactArgs(1),
			RunE:  setPublished(false),
		},
	)
	return cmd
}
