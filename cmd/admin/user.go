package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Inspect accounts",
	}

	var limit, offset int
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.users(cmd.Context())
			if err != nil {
				return err
			}
			users, err := repo.List(cmd.Context(), limit, offset)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No users found")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSERNAME\tNAME\tEMAIL\tJOINED")
			for _, u := range users {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName(), u.Email, u.CreatedAt.Format("2006-01-02"))
			}
			return w.Flush()
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of users")
	list.Flags().IntVar(&offset, "offset", 0, "number of users to skip")

	cmd.AddCommand(list)
	return cmd
}
