package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/internal/core/domain"
)

// Admin commands enter the manage-users view first, so a signed-out or
// non-admin session is turned away before any request leaves the machine.

func newUsersCmd(opts *rootOptions) *cobra.Command {
	var adminsOnly bool
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts (admin).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			v, err := app.enter(cmd, domain.PathManageUsers)
			if err != nil {
				return err
			}
			users, err := app.api.ListUsers(v.Context(), adminsOnly)
			if err != nil {
				return app.fail(v, err)
			}

			tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tROLE")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, roleLabel(u.Role))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&adminsOnly, "admins", false, "only list admins")
	return cmd
}

func newPromoteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "promote ID",
		Short: "Grant the admin role (admin).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			v, err := app.enter(cmd, domain.PathManageUsers)
			if err != nil {
				return err
			}
			u, err := app.api.PromoteUser(v.Context(), args[0])
			if err != nil {
				return app.fail(v, err)
			}
			fmt.Fprintf(app.out, "%s is now %s\n", u.ID, roleLabel(u.Role))
			return nil
		},
	}
}

func newDeleteUserCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-user ID",
		Short: "Delete an account (admin).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			v, err := app.enter(cmd, domain.PathManageUsers)
			if err != nil {
				return err
			}
			if err := app.api.DeleteUser(v.Context(), args[0]); err != nil {
				return app.fail(v, err)
			}
			fmt.Fprintf(app.out, "deleted %s\n", args[0])
			return nil
		},
	}
}
