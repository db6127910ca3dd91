package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tastetrail/tastetrail/internal/core/domain"
	"github.com/tastetrail/tastetrail/internal/core/ports"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		form ports.LoginForm
		next string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and keep the session.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			dest, err := app.flow.Login(cmd.Context(), form, next)
			if err != nil {
				return err
			}
			return printVisit(cmd, app, dest)
		},
	}
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password")
	cmd.Flags().StringVar(&next, "next", "", "path to open after signing in")
	return cmd
}

func newSignupCmd(opts *rootOptions) *cobra.Command {
	var form ports.SignupForm
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and sign in.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			dest, err := app.flow.Register(cmd.Context(), form)
			if err != nil {
				return err
			}
			return printVisit(cmd, app, dest)
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "display name")
	cmd.Flags().StringVar(&form.Email, "email", "", "account email")
	cmd.Flags().StringVar(&form.Password, "password", "", "account password (at least 6 characters)")
	cmd.Flags().StringVar(&form.ProfileImage, "image", "", "profile image URL")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session here and on the server.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			d := app.flow.Logout(cmd.Context())
			fmt.Fprintf(app.out, "logged out, redirect %s\n", d.Location())
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var remote bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in identity.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			v, err := app.enter(cmd, domain.PathDashboard)
			if err != nil {
				return err
			}
			id := app.store.Snapshot().User
			if remote {
				if id, err = app.api.Me(v.Context()); err != nil {
					return app.fail(v, err)
				}
			}
			fmt.Fprintf(app.out, "%s <%s> role=%s id=%s\n", id.Name, id.Email, roleLabel(id.Role), id.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "ask the server instead of the stored session")
	return cmd
}

func newOpenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "open PATH",
		Short: "Run the route guards for PATH and print the outcome.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newClientApp(cmd, opts)
			if err != nil {
				return err
			}
			defer app.Close()

			return printVisit(cmd, app, args[0])
		},
	}
}

// printVisit navigates to path and prints "allow <view>" or
// "redirect <location>". Redirects also set the exit code.
func printVisit(cmd *cobra.Command, app *clientApp, path string) error {
	v, err := app.nav.Navigate(cmd.Context(), path)
	if err != nil {
		return err
	}
	switch v.Decision.Kind {
	case domain.Allow:
		fmt.Fprintf(app.out, "allow %s\n", v.View)
		return nil
	default:
		fmt.Fprintf(app.out, "redirect %s\n", v.Decision.Location())
		if ee := decisionExit(v.Decision); ee != nil {
			ee.silent = true
			return ee
		}
		return nil
	}
}

// roleLabel prints the role exactly as the backend sent it, "-" when absent.
func roleLabel(r domain.Role) string {
	if r == "" {
		return "-"
	}
	return string(r)
}
