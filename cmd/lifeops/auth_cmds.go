package main

import (
	"errors"
	"fmt"

	"lifeops/internal/client"

	"github.com/spf13/cobra"
)

const genericFailure = "Something went wrong. Please try again."

func (c *cli) signupCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if name, err = c.prompt("Name", name); err != nil {
				return err
			}
			if email, err = c.prompt("Email", email); err != nil {
				return err
			}
			if password, err = c.prompt("Password", password); err != nil {
				return err
			}
			if msg := validateSignup(name, email, password); msg != "" {
				return errors.New(msg)
			}

			c.ui.SetGlobalLoading(true)
			defer c.ui.SetGlobalLoading(false)

			if _, err := c.api.SignUp(cmd.Context(), name, email, password); err != nil {
				return failure(err, "Signup failed")
			}
			if _, err := c.auth.FetchSession(cmd.Context()); err != nil {
				return failure(err, genericFailure)
			}
			c.ui.Success("Account created successfully!")
			return c.printSignedIn()
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "full name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func (c *cli) loginCmd() *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email, err = c.prompt("Email", email); err != nil {
				return err
			}
			if password, err = c.prompt("Password", password); err != nil {
				return err
			}
			if msg := validateLogin(email, password); msg != "" {
				return errors.New(msg)
			}

			c.ui.SetGlobalLoading(true)
			defer c.ui.SetGlobalLoading(false)

			if _, err := c.api.SignIn(cmd.Context(), email, password); err != nil {
				return failure(err, "Authentication failed")
			}
			if _, err := c.auth.FetchSession(cmd.Context()); err != nil {
				return failure(err, genericFailure)
			}
			c.ui.Success("Welcome back!")
			return c.printSignedIn()
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when empty)")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.api.Token() == "" {
				return errNotSignedIn
			}
			if err := c.auth.SignOut(cmd.Context()); err != nil {
				return errors.New(c.auth.State().Error)
			}
			c.ui.Success("Signed out successfully")
			return nil
		},
	}
}

func (c *cli) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.requireSession(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "%s <%s>\n", data.User.DisplayName(), data.User.Email)
			fmt.Fprintf(c.out, "Session %s expires %s\n", data.Session.ID, data.Session.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
}

// printSignedIn is the success page shown after login or signup
func (c *cli) printSignedIn() error {
	user := c.auth.User()
	if user == nil {
		return errNotSignedIn
	}
	fmt.Fprintf(c.out, "Welcome, %s!\n", user.DisplayName())
	fmt.Fprintln(c.out, "You're successfully signed in.")
	return nil
}

// failure turns an API error into the message shown on the form
func failure(err error, fallback string) error {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", genericFailure, err)
	}
	return errors.New(apiMessage(err, fallback))
}
