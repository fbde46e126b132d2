package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"lifeops/internal/client"

	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func (c *cli) profileCmd() *cobra.Command {
	var name, image string

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or update your profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.requireSession(cmd); err != nil {
				return err
			}

			var update client.ProfileUpdate
			if cmd.Flags().Changed("name") {
				if msg := validateName(name); msg != "" {
					return errors.New(msg)
				}
				update.Name = &name
			}
			if cmd.Flags().Changed("image") {
				update.Image = &image
			}

			var user *client.User
			var err error
			if update.Name == nil && update.Image == nil {
				user, err = c.api.GetProfile(cmd.Context())
			} else {
				user, err = c.api.UpdateProfile(cmd.Context(), update)
			}
			if err != nil {
				return failure(err, genericFailure)
			}
			if update.Name != nil || update.Image != nil {
				if err := c.auth.SetUser(user); err != nil {
					return err
				}
				c.ui.Success("Profile updated successfully")
			}
			printProfile(c, user)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&image, "image", "", "new avatar URL")
	return cmd
}

func printProfile(c *cli, user *client.User) {
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Name\t%s\n", user.Name)
	fmt.Fprintf(w, "Email\t%s\n", user.Email)
	if user.Image != nil {
		fmt.Fprintf(w, "Image\t%s\n", *user.Image)
	}
	fmt.Fprintf(w, "Verified\t%t\n", user.EmailVerified)
	if !user.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Member since\t%s\n", user.CreatedAt.Local().Format(timeLayout))
	}
	_ = w.Flush()
}

func (c *cli) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List your active sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.requireSession(cmd); err != nil {
				return err
			}
			sessions, err := c.api.ListSessions(cmd.Context())
			if err != nil {
				return failure(err, genericFailure)
			}

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCURRENT\tIP\tUSER AGENT\tEXPIRES")
			for _, s := range sessions {
				current := ""
				if s.IsCurrent {
					current = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, current, s.IPAddress, s.UserAgent, s.ExpiresAt.Local().Format(timeLayout))
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <session-id>",
		Short: "Terminate one of your sessions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.requireSession(cmd)
			if err != nil {
				return err
			}
			if err := c.api.RevokeSession(cmd.Context(), args[0]); err != nil {
				return failure(err, genericFailure)
			}
			if args[0] == data.Session.ID {
				if err := c.auth.Reset(); err != nil {
					return err
				}
				c.ui.Warning("Current session terminated; sign in again to continue")
				return nil
			}
			c.ui.Success("Session terminated")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke-others",
		Short: "Terminate every session except this one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.requireSession(cmd); err != nil {
				return err
			}
			if err := c.api.RevokeOtherSessions(cmd.Context()); err != nil {
				return failure(err, genericFailure)
			}
			c.ui.Success("All other sessions have been terminated")
			return nil
		},
	})
	return cmd
}

func (c *cli) activityCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show your recent account activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := c.requireSession(cmd); err != nil {
				return err
			}
			result, err := c.api.ListActivity(cmd.Context(), page, limit)
			if err != nil {
				return failure(err, genericFailure)
			}

			w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tEVENT\tIP\tDETAILS")
			for _, e := range result.Events {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format(timeLayout), e.Type, e.IPAddress, formatMetadata(e.Metadata))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			p := result.Pagination
			fmt.Fprintf(c.out, "Page %d of %d (%d events)\n", p.Page, p.TotalPages, p.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "events per page (max 100)")
	return cmd
}

func formatMetadata(md map[string]string) string {
	if len(md) == 0 {
		return ""
	}
	keys := make([]string, 0, len(md))
	for k := range md {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+md[k])
	}
	return strings.Join(parts, " ")
}
