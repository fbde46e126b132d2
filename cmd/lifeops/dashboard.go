package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

type dashboardSection struct {
	Name    string
	Title   string
	Summary string
}

var dashboardSections = []dashboardSection{
	{Name: "expenses", Title: "Expenses", Summary: "Expense tracking features coming soon."},
	{Name: "subscriptions", Title: "Subscriptions", Summary: "Subscription management features coming soon."},
	{Name: "groups", Title: "Groups", Summary: "Group management features coming soon."},
	{Name: "settings", Title: "Settings", Summary: "Application settings coming soon."},
}

func findSection(name string) (dashboardSection, bool) {
	for _, s := range dashboardSections {
		if s.Name == strings.ToLower(name) {
			return s, true
		}
	}
	return dashboardSection{}, false
}

func sectionNames() []string {
	names := make([]string, 0, len(dashboardSections))
	for _, s := range dashboardSections {
		names = append(names, s.Name)
	}
	return names
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "dashboard [section]",
		Short:     "Open the dashboard overview or one of its sections",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: sectionNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := c.requireSession(cmd)
			if err != nil {
				return err
			}

			if len(args) == 1 {
				section, ok := findSection(args[0])
				if !ok {
					return fmt.Errorf("unknown section %q (choose one of %s)", args[0], strings.Join(sectionNames(), ", "))
				}
				fmt.Fprintln(c.out, section.Title)
				fmt.Fprintln(c.out, section.Summary)
				return nil
			}

			firstName := data.User.FirstName()
			if firstName == "" {
				firstName = "User"
			}
			fmt.Fprintf(c.out, "Welcome back, %s\n", firstName)
			fmt.Fprintln(c.out, "Here's what's happening with your life operations today.")
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "Quick Actions: Add Expense | Add Subscription | Create Group")
			fmt.Fprintln(c.out)
			fmt.Fprintln(c.out, "Recent Expenses")
			fmt.Fprintln(c.out, "  No expenses yet. Track your spending to get insights into your finances.")
			fmt.Fprintln(c.out, "Active Subscriptions")
			fmt.Fprintln(c.out, "  No active subscriptions. Never miss a renewal date again by adding your subscriptions.")
			fmt.Fprintln(c.out)
			fmt.Fprintf(c.out, "Sections: %s\n", strings.Join(sectionNames(), ", "))
			return nil
		},
	}
}
