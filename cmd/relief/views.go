package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"relief-go/internal/relief"
	"relief-go/internal/report"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show counters, visits per month and recent activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newSessionApp("dashboard")
		if err != nil {
			return err
		}
		defer a.Close()

		reg := a.Registry()
		stats := reg.Dashboard(a.Now(), time.Local)
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Households:          %d\n", stats.Households)
		fmt.Fprintf(out, "People:              %d\n", stats.People)
		fmt.Fprintf(out, "Active cylinders:    %d\n", stats.ActiveAssignments)
		fmt.Fprintf(out, "Bag distributions:   %d\n", stats.Distributions)
		fmt.Fprintf(out, "Visits this month:   %d\n", stats.VisitsThisMonth)

		if counts := reg.MonthlyVisitCounts(time.Local); len(counts) > 0 {
			fmt.Fprintln(out, "\nVisits per month:")
			for _, c := range counts {
				fmt.Fprintf(out, "  %d-%02d  %4d %s\n", c.Year, c.Month, c.Count, strings.Repeat("#", min(c.Count, 50)))
			}
		}

		u, _ := a.RequireUser()
		if unread := len(reg.UnreadNotifications(u.ID)); unread > 0 {
			fmt.Fprintf(out, "\n%d unread notification(s); see `relief notification unread`.\n", unread)
		}
		printActivity(cmd, reg.RecentActivity(relief.ActivityOptions{}))
		return nil
	},
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the most recent visits and bag distributions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		visits, _ := cmd.Flags().GetInt("visits")
		dists, _ := cmd.Flags().GetInt("distributions")
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newSessionApp("activity")
		if err != nil {
			return err
		}
		defer a.Close()

		printActivity(cmd, a.Registry().RecentActivity(relief.ActivityOptions{
			Visits:        visits,
			Distributions: dists,
			Limit:         limit,
		}))
		return nil
	},
}

func printActivity(cmd *cobra.Command, feed []relief.Activity) {
	out := cmd.OutOrStdout()
	if len(feed) == 0 {
		fmt.Fprintln(out, "\nNo recent activity.")
		return
	}
	fmt.Fprintln(out, "\nRecent activity:")
	for _, e := range feed {
		fmt.Fprintf(out, "  %s  %-12s %s\n", date(e.Date), e.Kind, e.Description)
	}
}

var reportCmd = &cobra.Command{
	Use:   "report <kind|all>",
	Short: "Write spreadsheet reports",
	Long: "Write an .xlsx report of one collection, or of every non-empty collection with `all`.\n" +
		"Kinds: households, people, assignments, distributions, visits.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		a, err := newSessionApp("report " + args[0])
		if err != nil {
			return err
		}
		defer a.Close()

		if args[0] == "all" {
			dir := output
			if dir == "" {
				dir = "."
			}
			paths, err := a.WriteAllReports(dir)
			return finish(cmd, a.Outcome().Record(err, "wrote "+strings.Join(paths, ", ")))
		}

		kind, err := report.ParseKind(args[0])
		if err != nil {
			return err
		}
		path := output
		if path == "" {
			path = kind.FileName()
		} else if filepath.Ext(path) == "" {
			path = filepath.Join(path, kind.FileName())
		}
		return finish(cmd, a.Outcome().Record(a.WriteReport(kind, path), "wrote "+path))
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write an encrypted snapshot of every collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newSessionApp("export")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, confirm, err := newPrompter(cmd).NewSecret("Passphrase")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}

		n, err := a.Export(args[0], pass)
		return finish(cmd, a.Outcome().Record(err, fmt.Sprintf("exported %d collections to %s", n, args[0])))
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Restore the collections of an encrypted snapshot",
	Long:  "Restore the collections carried by a snapshot. Collections absent from the snapshot are left as they are.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newSessionApp("import")
		if err != nil {
			return err
		}
		defer a.Close()

		pass, err := newPrompter(cmd).Secret("Passphrase: ")
		if err != nil {
			return err
		}

		n, err := a.Import(args[0], pass)
		return finish(cmd, a.Outcome().Record(err, fmt.Sprintf("imported %d collections from %s", n, args[0])))
	},
}

func init() {
	activityCmd.Flags().Int("visits", 0, "Number of latest visits to consider (default 5)")
	activityCmd.Flags().Int("distributions", 0, "Number of latest distributions to consider (default 3)")
	activityCmd.Flags().Int("limit", 0, "Number of entries to show (default 6)")

	reportCmd.Flags().StringP("output", "o", "", "Output file, or directory for `all`")

	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
