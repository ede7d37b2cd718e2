package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/cli"
	"finboard/internal/dayoff"
	httpapi "finboard/internal/http"
)

func calendarCmd(rt *rootEnv) *cobra.Command {
	var (
		userID string
		year   int
		month  int
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month of days off",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			now := time.Now()
			if year == 0 {
				year = now.Year()
			}
			if month == 0 {
				month = int(now.Month())
			}
			if month < 1 || month > 12 {
				return fmt.Errorf("--month must be between 1 and 12")
			}

			app, err := cli.NewApp(ctx, rt.cfg, rt.logger, cli.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			days, err := app.Services.DayOff.Calendar(ctx, userID, year, month)
			if err != nil {
				return err
			}
			return printCalendar(cmd.OutOrStdout(), days)
		},
	}
	cmd.Flags().StringVar(&userID, "user", httpapi.LocalUser, "user id")
	cmd.Flags().IntVar(&year, "year", 0, "year (default: current)")
	cmd.Flags().IntVar(&month, "month", 0, "month 1-12 (default: current)")
	return cmd
}

func printCalendar(out io.Writer, days []dayoff.Day) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tWEEKDAY\tOFF\tRULE\tBASELINE")
	for _, d := range days {
		rule := "-"
		if d.Rules.IsDayOff {
			rule = string(d.Rules.Type)
			if d.Rules.Description != "" {
				rule += " (" + d.Rules.Description + ")"
			}
		}
		base := "-"
		if d.Baseline.IsDayOff {
			base = "off"
		}
		if d.Baseline.Flag != "" {
			base += " " + d.Baseline.Flag
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Date, d.Weekday[:3], yesNo(d.Rules.IsDayOff), rule, base)
	}
	fmt.Fprintf(w, "\nDays off: %d\n", dayoff.CountDaysOff(days))
	return w.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
