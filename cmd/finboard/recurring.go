package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/cli"
	"finboard/internal/core"
	"finboard/internal/services"
)

func recurringCmd(rt *rootEnv) *cobra.Command {
	var (
		interval time.Duration
		date     string
	)
	cmd := &cobra.Command{
		Use:   "recurring",
		Short: "Materialize due recurring expenses",
		Long: `Create the transactions for every auto-pay recurring expense that is due.
Runs once by default; with --interval it keeps running on a schedule.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := cli.NewApp(ctx, rt.cfg, rt.logger, cli.Options{AMQP: true})
			if err != nil {
				return err
			}
			defer app.Close()

			proc := services.NewRecurringProcessor(app.Services.Recurring)
			if interval > 0 {
				if date != "" {
					return fmt.Errorf("--date cannot be combined with --interval")
				}
				return proc.Run(ctx, interval)
			}

			now := time.Now()
			if date != "" {
				d, err := core.ParseDate(date)
				if err != nil {
					return fmt.Errorf("--date: %w", err)
				}
				now = d.Time
			}
			n, err := proc.ProcessDueExpenses(ctx, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %d transaction(s)\n", n)
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "keep running, processing every interval")
	cmd.Flags().StringVar(&date, "date", "", "processing date (YYYY-MM-DD), defaults to today")
	return cmd
}
