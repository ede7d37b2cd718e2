package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finboard/internal/cli"
	"finboard/internal/core"
	httpapi "finboard/internal/http"
	"finboard/internal/log"
	"finboard/internal/services"
	"finboard/internal/sheets"
	gsheet "finboard/internal/sheets/google"
)

func exportCmd(rt *rootEnv) *cobra.Command {
	var (
		userID string
		year   int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a year to Google Sheets",
		Long: `Write the yearly dashboard (income and expense per category per month) and
the year's transaction ledger to the configured spreadsheet.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := rt.cfg.ExportValidate(); err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}

			app, err := cli.NewApp(ctx, rt.cfg, rt.logger, cli.Options{})
			if err != nil {
				return err
			}
			defer app.Close()

			client, err := gsheet.New(ctx, gsheet.Config{
				SpreadsheetID:   rt.cfg.GoogleSpreadsheetID,
				CredentialsJSON: rt.cfg.GoogleCredentialsJSON,
				CredentialsFile: rt.cfg.GoogleCredentialsFile,
				OAuthClientJSON: rt.cfg.GoogleOAuthClientJSON,
				OAuthClientFile: rt.cfg.GoogleOAuthClientFile,
				OAuthTokenFile:  rt.cfg.GoogleOAuthTokenFile,
				DashboardSheet:  rt.cfg.DashboardSheetName,
				LedgerSheet:     rt.cfg.LedgerSheetName,
			})
			if err != nil {
				return err
			}

			ref, err := exportYear(ctx, app.Services, client, userID, year)
			if err != nil {
				return err
			}
			rt.logger.InfoContext(ctx, "Year exported",
				log.FieldComponent, log.ComponentSheets,
				log.FieldUserID, userID,
				"year", year,
				"ref", ref)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d to %s\n", year, ref)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", httpapi.LocalUser, "user id")
	cmd.Flags().IntVar(&year, "year", 0, "year to export (default: current)")
	return cmd
}

func exportYear(ctx context.Context, svc *services.Services, exporter sheets.YearExporter, userID string, year int) (string, error) {
	summary, err := svc.Summaries.AnnualSummary(ctx, userID, year)
	if err != nil {
		return "", fmt.Errorf("annual summary: %w", err)
	}
	txs, err := svc.Transactions.List(ctx, userID, core.NewDate(year, 1, 1), core.NewDate(year, 12, 31))
	if err != nil {
		return "", fmt.Errorf("list transactions: %w", err)
	}
	return exporter.ExportYear(ctx, summary, txs)
}
