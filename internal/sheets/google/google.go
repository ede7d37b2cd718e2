// Package google exports annual summaries to Google Sheets.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finboard/internal/core"
	ports "finboard/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	dashboardBase string
	ledgerBase    string
}

// Ensure interface conformance
var (
	_ ports.YearExporter    = (*Client)(nil)
	_ ports.DashboardReader = (*Client)(nil)
)

// Config selects the spreadsheet and how to authenticate against it.
type Config struct {
	SpreadsheetID string
	// CredentialsJSON takes precedence over CredentialsFile. When both are
	// empty GOOGLE_APPLICATION_CREDENTIALS is consulted.
	CredentialsJSON string
	CredentialsFile string
	// An OAuth client plus a token saved by Authorize replaces the service
	// account and acts as the consenting user.
	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenFile  string
	DashboardSheet  string
	LedgerSheet     string
	// Options are appended to the client options; tests use them to point
	// the client at a fake endpoint.
	Options []goption.ClientOption
}

// New creates a Sheets client using OAuth user credentials when configured,
// service account credentials otherwise.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	opts := cfg.Options
	if len(opts) == 0 {
		var err error
		if opts, err = clientOptions(ctx, cfg); err != nil {
			return nil, err
		}
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	c := &Client{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		dashboardBase: strings.TrimSpace(cfg.DashboardSheet),
		ledgerBase:    strings.TrimSpace(cfg.LedgerSheet),
	}
	if c.dashboardBase == "" {
		c.dashboardBase = "Dashboard"
	}
	if c.ledgerBase == "" {
		c.ledgerBase = "Transactions"
	}
	return c, nil
}

func clientOptions(ctx context.Context, cfg Config) ([]goption.ClientOption, error) {
	client, err := oauthClient(cfg)
	if err != nil {
		return nil, err
	}
	if client != nil {
		if strings.TrimSpace(cfg.OAuthTokenFile) == "" {
			return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_FILE, run sheets-auth to create it)")
		}
		oc, err := OAuthConfig(client, "")
		if err != nil {
			return nil, err
		}
		tok, err := ReadToken(cfg.OAuthTokenFile)
		if err != nil {
			return nil, err
		}
		slog.InfoContext(ctx, "Using OAuth user credentials for Google Sheets")
		return []goption.ClientOption{goption.WithTokenSource(oc.TokenSource(ctx, tok))}, nil
	}

	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	return []goption.ClientOption{
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	if path := strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read GOOGLE_APPLICATION_CREDENTIALS: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
}

// ExportYear replaces the year's dashboard and ledger tabs. It returns the
// dashboard range that was written.
func (c *Client) ExportYear(ctx context.Context, a core.AnnualSummary, txs []core.Transaction) (string, error) {
	dashboard := yearPrefixedName(c.dashboardBase, a.Year)
	ledger := yearPrefixedName(c.ledgerBase, a.Year)
	if err := c.ensureSheets(ctx, dashboard, ledger); err != nil {
		return "", err
	}
	ref, err := c.replace(ctx, dashboard, buildDashboard(a))
	if err != nil {
		return "", err
	}
	if _, err := c.replace(ctx, ledger, buildLedger(txs)); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "Exported year to Google Sheets",
		"year", a.Year,
		"dashboard", dashboard,
		"transactions", len(txs))
	return ref, nil
}

// ReadDashboard reads a dashboard tab written by ExportYear.
func (c *Client) ReadDashboard(ctx context.Context, year int) (core.AnnualSummary, error) {
	rng := fmt.Sprintf("%s!A1:O", yearPrefixedName(c.dashboardBase, year))
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return core.AnnualSummary{}, fmt.Errorf("read %s: %w", rng, err)
	}
	return parseDashboard(resp.Values, year)
}

// ensureSheets adds any of titles missing from the spreadsheet.
func (c *Client) ensureSheets(ctx context.Context, titles ...string) error {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	have := map[string]bool{}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			have[sh.Properties.Title] = true
		}
	}
	var reqs []*gsheet.Request
	for _, t := range titles {
		if !have[t] {
			reqs = append(reqs, &gsheet.Request{AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: t}}})
		}
	}
	if len(reqs) == 0 {
		return nil
	}
	_, err = c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, &gsheet.BatchUpdateSpreadsheetRequest{Requests: reqs}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("add sheets: %w", err)
	}
	return nil
}

func (c *Client) replace(ctx context.Context, sheet string, rows [][]any) (string, error) {
	all := fmt.Sprintf("%s!A:Z", sheet)
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, all, &gsheet.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear %s: %w", all, err)
	}
	rng := fmt.Sprintf("%s!A1", sheet)
	resp, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}
	if resp.UpdatedRange != "" {
		return resp.UpdatedRange, nil
	}
	return rng, nil
}
