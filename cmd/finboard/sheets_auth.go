package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	gsheet "finboard/internal/sheets/google"
)

func sheetsAuthCmd(rt *rootEnv) *cobra.Command {
	var (
		out     string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "sheets-auth",
		Short: "Authorize Google Sheets access with an OAuth client",
		Long: `Run the OAuth consent flow for the client in GOOGLE_OAUTH_CLIENT_JSON or
GOOGLE_OAUTH_CLIENT_FILE and save the token for the export command.
Add http://localhost:<OAUTH_REDIRECT_PORT>/callback to the client's
authorized redirect URIs first.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			clientJSON, err := readOAuthClient(rt)
			if err != nil {
				return err
			}
			oc, err := gsheet.OAuthConfig(clientJSON, "")
			if err != nil {
				return err
			}
			if out == "" {
				out = rt.cfg.GoogleOAuthTokenFile
			}
			if out == "" {
				out = "token.json"
			}

			ln, err := net.Listen("tcp", "localhost:"+rt.cfg.OAuthRedirectPort)
			if err != nil {
				return fmt.Errorf("listen for oauth redirect: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			tok, err := gsheet.Authorize(ctx, oc, ln, func(authURL string) {
				fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n", authURL)
			})
			if err != nil {
				return err
			}
			if err := gsheet.WriteToken(out, tok); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "token file (default: GOOGLE_OAUTH_TOKEN_FILE or token.json)")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "how long to wait for consent")
	return cmd
}

func readOAuthClient(rt *rootEnv) ([]byte, error) {
	switch {
	case rt.cfg.GoogleOAuthClientJSON != "":
		return []byte(rt.cfg.GoogleOAuthClientJSON), nil
	case rt.cfg.GoogleOAuthClientFile != "":
		b, err := os.ReadFile(rt.cfg.GoogleOAuthClientFile)
		if err != nil {
			return nil, fmt.Errorf("read oauth client file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("set GOOGLE_OAUTH_CLIENT_JSON or GOOGLE_OAUTH_CLIENT_FILE")
}
