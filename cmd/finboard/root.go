package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finboard/internal/cli"
	"finboard/internal/config"
	"finboard/internal/log"
)

// rootEnv is filled by the root command before any subcommand runs.
type rootEnv struct {
	envFiles []string
	logLevel string

	cfg    *config.Config
	logger *log.Logger
}

func newRootCmd() *cobra.Command {
	rt := &rootEnv{}
	cmd := &cobra.Command{
		Use:   "finboard",
		Short: "Personal finance dashboard",
		Long: `finboard tracks income and expenses, savings goals, credit cards,
recurring bills and days off, and syncs them to a remote store.`,
		SilenceUsage:      true,
		PersistentPreRunE: rt.init,
	}

	cmd.PersistentFlags().StringSliceVar(&rt.envFiles, "env-file", nil, "env files to load (default: .env when present)")
	cmd.PersistentFlags().StringVar(&rt.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	cmd.AddCommand(serveCmd(rt))
	cmd.AddCommand(workerCmd(rt))
	cmd.AddCommand(recurringCmd(rt))
	cmd.AddCommand(calendarCmd(rt))
	cmd.AddCommand(exportCmd(rt))
	cmd.AddCommand(sheetsAuthCmd(rt))
	cmd.AddCommand(migrateCmd(rt))
	cmd.AddCommand(tokenCmd(rt))
	cmd.AddCommand(versionCmd())

	return cmd
}

func (rt *rootEnv) init(cmd *cobra.Command, _ []string) error {
	switch cmd.Name() {
	case "version", "help", "completion":
		return nil
	}
	cfg, err := cli.LoadConfig(rt.envFiles...)
	if err != nil {
		return err
	}
	if rt.logLevel != "" {
		if _, err := log.ParseLevel(rt.logLevel); err != nil {
			return fmt.Errorf("--log-level: %w", err)
		}
		cfg.LogLevel = rt.logLevel
	}
	rt.cfg = cfg
	rt.logger = cli.SetupLogger(cfg)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}
