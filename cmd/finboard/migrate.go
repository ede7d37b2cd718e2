package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finboard/internal/storage"
)

func migrateCmd(rt *rootEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RunMigrations(rt.cfg.SQLiteDBPath); err != nil {
				return err
			}
			version, dirty, err := storage.MigrationVersion(rt.cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s at version %d (dirty: %t)\n", rt.cfg.SQLiteDBPath, version, dirty)
			return nil
		},
	}
}
