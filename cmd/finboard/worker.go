package main

import (
	"github.com/spf13/cobra"

	"finboard/internal/cli"
)

func workerCmd(rt *rootEnv) *cobra.Command {
	var retryFailed bool
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Push queued changes to the remote store",
		Long: `Run the outbox sync worker on its own. It polls the sync queue and, when
AMQP is configured, wakes up early on change notifications.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			app, err := cli.NewApp(ctx, rt.cfg, rt.logger, cli.Options{Remote: true, AMQP: true})
			if err != nil {
				return err
			}
			defer app.Close()

			w, err := newSyncWorker(app, retryFailed)
			if err != nil {
				return err
			}
			rt.logger.InfoContext(ctx, "Starting sync worker",
				"amqp", app.AMQP != nil,
				"batch_size", rt.cfg.SyncBatchSize,
				"interval", rt.cfg.SyncInterval)
			return w.Run(ctx)
		},
	}
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "requeue failed items before starting")
	return cmd
}
