package commands

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"wealthwise/internal/backend"
	"wealthwise/internal/cli"
	"wealthwise/internal/log"
	"wealthwise/internal/worker"
)

func newWorkerCommand(configPath *string) *cobra.Command {
	var (
		group    string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Consume ledger events from the broker and log a running audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cli.LoadAndValidateConfig(*configPath)
			if err != nil {
				return err
			}
			logger := cli.SetupLogger(cfg, cmd.ErrOrStderr())

			ctx, stop := cli.SignalContext(cmd.Context())
			defer stop()

			consumer, err := backend.NewConsumer(ctx, cfg, group, logger)
			if err != nil {
				return err
			}
			defer func() {
				if err := consumer.Close(); err != nil {
					logger.Error("Failed to close event consumer", log.FieldError, err)
				}
			}()

			logger.Info("Starting wealthwise worker", "broker", cfg.EventsBroker)
			err = worker.NewAuditWorker(logger).Run(ctx, consumer, interval)
			if errors.Is(err, context.Canceled) {
				logger.Info("Worker stopped gracefully")
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&group, "group", "wealthwise-audit", "Kafka consumer group")
	cmd.Flags().DurationVar(&interval, "report-interval", time.Minute, "how often to log the audit summary (0 disables)")

	return cmd
}
