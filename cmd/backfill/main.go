package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/team-events/internal/app"
	"github.com/riskibarqy/team-events/internal/config"
	"github.com/riskibarqy/team-events/internal/platform/logging"
	"github.com/riskibarqy/team-events/internal/usecase"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "backfill",
		Short:         "Repair team links and roster participants for stored events",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newRunCmd())
	return root
}

type runOptions struct {
	eventIDs     []int64
	attachRoster bool
	workers      int
	failOnError  bool
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Rewrite event_teams from each event's resolved teams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runBackfill(ctx, cmd, opts)
		},
	}

	cmd.Flags().Int64SliceVar(&opts.eventIDs, "event-id", nil, "Limit the run to these event ids (repeatable)")
	cmd.Flags().BoolVar(&opts.attachRoster, "attach-roster", false, "Also insert missing roster participants")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "Number of events processed concurrently")
	cmd.Flags().BoolVar(&opts.failOnError, "fail-on-error", false, "Exit non-zero when any event fails")

	return cmd
}

func runBackfill(ctx context.Context, cmd *cobra.Command, opts runOptions) error {
	if opts.workers < 1 {
		return fmt.Errorf("--workers must be >= 1")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		ServiceName: "team-events-backfill",
		Environment: cfg.AppEnv,
		Output:      cmd.ErrOrStderr(),
	})
	logging.SetDefault(logger)
	defer logger.Sync() //nolint:errcheck

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer container.Close()

	result, err := container.Backfill.Run(ctx, usecase.BackfillInput{
		EventIDs:     opts.eventIDs,
		AttachRoster: opts.attachRoster,
		MaxWorkers:   opts.workers,
	})
	if err != nil {
		return err
	}

	out, err := sonic.ConfigStd.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if opts.failOnError && result.FailedCount > 0 {
		return fmt.Errorf("%d event(s) failed", result.FailedCount)
	}
	return nil
}
