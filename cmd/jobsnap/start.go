package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/scheduler"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the refresh daemon",
	Long:  "Runs a fetch cycle immediately and then on schedule.spec; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	logger.Info("config loaded",
		"schedule", cfg.Schedule.Spec,
		"search", cfg.Schedule.Search,
		"limit", cfg.Schedule.Limit,
		"sources", len(cfg.Sources),
	)

	schedule, err := scheduler.ParseSchedule(cfg.Schedule.Spec)
	if err != nil {
		logger.Error("invalid schedule", "error", err)
		os.Exit(1)
	}

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responses := setupCache(ctx, cfg, logger)
	if responses != nil {
		defer responses.Close()
	}
	agg := newAggregator(cfg, sqlStore, responses, logger)

	refresh := func(ctx context.Context) error {
		res, err := agg.FetchAndCache(ctx, cfg.Schedule.Search, cfg.Schedule.Limit)
		if err != nil {
			return err
		}
		logger.Info("refresh cycle done", "postings", res.Total, "source", res.Source)
		return nil
	}

	sched := scheduler.NewScheduler(refresh, schedule, logger)
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
