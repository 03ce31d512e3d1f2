package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/api"
	"github.com/amishk599/jobsnap/internal/match"
	"github.com/amishk599/jobsnap/internal/resume"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long:  "Starts the HTTP API; blocks until SIGINT/SIGTERM.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responses := setupCache(ctx, cfg, logger)
	if responses != nil {
		defer responses.Close()
	}

	srv := api.NewServer(
		newAggregator(cfg, sqlStore, responses, logger),
		match.NewMatcher(sqlStore, sqlStore, nil, logger),
		resume.NewImporter(sqlStore, logger),
		cfg.Fetch.DefaultLimit,
		logger,
	)

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("goodbye")
	return nil
}
