package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/browse"
	"github.com/amishk599/jobsnap/internal/match"
	"github.com/amishk599/jobsnap/internal/model"
)

var browseUser string

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse a user's ranked matches interactively",
	RunE:  runBrowse,
}

func init() {
	browseCmd.Flags().StringVarP(&browseUser, "user", "u", "", "user whose matches to browse (required)")
	browseCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	// Log lines would corrupt the alt screen.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	matcher := match.NewMatcher(sqlStore, sqlStore, nil, quiet)
	loadPage := func(ctx context.Context, page int) (match.MatchPage, error) {
		return matcher.Match(ctx, browseUser, model.PageRequest{Page: page, Limit: cfg.Match.DefaultLimit})
	}

	first, err := loadPage(context.Background(), 1)
	if err != nil {
		logger.Error("match failed", "user", browseUser, "error", err)
		os.Exit(1)
	}

	if err := browse.Run(browseUser, first, loadPage); err != nil {
		logger.Error("browse failed", "error", err)
		os.Exit(1)
	}
	return nil
}
