package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/match"
	"github.com/amishk599/jobsnap/internal/model"
)

var (
	notifyUser string
	notifyTop  int
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a user's top matches to the configured notifier",
	RunE:  runNotify,
}

func init() {
	notifyCmd.Flags().StringVarP(&notifyUser, "user", "u", "", "user whose matches to send (required)")
	notifyCmd.Flags().IntVar(&notifyTop, "top", 0, "number of matches to send (default: notification.top)")
	notifyCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(notifyCmd)
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	top := notifyTop
	if top == 0 {
		top = cfg.Notification.Top
	}

	ctx := context.Background()
	matcher := match.NewMatcher(sqlStore, sqlStore, nil, logger)
	page, err := matcher.Match(ctx, notifyUser, model.PageRequest{Page: 1, Limit: top})
	if err != nil {
		logger.Error("match failed", "user", notifyUser, "error", err)
		os.Exit(1)
	}
	if len(page.Results) == 0 {
		logger.Info("no postings to send, run fetch first")
		return nil
	}

	n := setupNotifier(cfg, &http.Client{Timeout: 30 * time.Second}, logger)
	if err := n.Notify(ctx, notifyUser, page.Results); err != nil {
		logger.Error("notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("notification sent", "user", notifyUser, "matches", len(page.Results))
	return nil
}
