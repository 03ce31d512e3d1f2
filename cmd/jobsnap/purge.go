package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var purgeOlderThan time.Duration

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached postings older than a given age",
	RunE:  runPurge,
}

func init() {
	purgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 7*24*time.Hour, "delete postings cached longer ago than this")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	if purgeOlderThan <= 0 {
		logger.Error("--older-than must be positive")
		os.Exit(1)
	}

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	n, err := sqlStore.Purge(context.Background(), purgeOlderThan)
	if err != nil {
		logger.Error("purge failed", "error", err)
		os.Exit(1)
	}
	fmt.Printf("Purged %d postings cached more than %s ago\n", n, purgeOlderThan)
	return nil
}
