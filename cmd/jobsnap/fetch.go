package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/aggregate"
	"github.com/amishk599/jobsnap/internal/browse"
	"github.com/amishk599/jobsnap/internal/model"
	"github.com/amishk599/jobsnap/internal/store"
)

var (
	fetchSearch      string
	fetchLimit       int
	fetchDryRun      bool
	fetchInteractive bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch postings from every source and cache them",
	Long:  "Runs one fetch cycle: queries the configured sources, normalizes and de-duplicates postings and upserts them into the store.",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchSearch, "search", "s", "", "search term (empty fetches the default term list)")
	fetchCmd.Flags().IntVarP(&fetchLimit, "limit", "n", 0, "target number of postings (default: fetch.default_limit)")
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "fetch and print without writing to the store")
	fetchCmd.Flags().BoolVarP(&fetchInteractive, "interactive", "i", false, "pick the search term from a list")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	if fetchInteractive {
		term, ok, err := browse.RunPicker("Fetch postings: select a search term", aggregate.SearchTerms(fetchSearch))
		if err != nil {
			logger.Error("picker failed", "error", err)
			os.Exit(1)
		}
		if !ok {
			return nil
		}
		fetchSearch = term
	}

	limit := fetchLimit
	if limit == 0 {
		limit = cfg.Fetch.DefaultLimit
	}

	var postings model.PostingStore
	if fetchDryRun {
		logger.Info("dry-run mode, nothing will be written to the store")
		postings = store.NewNopStore()
	} else {
		sqlStore := openStore(cfg, logger)
		defer sqlStore.Close()
		postings = sqlStore
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responses := setupCache(ctx, cfg, logger)
	if responses != nil {
		defer responses.Close()
	}
	agg := newAggregator(cfg, postings, responses, logger)

	var res aggregate.Result
	var err error
	if fetchInteractive {
		res, err = browse.RunLoader("Fetching postings for "+fetchSearch, 5*time.Minute, func(ctx context.Context) (aggregate.Result, error) {
			return agg.FetchAndCache(ctx, fetchSearch, limit)
		})
	} else {
		res, err = agg.FetchAndCache(ctx, fetchSearch, limit)
	}
	if err != nil {
		logger.Error("fetch failed", "error", err)
		os.Exit(1)
	}

	if fetchDryRun {
		printPostings(res.Postings, 0)
	}
	fmt.Printf("\nFetched and cached %d postings (source: %s, skipped: %d, filtered: %d)\n",
		res.Total, res.Source, res.Skipped, res.Filtered)
	return nil
}
