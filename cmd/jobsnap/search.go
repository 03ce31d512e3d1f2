package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/aggregate"
	"github.com/amishk599/jobsnap/internal/model"
)

var (
	searchPage  int
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search cached postings",
	Long:  "Case-insensitive search over title, company, description and tags of cached postings, newest first. Without a query, lists everything.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPage, "page", "p", model.DefaultPage, "page number")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", model.DefaultLimit, "postings per page")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	agg := aggregate.New(nil, sqlStore, aggregate.Options{}, logger)
	req := model.PageRequest{Page: searchPage, Limit: searchLimit}

	var (
		page aggregate.Page
		err  error
	)
	if len(args) == 1 {
		page, err = agg.Search(context.Background(), args[0], req)
	} else {
		page, err = agg.ListAll(context.Background(), req)
	}
	if err != nil {
		logger.Error("search failed", "error", err)
		os.Exit(1)
	}

	printPostings(page.Postings, model.PageRequest{Page: page.Pagination.Page, Limit: page.Pagination.Limit}.Offset())
	printPagination(page.Pagination)
	return nil
}

func printPostings(postings []model.Posting, offset int) {
	if len(postings) == 0 {
		fmt.Println("No postings found.")
		return
	}
	fmt.Printf("%-5s %-40s %-22s %-20s %s\n", "#", "Title", "Company", "Location", "Source")
	fmt.Println(strings.Repeat("─", 100))
	for i, p := range postings {
		fmt.Printf("%-5d %-40s %-22s %-20s %s\n", offset+i+1, truncate(p.Title, 40), truncate(p.Company, 22), truncate(p.Location, 20), p.Source)
	}
}

func printPagination(pg model.Pagination) {
	fmt.Printf("\nPage %d of %d (%d total)\n", pg.Page, max(pg.Pages, 1), pg.Total)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
