package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/match"
	"github.com/amishk599/jobsnap/internal/model"
)

var (
	matchUser  string
	matchPage  int
	matchLimit int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Rank cached postings against a user's skills",
	RunE:  runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchUser, "user", "u", "", "user whose skill profile to match (required)")
	matchCmd.Flags().IntVarP(&matchPage, "page", "p", model.DefaultPage, "page number")
	matchCmd.Flags().IntVarP(&matchLimit, "limit", "n", 0, "matches per page (default: match.default_limit)")
	matchCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	limit := matchLimit
	if limit == 0 {
		limit = cfg.Match.DefaultLimit
	}

	matcher := match.NewMatcher(sqlStore, sqlStore, nil, logger)
	page, err := matcher.Match(context.Background(), matchUser, model.PageRequest{Page: matchPage, Limit: limit})
	if err != nil {
		logger.Error("match failed", "user", matchUser, "error", err)
		os.Exit(1)
	}

	if len(page.UserSkillsSample) == 0 {
		fmt.Printf("No skills on file for %s; showing newest postings unscored.\n\n", matchUser)
	} else {
		fmt.Printf("Skills: %s\n\n", strings.Join(page.UserSkillsSample, ", "))
	}
	printMatches(page.Results, model.PageRequest{Page: page.Pagination.Page, Limit: page.Pagination.Limit}.Offset())
	printPagination(page.Pagination)
	return nil
}

func printMatches(results []model.MatchResult, offset int) {
	if len(results) == 0 {
		fmt.Println("No postings cached. Run `jobsnap fetch` first.")
		return
	}
	fmt.Printf("%-5s %-6s %-38s %-20s %s\n", "#", "Match", "Title", "Company", "Skills")
	fmt.Println(strings.Repeat("─", 100))
	for i, r := range results {
		fmt.Printf("%-5d %-6s %-38s %-20s %s\n",
			offset+i+1,
			fmt.Sprintf("%d%%", r.MatchPercentage),
			truncate(r.Posting.Title, 38),
			truncate(r.Posting.Company, 20),
			strings.Join(r.MatchedSkills, ", "),
		)
	}
}
