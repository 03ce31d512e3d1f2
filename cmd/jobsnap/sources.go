package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List all configured job sources",
	Long:  "Reads the config and prints a table of all configured job sources in fetch order.",
	RunE:  runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-28s %-22s %-8s %-6s %s\n", "Source", "Name", "Expand", "Pages", "Status")
	fmt.Println(strings.Repeat("─", 75))

	enabled, disabled := 0, 0
	for _, s := range cfg.Sources {
		status := "enabled"
		if !s.Enabled {
			status = "disabled"
			disabled++
		} else {
			enabled++
		}
		pages := max(s.Pages, 1)
		fmt.Printf("%-28s %-22s %-8t %-6d %s\n", s.Label(), s.Name, s.ExpandTerms, pages, status)
	}

	fmt.Printf("\nTotal: %d sources (%d enabled, %d disabled)\n", len(cfg.Sources), enabled, disabled)
	return nil
}
