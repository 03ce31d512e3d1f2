package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobsnap/internal/resume"
)

var resumeUser string

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Résumé subcommands",
}

var resumeImportCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Extract skills from a résumé and store them as the user's profile",
	Long:  "Reads a PDF, DOCX or plain-text résumé, extracts known technical skills and replaces the user's skill profile.",
	Args:  cobra.ExactArgs(1),
	RunE:  runResumeImport,
}

func init() {
	resumeImportCmd.Flags().StringVarP(&resumeUser, "user", "u", "", "user to store the profile under (required)")
	resumeImportCmd.MarkFlagRequired("user")
	resumeCmd.AddCommand(resumeImportCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runResumeImport(cmd *cobra.Command, args []string) error {
	cfg, logger := mustLoad()

	data, err := os.ReadFile(args[0])
	if err != nil {
		logger.Error("failed to read résumé", "path", args[0], "error", err)
		os.Exit(1)
	}

	sqlStore := openStore(cfg, logger)
	defer sqlStore.Close()

	importer := resume.NewImporter(sqlStore, logger)
	profile, err := importer.Import(context.Background(), resumeUser, resume.DetectMIME(args[0], data), data)
	if err != nil {
		logger.Error("résumé import failed", "user", resumeUser, "error", err)
		os.Exit(1)
	}

	if len(profile.Skills) == 0 {
		fmt.Println("No known skills found in résumé.")
		return nil
	}
	fmt.Printf("Stored %d skills for %s: %s\n", len(profile.Skills), resumeUser, strings.Join(profile.Skills, ", "))
	return nil
}
