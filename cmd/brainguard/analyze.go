package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"BrainGuard/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <url|file>...",
		Short: "Analyze one or more pages",
		Long: `Analyze fetches each target, scores its text and prints a report.

Targets are fetched concurrently and scored in the order given, so the
wellness score reflects the sequence as if the pages were visited one
after another. Browser-internal pages are listed as skipped.

Examples:
  brainguard analyze https://example.org/article
  brainguard analyze --format json page.html https://example.org`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAnalyzeCmd,
	}

	cmd.Flags().StringP("format", "f", "markdown", "Report format: markdown or json")

	return cmd
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	writer, err := report.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	application, _, closeApp, err := openApp(cmd.Context(), cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	results, skipped, analyzeErr := application.Analyze(cmd.Context(), args)
	if err := writer.WriteAnalyses(results, skipped); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return analyzeErr
}
