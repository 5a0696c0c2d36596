package main

import (
	"github.com/spf13/cobra"

	"BrainGuard/internal/report"
)

// NewReportCmd creates the report command.
func NewReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the weekly wellness report",
		Long: `Report aggregates the sessions stored over the last seven days into
total sites, brain rot detections, productive time and the top categories.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			return writer.WriteWeekly(application.WeeklyReport(cmd.Context()))
		},
	}

	cmd.Flags().StringP("format", "f", "markdown", "Report format: markdown or json")

	return cmd
}
