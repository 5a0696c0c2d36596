package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"BrainGuard/internal/domain"
	"BrainGuard/internal/report"
	"BrainGuard/internal/usecase"
)

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <url>",
		Short: "Keep a page under observation",
		Long: `Watch analyzes a page, then re-analyzes it whenever its content or
final URL changes. Re-analysis is rate limited by the configured debounce
gap. With --stdin every line read from standard input requests a manual
re-analysis. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: runWatchCmd,
	}

	cmd.Flags().StringP("format", "f", "markdown", "Report format: markdown or json")
	cmd.Flags().Bool("stdin", false, "Trigger re-analysis on each line of standard input")

	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	writer, err := report.New(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, logger, closeApp, err := openApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer closeApp()

	watcher, run := application.Watch(ctx, args[0], func(result domain.PageAnalysis) {
		if err := writer.WriteAnalyses([]domain.PageAnalysis{result}, nil); err != nil {
			logger.Warn("write result failed", "err", err)
		}
	})

	if useStdin, _ := cmd.Flags().GetBool("stdin"); useStdin {
		go readTriggers(ctx, cmd, watcher.Trigger)
	}

	if err := run(); err != nil && ctx.Err() == nil {
		if usecase.Unsupported(err) {
			if werr := writer.WriteAnalyses(nil, []string{args[0]}); werr != nil {
				logger.Warn("write result failed", "err", werr)
			}
		}
		return err
	}
	stats := watcher.Stats()
	logger.Info("watch stopped", "accepted", stats.Accepted, "dropped", stats.Dropped)
	return nil
}

func readTriggers(ctx context.Context, cmd *cobra.Command, fire func() bool) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fire()
	}
}
