package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"BrainGuard/internal/app"
	"BrainGuard/internal/config"
	"BrainGuard/internal/logging"
)

// NewRootCmd creates the root command for BrainGuard.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "brainguard",
		Short: "Score pages for brain rot and track digital wellness",
		Long: `BrainGuard reads web pages, counts brain rot vocabulary,
classifies the result into a severity tier and keeps a wellness score
for the current session. Session statistics are stored locally and can
be summarised as a weekly report.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: $XDG_CONFIG_HOME/brainguard/config.yaml)")
	cmd.PersistentFlags().String("log-level", "",
		"Log level: debug, info, warn, error")

	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewWatchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewReportCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration honouring the persistent flags.
func loadConfig(cmd *cobra.Command) config.Config {
	var cfg config.Config
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		cfg = config.LoadFile(path)
	} else {
		cfg = config.Load()
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	return cfg
}

// openApp builds the application; the returned closer drains and releases it.
func openApp(ctx context.Context, cmd *cobra.Command) (*app.Application, *slog.Logger, func(), error) {
	cfg := loadConfig(cmd)
	logger := logging.New(cfg.Logging.Level)
	slog.SetDefault(logger)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	closer := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Dispatch.SendTimeout)
		defer cancel()
		if err := application.Close(closeCtx); err != nil {
			logger.Warn("close failed", "err", err)
		}
	}
	return application, logger, closer, nil
}
