package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Long: `Serve exposes page analysis, the wellness score and the weekly report
as a JSON API for a browser extension or popup. Session statistics are
saved periodically and on shutdown.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, _, closeApp, err := openApp(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeApp()

			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				application.SetAddr(addr)
			}
			return application.Serve(ctx)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (overrides server.addr)")

	return cmd
}
