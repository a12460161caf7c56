package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/portfolio-cms/internal/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio",
		Short:        "Portfolio site and admin dashboard backed by a REST API",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd(), newCheckCmd(), newSessionsCmd())
	return root
}

// loadConfig resolves the environment and builds the logger every command
// uses.
func loadConfig(out io.Writer) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, nil, err
	}
	return cfg, newLogger(out, cfg), nil
}

func newLogger(out io.Writer, cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}
