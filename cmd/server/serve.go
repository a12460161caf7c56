package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sakif/portfolio-cms/internal/server"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cfg.GeneratedSecret {
				logger.Warn("SESSION_SECRET not set, using a random secret: sessions will not survive a restart")
			}

			srv, err := server.New(cfg, logger)
			if err != nil {
				logger.Error("failed to create server", slog.String("error", err.Error()))
				return err
			}
			return srv.Start()
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "port to listen on (overrides PORT)")
	return cmd
}
