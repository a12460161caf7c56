package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/portfolio-cms/internal/apiclient"
	"github.com/sakif/portfolio-cms/internal/apperror"
	sqliteRepo "github.com/sakif/portfolio-cms/internal/repository/sqlite"
)

func newCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe the REST API and the session store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			client, err := apiclient.New(cfg.APIBaseURL, logger)
			if err != nil {
				return err
			}
			// A missing about record still proves the API answered.
			if _, err := client.About().Get(ctx); err != nil && !errors.Is(err, apperror.ErrNotFound) {
				return fmt.Errorf("api %s: %w", cfg.APIBaseURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "api       ok  %s\n", cfg.APIBaseURL)

			db, err := sqliteRepo.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Ping(ctx); err != nil {
				return fmt.Errorf("session store %s: %w", cfg.DBPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sessions  ok  %s\n", cfg.DBPath)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "give up after this long")
	return cmd
}
