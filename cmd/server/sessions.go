package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	sqliteRepo "github.com/sakif/portfolio-cms/internal/repository/sqlite"
)

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored browser sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			db, err := sqliteRepo.New(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.DeleteExpired(cmd.Context(), time.Now().UTC())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d expired session(s)\n", n)
			return nil
		},
	})
	return cmd
}
