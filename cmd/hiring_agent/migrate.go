package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/db"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := opts.cfg.RequireDatabase(); err != nil {
				return err
			}
			// Connect applies the embedded migrations before opening the pool.
			database, err := db.Connect(cmd.Context(), opts.cfg.Database.URL, db.Options{Migrate: true})
			if err != nil {
				return err
			}
			database.Close()
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return err
		},
	}
}
