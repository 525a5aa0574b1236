package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/ingestion"
)

func newBackfillCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "backfill",
		Short: "Embed every candidate and position that has no vector yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			database, err := opts.openDB(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			generator, err := opts.newEmbedder(ctx)
			if err != nil {
				return err
			}

			summary, err := ingestion.NewBackfiller(database, generator).Run(ctx)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Candidates: %d/%d embedded, %d failed\n",
				summary.Candidates.Updated, summary.Candidates.Total, summary.Candidates.Failed)
			_, _ = fmt.Fprintf(out, "Positions:  %d/%d embedded, %d failed\n",
				summary.Positions.Updated, summary.Positions.Total, summary.Positions.Failed)
			if summary.Candidates.Failed+summary.Positions.Failed > 0 {
				return fmt.Errorf("%d embeddings failed", summary.Candidates.Failed+summary.Positions.Failed)
			}
			return nil
		},
	}
}
