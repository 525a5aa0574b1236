package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/matching"
	"github.com/jonathan/hiring-pipeline/internal/observability"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		limit         int
		minSimilarity float64
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find candidates semantically similar to free text",
		Example: `  hiring_agent search "senior Go developer with Kubernetes experience"
  hiring_agent search --limit 20 --min-similarity 0.5 data engineer`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
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

			matches, err := matching.NewMatcher(database, generator, matchingConfig(opts.cfg)).
				SearchCandidates(ctx, query, limit, minSimilarity)
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return writeJSON(cmd.OutOrStdout(), matches)
			}
			observability.NewPrinter(cmd.OutOrStdout()).PrintMatches("Search: "+query, matches)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum results (default 10)")
	cmd.Flags().Float64Var(&minSimilarity, "min-similarity", -1, "Minimum similarity in [0,1] (default 0.6)")
	return cmd
}
