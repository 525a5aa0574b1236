package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/matching"
	"github.com/jonathan/hiring-pipeline/internal/observability"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

type matchFlags struct {
	candidateID   string
	positionID    string
	limit         int
	minSimilarity float64
	explain       bool
}

func newMatchCmd(opts *rootOptions) *cobra.Command {
	flags := &matchFlags{}
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Rank candidates for a position or positions for a candidate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (flags.candidateID == "") == (flags.positionID == "") {
				return errors.New("exactly one of --candidate or --position is required")
			}
			if flags.explain && flags.candidateID == "" {
				return errors.New("--explain is only supported with --candidate")
			}
			return runMatch(cmd.Context(), opts, cmd, flags)
		},
	}
	cmd.Flags().StringVar(&flags.candidateID, "candidate", "", "Candidate ID, e.g. candidate_001")
	cmd.Flags().StringVar(&flags.positionID, "position", "", "Position ID, e.g. position_001")
	cmd.Flags().IntVarP(&flags.limit, "limit", "n", 0, "Maximum matches (default from config)")
	cmd.Flags().Float64Var(&flags.minSimilarity, "min-similarity", -1, "Minimum similarity in [0,1] (default from config)")
	cmd.Flags().BoolVar(&flags.explain, "explain", false, "Generate a short explanation for each match")
	return cmd
}

func runMatch(ctx context.Context, opts *rootOptions, cmd *cobra.Command, flags *matchFlags) error {
	database, err := opts.openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	generator, err := opts.newEmbedder(ctx)
	if err != nil {
		return err
	}
	matcher := matching.NewMatcher(database, generator, matchingConfig(opts.cfg))

	var (
		matches []types.MatchResult
		title   string
	)
	if flags.positionID != "" {
		title = "Candidates for " + flags.positionID
		matches, err = matcher.CandidatesForPosition(ctx, flags.positionID, flags.limit, flags.minSimilarity)
	} else {
		title = "Positions for " + flags.candidateID
		matches, err = matcher.PositionsForCandidate(ctx, flags.candidateID, flags.limit, flags.minSimilarity)
	}
	if err != nil {
		return err
	}

	if flags.explain && len(matches) > 0 {
		if err := explainMatches(ctx, opts, database, flags.candidateID, matches); err != nil {
			return err
		}
	}

	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), matches)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintMatches(title, matches)
	return nil
}

type profileStore interface {
	GetCandidate(ctx context.Context, id string) (*types.CandidateProfile, error)
	GetPosition(ctx context.Context, id string) (*types.PositionProfile, error)
}

func explainMatches(ctx context.Context, opts *rootOptions, store profileStore, candidateID string, matches []types.MatchResult) error {
	client, err := opts.newLLM(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	candidate, err := store.GetCandidate(ctx, candidateID)
	if err != nil {
		return err
	}
	positions := make(map[string]*types.PositionProfile, len(matches))
	for _, m := range matches {
		p, err := store.GetPosition(ctx, m.ID)
		if err != nil {
			return err
		}
		if p != nil {
			positions[m.ID] = p
		}
	}
	matching.NewExplainer(client).ExplainAll(ctx, candidate, matches, positions)
	return nil
}
