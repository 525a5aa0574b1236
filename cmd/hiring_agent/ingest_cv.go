package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/extraction"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/observability"
)

func newIngestCVCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest-cv <file>...",
		Short: "Extract, validate, embed and store one or more CVs",
		Long: `Parse CV files (PDF, DOCX, DOC, RTF, ODT, TXT, MD), extract a structured
candidate profile, validate it and store it with its embedding. A CV whose email
is already known is archived against the existing candidate.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngestCV(cmd.Context(), opts, cmd, args)
		},
	}
}

func runIngestCV(ctx context.Context, opts *rootOptions, cmd *cobra.Command, paths []string) error {
	database, err := opts.openDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	client, err := opts.newLLM(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	generator, err := opts.newEmbedder(ctx)
	if err != nil {
		return err
	}
	archive, err := opts.newArchive(ctx)
	if err != nil {
		return err
	}

	ingestor := ingestion.NewCVIngestor(extraction.NewExtractor(client), generator, database).WithArchive(archive)
	printer := observability.NewPrinter(cmd.OutOrStdout())

	var failed int
	for _, path := range paths {
		res, err := ingestor.Ingest(ctx, path)
		if err != nil {
			failed++
			logger.Error().Err(err).Str("file", path).Msg("CV ingestion failed")
			continue
		}

		if opts.jsonOutput {
			if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			continue
		}
		if res.Duplicate {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: already known as %s, CV archived\n", path, res.CandidateID)
			continue
		}
		printer.PrintCandidate(res.Candidate)
		printer.PrintValidationReport(res.Report)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: stored as %s (embedded: %t)\n", path, res.CandidateID, res.Embedded)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d CVs failed", failed, len(paths))
	}
	return nil
}
