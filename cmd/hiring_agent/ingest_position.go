package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/fetch"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/matching"
	"github.com/jonathan/hiring-pipeline/internal/observability"
)

type positionFlags struct {
	file       string
	url        string
	useBrowser bool
	input      ingestion.PositionInput
}

func newIngestPositionCmd(opts *rootOptions) *cobra.Command {
	flags := &positionFlags{}
	cmd := &cobra.Command{
		Use:   "ingest-position",
		Short: "Parse, store and shortlist a job posting",
		Long: `Parse a job posting from a text file or a URL into a structured position,
store it with its embedding and print the best matching candidates.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.check(); err != nil {
				return err
			}
			return runIngestPosition(cmd.Context(), opts, cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Path to a job posting text file")
	cmd.Flags().StringVarP(&flags.url, "url", "u", "", "URL of a job posting page")
	cmd.Flags().BoolVar(&flags.useBrowser, "browser", false, "Fall back to headless Chrome for JavaScript-rendered pages")
	cmd.Flags().StringVar(&flags.input.Title, "title", "", "Position title")
	cmd.Flags().StringVar(&flags.input.Company, "company", "", "Company name")
	cmd.Flags().StringVar(&flags.input.Location, "location", "", "Location")
	cmd.Flags().StringVar(&flags.input.Compensation, "compensation", "", "Compensation range")
	cmd.Flags().StringVar(&flags.input.Urgency, "urgency", "", "Urgency (Low, Medium, High, Critical)")
	cmd.Flags().StringVar(&flags.input.ContactName, "contact-name", "", "Hiring contact name")
	cmd.Flags().StringVar(&flags.input.ContactEmail, "contact-email", "", "Hiring contact email")
	return cmd
}

func (f *positionFlags) check() error {
	if (f.file == "") == (f.url == "") {
		return errors.New("exactly one of --file or --url is required")
	}
	return nil
}

func runIngestPosition(ctx context.Context, opts *rootOptions, cmd *cobra.Command, flags *positionFlags) error {
	in := flags.input
	if flags.file != "" {
		content, err := os.ReadFile(flags.file)
		if err != nil {
			return fmt.Errorf("failed to read posting: %w", err)
		}
		in.Description = string(content)
	}

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

	matcher := matching.NewMatcher(database, generator, matchingConfig(opts.cfg))
	ingestor := ingestion.NewPositionIngestor(client, database, generator, matcher)

	var res *ingestion.PositionResult
	if flags.url != "" {
		res, err = ingestor.IngestURL(ctx, flags.url, in, fetch.PostingOptions{UseBrowser: flags.useBrowser})
	} else {
		res, err = ingestor.Ingest(ctx, in)
	}
	if err != nil {
		return err
	}

	if opts.jsonOutput {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	printer := observability.NewPrinter(cmd.OutOrStdout())
	printer.PrintPosition(res.Position)
	printer.PrintMatches("Shortlist for "+res.PositionID, res.Shortlist)
	return nil
}
