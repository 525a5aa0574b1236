package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/jonathan/hiring-pipeline/internal/extraction"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/matching"
	"github.com/jonathan/hiring-pipeline/internal/nlquery"
	"github.com/jonathan/hiring-pipeline/internal/server"
	"github.com/jonathan/hiring-pipeline/internal/server/middleware"
	"github.com/jonathan/hiring-pipeline/internal/server/ratelimit"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var (
		port       int
		useBrowser bool
		noAuth     bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: `Start an HTTP server exposing candidate and position ingestion, matching
and natural-language queries. Requests to /api are authenticated with bearer
tokens signed by JWT_SECRET unless --no-auth is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port == 0 {
				port = opts.cfg.Server.Port
			}
			return runServe(cmd.Context(), opts, port, useBrowser, noAuth)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default from config, 8080)")
	cmd.Flags().BoolVar(&useBrowser, "browser", false, "Render JavaScript job pages with headless Chrome when plain fetching fails")
	cmd.Flags().BoolVar(&noAuth, "no-auth", false, "Disable bearer-token authentication (development only)")
	return cmd
}

func runServe(parent context.Context, opts *rootOptions, port int, useBrowser, noAuth bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var tokens middleware.TokenValidator
	if !noAuth {
		jwtCfg, err := config.NewJWTConfig()
		if err != nil {
			return fmt.Errorf("%w (use --no-auth for local development)", err)
		}
		tokens = server.NewJWTService(jwtCfg).AsTokenValidator()
	} else {
		logger.Warn().Msg("authentication disabled")
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
	archive, err := opts.newArchive(ctx)
	if err != nil {
		return err
	}

	matcher := matching.NewMatcher(database, generator, matchingConfig(opts.cfg))
	cfg := opts.cfg

	srv := server.New(server.Config{
		Port:       port,
		RateLimit:  ratelimit.LoadConfig(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst),
		Tokens:     tokens,
		UseBrowser: useBrowser,
	}, server.Services{
		Store:      database,
		Candidates: ingestion.NewCVIngestor(extraction.NewExtractor(client), generator, database).WithArchive(archive),
		Positions:  ingestion.NewPositionIngestor(client, database, generator, matcher),
		Matcher:    matcher,
		Explainer:  matching.NewExplainer(client),
		Query: nlquery.NewService(client, database, database, nlquery.Options{
			AnswerRows:  cfg.Query.AnswerRows,
			PreviewRows: cfg.Query.PreviewRows,
		}),
	})
	return srv.Start(ctx)
}

func matchingConfig(cfg *config.Config) matching.Config {
	return matching.Config{
		Limit:            cfg.Matching.Limit,
		MinSimilarity:    cfg.Matching.MinSimilarity,
		OverFetchFactor:  cfg.Matching.OverFetchFactor,
		FlexibilityYears: cfg.Matching.FlexibilityYears,
	}
}
