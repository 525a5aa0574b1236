package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiring-pipeline/internal/config"
	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/embedding"
	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/storage"
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
	jsonOutput bool

	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "hiring_agent",
		Short:         "Candidate and position matching pipeline",
		Long:          "hiring_agent ingests CVs and job postings, stores them with vector embeddings and matches candidates to positions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to a config file (yaml, json or toml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as JSON")

	cmd.AddCommand(
		newServeCmd(opts),
		newIngestCVCmd(opts),
		newIngestPositionCmd(opts),
		newMatchCmd(opts),
		newSearchCmd(opts),
		newAskCmd(opts),
		newBackfillCmd(opts),
		newMigrateCmd(opts),
		newTokenCmd(opts),
	)
	return cmd
}

func (o *rootOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	o.cfg = cfg
	return nil
}

func (o *rootOptions) openDB(ctx context.Context) (*db.DB, error) {
	if err := o.cfg.RequireDatabase(); err != nil {
		return nil, err
	}
	return db.Connect(ctx, o.cfg.Database.URL, db.Options{
		MaxConns: o.cfg.Database.MaxConns,
		MinConns: o.cfg.Database.MinConns,
		Migrate:  true,
	})
}

func (o *rootOptions) newLLM(ctx context.Context) (llm.Client, error) {
	if err := o.cfg.RequireLLM(); err != nil {
		return nil, err
	}
	c := o.cfg.LLM
	return llm.NewClient(ctx, llm.NewConfig(c.Lite, c.Standard, c.Advanced), c.APIKey)
}

func (o *rootOptions) newEmbedder(ctx context.Context) (*embedding.Generator, error) {
	c := o.cfg.Embedding
	backend, err := embedding.New(ctx, embedding.Config{
		Provider:   c.Provider,
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Model:      c.Model,
		Dimensions: c.Dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	return embedding.NewGenerator(backend), nil
}

// newArchive returns the MinIO archive when configured, else a no-op store.
func (o *rootOptions) newArchive(ctx context.Context) (storage.DocumentStore, error) {
	s := o.cfg.Storage
	if !s.Enabled() {
		return storage.NopStore{}, nil
	}
	return storage.NewMinIOStore(ctx, storage.MinIOConfig{
		Endpoint:  s.Endpoint,
		AccessKey: s.AccessKey,
		SecretKey: s.SecretKey,
		Bucket:    s.Bucket,
		UseSSL:    s.UseSSL,
	})
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
