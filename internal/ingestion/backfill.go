package ingestion

import (
	"context"
	"fmt"

	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// BackfillStore lists and updates entities without embeddings. *db.DB implements it.
type BackfillStore interface {
	ListCandidatesWithoutEmbedding(ctx context.Context) ([]string, error)
	ListPositionsWithoutEmbedding(ctx context.Context) ([]string, error)
	GetCandidate(ctx context.Context, id string) (*types.CandidateProfile, error)
	GetPosition(ctx context.Context, id string) (*types.PositionProfile, error)
	UpdateCandidateEmbedding(ctx context.Context, id string, vec []float32, text string) error
	UpdatePositionEmbedding(ctx context.Context, id string, vec []float32, text string) error
}

// Embedder embeds candidates and positions. *embedding.Generator implements it.
type Embedder interface {
	CandidateEmbedder
	PositionEmbedder
}

// BackfillCounts tallies one entity kind.
type BackfillCounts struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// BackfillSummary reports a backfill run.
type BackfillSummary struct {
	Candidates BackfillCounts `json:"candidates"`
	Positions  BackfillCounts `json:"positions"`
}

// Backfiller embeds every candidate and position still missing a vector.
type Backfiller struct {
	store    BackfillStore
	embedder Embedder
}

// NewBackfiller creates a Backfiller.
func NewBackfiller(store BackfillStore, embedder Embedder) *Backfiller {
	return &Backfiller{store: store, embedder: embedder}
}

// Run sweeps candidates, then positions, one entity at a time. Each embedding is
// written in its own statement, so a failure only affects that entity. The
// returned error covers listing failures and context cancellation.
func (b *Backfiller) Run(ctx context.Context) (BackfillSummary, error) {
	var summary BackfillSummary
	log := logger.Ctx(ctx)

	ids, err := b.store.ListCandidatesWithoutEmbedding(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list candidates: %w", err)
	}
	summary.Candidates.Total = len(ids)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := b.candidate(ctx, id); err != nil {
			summary.Candidates.Failed++
			log.Warn().Str("candidate_id", id).Err(err).Msg("candidate backfill failed")
			continue
		}
		summary.Candidates.Updated++
	}

	ids, err = b.store.ListPositionsWithoutEmbedding(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to list positions: %w", err)
	}
	summary.Positions.Total = len(ids)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if err := b.position(ctx, id); err != nil {
			summary.Positions.Failed++
			log.Warn().Str("position_id", id).Err(err).Msg("position backfill failed")
			continue
		}
		summary.Positions.Updated++
	}

	log.Info().
		Int("candidates_updated", summary.Candidates.Updated).
		Int("candidates_failed", summary.Candidates.Failed).
		Int("positions_updated", summary.Positions.Updated).
		Int("positions_failed", summary.Positions.Failed).
		Msg("backfill complete")
	return summary, nil
}

func (b *Backfiller) candidate(ctx context.Context, id string) error {
	c, err := b.store.GetCandidate(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("candidate %s disappeared", id)
	}
	vec, text, err := b.embedder.EmbedCandidate(ctx, c)
	if err != nil {
		return err
	}
	return b.store.UpdateCandidateEmbedding(ctx, id, vec, text)
}

func (b *Backfiller) position(ctx context.Context, id string) error {
	p, err := b.store.GetPosition(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("position %s disappeared", id)
	}
	vec, text, err := b.embedder.EmbedPosition(ctx, p)
	if err != nil {
		return err
	}
	return b.store.UpdatePositionEmbedding(ctx, id, vec, text)
}
