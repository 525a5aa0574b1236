// Package matching ranks candidates against positions by embedding similarity,
// then filters the ranked list with an experience heuristic.
package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

var (
	// ErrNotFound is returned when the source entity does not exist.
	ErrNotFound = errors.New("entity not found")
	// ErrNoEmbedding is returned when the source entity has not been embedded yet.
	ErrNoEmbedding = errors.New("entity has no embedding; run backfill first")
)

var tracer = otel.Tracer("github.com/jonathan/hiring-pipeline/internal/matching")

// Store is the persistence surface used by the matcher. *db.DB implements it.
type Store interface {
	GetCandidate(ctx context.Context, id string) (*types.CandidateProfile, error)
	GetPosition(ctx context.Context, id string) (*types.PositionProfile, error)
	NearestCandidates(ctx context.Context, positionID string, k int) ([]db.CandidateNeighbor, error)
	NearestPositions(ctx context.Context, candidateID string, k int) ([]db.PositionNeighbor, error)
	NearestCandidatesToVector(ctx context.Context, vec []float32, k int) ([]db.CandidateNeighbor, error)
	AssociatedCandidateIDs(ctx context.Context, positionID string) ([]string, error)
	AssociatedPositionIDs(ctx context.Context, candidateID string) ([]string, error)
}

// QueryEmbedder embeds free-text search queries. *embedding.Generator implements it.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Config holds matcher defaults.
type Config struct {
	Limit            int
	MinSimilarity    float64
	OverFetchFactor  int
	FlexibilityYears int
}

// DefaultConfig returns the standard matching thresholds.
func DefaultConfig() Config {
	return Config{Limit: 3, MinSimilarity: 0.7, OverFetchFactor: 3, FlexibilityYears: 2}
}

// Search defaults for free-text candidate search.
const (
	DefaultSearchLimit         = 10
	DefaultSearchMinSimilarity = 0.6
)

// Matcher finds similar candidates and positions.
type Matcher struct {
	store    Store
	embedder QueryEmbedder
	cfg      Config
}

// NewMatcher creates a matcher. embedder may be nil when free-text search is unused.
func NewMatcher(store Store, embedder QueryEmbedder, cfg Config) *Matcher {
	def := DefaultConfig()
	if cfg.Limit <= 0 {
		cfg.Limit = def.Limit
	}
	if cfg.OverFetchFactor <= 0 {
		cfg.OverFetchFactor = def.OverFetchFactor
	}
	if cfg.FlexibilityYears < 0 {
		cfg.FlexibilityYears = def.FlexibilityYears
	}
	return &Matcher{store: store, embedder: embedder, cfg: cfg}
}

// Config returns the effective configuration.
func (m *Matcher) Config() Config {
	return m.cfg
}

func (m *Matcher) limits(limit int, minSimilarity float64) (int, float64) {
	if limit <= 0 {
		limit = m.cfg.Limit
	}
	if minSimilarity < 0 {
		minSimilarity = m.cfg.MinSimilarity
	}
	return limit, minSimilarity
}

// CandidatesForPosition returns up to limit candidates for a position. A negative
// minSimilarity or non-positive limit selects the configured default.
func (m *Matcher) CandidatesForPosition(ctx context.Context, positionID string, limit int, minSimilarity float64) (results []types.MatchResult, err error) {
	ctx, span := tracer.Start(ctx, "matching.CandidatesForPosition",
		trace.WithAttributes(attribute.String("position_id", positionID)))
	defer func() { endSpan(span, err) }()

	limit, minSimilarity = m.limits(limit, minSimilarity)

	position, err := m.store.GetPosition(ctx, positionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load position: %w", err)
	}
	if position == nil {
		return nil, fmt.Errorf("position %s: %w", positionID, ErrNotFound)
	}
	if !position.HasEmbedding() {
		return nil, fmt.Errorf("position %s: %w", positionID, ErrNoEmbedding)
	}

	neighbors, err := m.store.NearestCandidates(ctx, positionID, limit*m.cfg.OverFetchFactor)
	if err != nil {
		return nil, err
	}

	linked, err := m.store.AssociatedCandidateIDs(ctx, positionID)
	if err != nil {
		return nil, err
	}
	skip := toSet(linked)

	results = []types.MatchResult{}
	for _, n := range neighbors {
		score := SimilarityFromDistance(n.Distance)
		if score < minSimilarity {
			continue
		}
		if skip[n.ID] {
			continue
		}
		years := CandidateYears(n.Summary, n.ExperienceCount)
		if !ExperienceCompatible(years, position.Experience, m.cfg.FlexibilityYears) {
			continue
		}
		results = append(results, candidateResult(n, score, years))
		if len(results) >= limit {
			break
		}
	}

	logger.Ctx(ctx).Debug().
		Str("position_id", positionID).
		Int("neighbors", len(neighbors)).
		Int("matches", len(results)).
		Msg("matched candidates")
	return results, nil
}

// PositionsForCandidate returns up to limit positions for a candidate.
func (m *Matcher) PositionsForCandidate(ctx context.Context, candidateID string, limit int, minSimilarity float64) (results []types.MatchResult, err error) {
	ctx, span := tracer.Start(ctx, "matching.PositionsForCandidate",
		trace.WithAttributes(attribute.String("candidate_id", candidateID)))
	defer func() { endSpan(span, err) }()

	limit, minSimilarity = m.limits(limit, minSimilarity)

	candidate, err := m.store.GetCandidate(ctx, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate: %w", err)
	}
	if candidate == nil {
		return nil, fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
	}
	if !candidate.HasEmbedding() {
		return nil, fmt.Errorf("candidate %s: %w", candidateID, ErrNoEmbedding)
	}
	years := CandidateYears(candidate.Summary, len(candidate.Experience))

	neighbors, err := m.store.NearestPositions(ctx, candidateID, limit*m.cfg.OverFetchFactor)
	if err != nil {
		return nil, err
	}

	linked, err := m.store.AssociatedPositionIDs(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	skip := toSet(linked)

	results = []types.MatchResult{}
	for _, n := range neighbors {
		score := SimilarityFromDistance(n.Distance)
		if score < minSimilarity || skip[n.ID] {
			continue
		}
		if !ExperienceCompatible(years, n.Experience, m.cfg.FlexibilityYears) {
			continue
		}
		results = append(results, types.MatchResult{
			ID:              n.ID,
			Name:            n.Title,
			Title:           n.Title,
			Company:         n.Company,
			Summary:         n.Description,
			Experience:      n.Experience,
			SimilarityScore: roundScore(score),
			YearsExperience: years,
		})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

// SearchCandidates ranks candidates against free-text query. Only the similarity
// threshold applies; there is no experience gate.
func (m *Matcher) SearchCandidates(ctx context.Context, query string, limit int, minSimilarity float64) (results []types.MatchResult, err error) {
	ctx, span := tracer.Start(ctx, "matching.SearchCandidates")
	defer func() { endSpan(span, err) }()

	if m.embedder == nil {
		return nil, errors.New("search requires an embedder")
	}
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("search query is empty")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if minSimilarity < 0 {
		minSimilarity = DefaultSearchMinSimilarity
	}

	vec, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	neighbors, err := m.store.NearestCandidatesToVector(ctx, vec, limit)
	if err != nil {
		return nil, err
	}

	results = []types.MatchResult{}
	for _, n := range neighbors {
		score := SimilarityFromDistance(n.Distance)
		if score < minSimilarity {
			continue
		}
		results = append(results, candidateResult(n, score, CandidateYears(n.Summary, n.ExperienceCount)))
	}
	return results, nil
}

func candidateResult(n db.CandidateNeighbor, score float64, years int) types.MatchResult {
	r := types.MatchResult{
		ID:              n.ID,
		Name:            strings.TrimSpace(n.FirstName + " " + n.LastName),
		Title:           n.Title,
		Company:         n.Company,
		Summary:         n.Summary,
		SimilarityScore: roundScore(score),
		YearsExperience: years,
	}
	if n.Email != nil {
		r.Email = *n.Email
	}
	return r
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
