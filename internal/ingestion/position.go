package ingestion

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/jonathan/hiring-pipeline/internal/fetch"
	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/parsing"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// PositionEmbedder embeds a position's canonical text. *embedding.Generator
// implements it.
type PositionEmbedder interface {
	EmbedPosition(ctx context.Context, p *types.PositionProfile) ([]float32, string, error)
}

// PositionStore persists positions. *db.DB implements it.
type PositionStore interface {
	CreatePosition(ctx context.Context, p *types.PositionProfile) (string, error)
	UpdatePositionEmbedding(ctx context.Context, id string, vec []float32, text string) error
}

// Shortlister ranks candidates for a position. *matching.Matcher implements it.
type Shortlister interface {
	CandidatesForPosition(ctx context.Context, positionID string, limit int, minSimilarity float64) ([]types.MatchResult, error)
}

// PositionInput is a job posting as submitted. Fields other than Title and
// Description override what the parser extracts.
type PositionInput struct {
	Title        string `json:"title"`
	Description  string `json:"description" validate:"required"`
	Company      string `json:"company,omitempty"`
	Location     string `json:"location,omitempty"`
	Compensation string `json:"compensation,omitempty"`
	Urgency      string `json:"urgency,omitempty"`
	ContactName  string `json:"contact_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

// PositionResult is the outcome of one position ingestion. Shortlist is empty,
// never nil, when matching fails or finds nothing.
type PositionResult struct {
	PositionID string                 `json:"position_id"`
	Position   *types.PositionProfile `json:"position"`
	Embedded   bool                   `json:"embedded"`
	Shortlist  []types.MatchResult    `json:"shortlist"`
}

// PositionIngestor runs parse, persist, embed and shortlist for a job posting.
type PositionIngestor struct {
	client   llm.Client
	store    PositionStore
	embedder PositionEmbedder
	matcher  Shortlister
	fetch    func(ctx context.Context, url string, opts fetch.PostingOptions) (*fetch.Posting, error)
}

// NewPositionIngestor creates an ingestor. embedder and matcher may be nil.
func NewPositionIngestor(client llm.Client, store PositionStore, embedder PositionEmbedder, matcher Shortlister) *PositionIngestor {
	return &PositionIngestor{
		client:   client,
		store:    store,
		embedder: embedder,
		matcher:  matcher,
		fetch:    fetch.JobPosting,
	}
}

// Ingest parses the posting with one generative call and persists it. A parse
// response missing a required key aborts the run; embedding and shortlisting
// failures are logged.
func (p *PositionIngestor) Ingest(ctx context.Context, in PositionInput) (res *PositionResult, err error) {
	ctx, span := tracer.Start(ctx, "ingestion.Position")
	defer func() { endSpan(span, err) }()
	log := logger.Ctx(ctx)

	draft, err := parsing.ParsePosition(ctx, p.client, in.Title, in.Description)
	if err != nil {
		return nil, stageErr(StageParse, err)
	}

	position := buildPosition(in, draft)

	id, err := p.store.CreatePosition(ctx, position)
	if err != nil {
		return nil, stageErr(StagePersist, err)
	}
	position.ID = id
	span.SetAttributes(attribute.String("position_id", id))

	res = &PositionResult{PositionID: id, Position: position, Shortlist: []types.MatchResult{}}

	if p.embedder != nil {
		vec, canonical, embedErr := p.embedder.EmbedPosition(ctx, position)
		if embedErr == nil {
			embedErr = p.store.UpdatePositionEmbedding(ctx, id, vec, canonical)
		}
		if embedErr != nil {
			log.Warn().Str("stage", string(StageEmbed)).Str("position_id", id).Err(embedErr).Msg("embedding failed, position stored without embedding")
		} else {
			position.Embedding = vec
			position.EmbeddingText = canonical
			res.Embedded = true
		}
	}

	if p.matcher != nil {
		shortlist, matchErr := p.matcher.CandidatesForPosition(ctx, id, 0, -1)
		if matchErr != nil {
			log.Warn().Str("stage", string(StageShortlist)).Str("position_id", id).Err(matchErr).Msg("shortlisting failed")
		} else if shortlist != nil {
			res.Shortlist = shortlist
		}
	}

	log.Info().
		Str("position_id", id).
		Str("title", position.Title).
		Int("requirements", len(position.Requirements)).
		Int("shortlist", len(res.Shortlist)).
		Msg("position ingested")
	return res, nil
}

// IngestURL fetches a job posting page and ingests its text. in.Description is
// replaced by the page text; an empty in.Title takes the page title.
func (p *PositionIngestor) IngestURL(ctx context.Context, url string, in PositionInput, opts fetch.PostingOptions) (*PositionResult, error) {
	posting, err := p.fetch(ctx, url, opts)
	if err != nil {
		return nil, stageErr(StageParse, err)
	}
	in.Description = CleanText(posting.Text)
	if in.Title == "" {
		in.Title = posting.Title
	}
	return p.Ingest(ctx, in)
}

func buildPosition(in PositionInput, d *parsing.PositionDraft) *types.PositionProfile {
	return &types.PositionProfile{
		Title:            firstNonEmpty(d.Title, in.Title),
		Company:          strings.TrimSpace(in.Company),
		Location:         firstNonEmpty(in.Location, d.Location),
		WorkArrangement:  d.WorkArrangement,
		Experience:       d.Experience,
		Description:      strings.TrimSpace(in.Description),
		Compensation:     strings.TrimSpace(in.Compensation),
		Urgency:          firstNonEmpty(in.Urgency, d.Urgency),
		ContactName:      strings.TrimSpace(in.ContactName),
		ContactEmail:     strings.TrimSpace(in.ContactEmail),
		Requirements:     SplitRequirements(d.Requirements, d.NiceToHave),
		Responsibilities: d.Responsibilities,
		Skills:           d.Skills,
	}
}

// SplitRequirements marks requirements as required or nice to have. When the
// parser returned an explicit nice-to-have list it is used as is. Otherwise the
// first ceil(n/2) requirements are required and the rest are not.
func SplitRequirements(requirements, niceToHave []string) []types.Requirement {
	out := make([]types.Requirement, 0, len(requirements)+len(niceToHave))
	if len(niceToHave) > 0 {
		for _, r := range requirements {
			out = append(out, types.Requirement{Text: r, IsRequired: true})
		}
		for _, r := range niceToHave {
			out = append(out, types.Requirement{Text: r})
		}
		return out
	}

	required := (len(requirements) + 1) / 2
	for i, r := range requirements {
		out = append(out, types.Requirement{Text: r, IsRequired: i < required})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
