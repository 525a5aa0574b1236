package ingestion

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/extraction"
	"github.com/jonathan/hiring-pipeline/internal/heuristics"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/parsing"
	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
	"github.com/jonathan/hiring-pipeline/internal/validation"
)

var tracer = otel.Tracer("github.com/jonathan/hiring-pipeline/internal/ingestion")

// ProfileExtractor runs the generative category extraction. *extraction.Extractor
// implements it.
type ProfileExtractor interface {
	Extract(ctx context.Context, text string) *extraction.Result
}

// CandidateEmbedder embeds a candidate's canonical text. *embedding.Generator
// implements it.
type CandidateEmbedder interface {
	EmbedCandidate(ctx context.Context, c *types.CandidateProfile) ([]float32, string, error)
}

// CandidateStore persists candidates. *db.DB implements it.
type CandidateStore interface {
	CreateCandidate(ctx context.Context, c *types.CandidateProfile) (string, error)
	FindCandidateIDByEmail(ctx context.Context, email string) (string, error)
	AddCVDocument(ctx context.Context, doc *types.CVDocument) (*types.CVDocument, error)
}

// CVResult is the outcome of one CV ingestion.
type CVResult struct {
	CandidateID string                  `json:"candidate_id"`
	Duplicate   bool                    `json:"duplicate"`
	Embedded    bool                    `json:"embedded"`
	Candidate   *types.CandidateProfile `json:"candidate,omitempty"`
	Identity    Identity                `json:"identity"`
	Failures    []extraction.Failure    `json:"-"`
	Report      *validation.Report      `json:"report,omitempty"`
	Document    *types.CVDocument       `json:"document,omitempty"`
}

// CVIngestor runs parse, heuristic, llm, validate, embed and persist for a CV.
type CVIngestor struct {
	extractor ProfileExtractor
	embedder  CandidateEmbedder
	store     CandidateStore
	docs      storage.DocumentStore
	parse     func(path string) (string, error)
}

// NewCVIngestor creates an ingestor. embedder may be nil, in which case
// candidates are stored without an embedding until backfilled.
func NewCVIngestor(extractor ProfileExtractor, embedder CandidateEmbedder, store CandidateStore) *CVIngestor {
	return &CVIngestor{
		extractor: extractor,
		embedder:  embedder,
		store:     store,
		docs:      storage.NopStore{},
		parse:     parsing.ParseDocument,
	}
}

// WithArchive stores original documents in docs after a successful ingestion.
func (i *CVIngestor) WithArchive(docs storage.DocumentStore) *CVIngestor {
	if docs == nil {
		docs = storage.NopStore{}
	}
	i.docs = docs
	return i
}

// Ingest parses the file at path and ingests its text. Unsupported formats and
// unreadable files abort at the parse stage.
func (i *CVIngestor) Ingest(ctx context.Context, path string) (*CVResult, error) {
	ctx = logger.WithContext(ctx, logger.Ctx(ctx).With().Str("source", filepath.Base(path)).Logger())

	raw, err := i.parse(path)
	if err != nil {
		return nil, stageErr(StageParse, err)
	}

	res, err := i.IngestText(ctx, raw)
	if err != nil {
		return nil, err
	}

	res.Document = i.archive(ctx, res.CandidateID, path)
	return res, nil
}

// IngestText ingests already extracted CV text.
func (i *CVIngestor) IngestText(ctx context.Context, raw string) (res *CVResult, err error) {
	ctx, span := tracer.Start(ctx, "ingestion.CV")
	defer func() { endSpan(span, err) }()
	log := logger.Ctx(ctx)

	text := CleanText(raw)
	if text == "" {
		return nil, stageErr(StageParse, ErrEmptyDocument)
	}

	h := heuristics.Extract(text)
	log.Debug().
		Str("stage", string(StageHeuristic)).
		Bool("email", h.Email != nil).
		Bool("phone", h.Phone != nil).
		Bool("name", h.Name != nil).
		Msg("heuristic extraction done")

	extracted := i.extractor.Extract(ctx, text)
	for _, f := range extracted.Failures {
		log.Warn().Str("stage", string(StageLLM)).Str("category", string(f.Category)).Err(f.Err).Msg("category degraded")
	}

	report := validation.NewReport()
	info := validation.PersonalInfo(extracted.PersonalInfo, report)
	identity := mergeIdentity(h, info, extracted.PersonalInfo, report)
	if !identity.FirstName.Present() || !identity.LastName.Present() {
		return nil, stageErr(StageValidate, ErrMissingName)
	}

	candidate := buildProfile(identity, extracted, report)
	for _, d := range report.Rejections() {
		log.Warn().Str("stage", string(StageValidate)).Str("field", d.Field).Str("value", d.Value).Str("reason", d.Reason).Msg("field rejected")
	}
	if candidate.Email == nil {
		log.Warn().Str("stage", string(StageValidate)).Msg("no valid email found, creating candidate without one")
	}

	res = &CVResult{
		Candidate: candidate,
		Identity:  identity,
		Failures:  extracted.Failures,
		Report:    report,
	}

	if i.embedder != nil {
		vec, canonical, embedErr := i.embedder.EmbedCandidate(ctx, candidate)
		if embedErr != nil {
			log.Warn().Str("stage", string(StageEmbed)).Err(embedErr).Msg("embedding failed, storing candidate without embedding")
		} else {
			candidate.Embedding = vec
			candidate.EmbeddingText = canonical
			res.Embedded = true
		}
	}

	id, err := i.store.CreateCandidate(ctx, candidate)
	if err != nil {
		var dup *db.DuplicateEmailError
		if !errors.As(err, &dup) {
			return nil, stageErr(StagePersist, err)
		}
		existing := dup.ExistingID
		if existing == "" {
			existing, err = i.store.FindCandidateIDByEmail(ctx, dup.Email)
			if err != nil {
				return nil, stageErr(StagePersist, fmt.Errorf("failed to resolve duplicate email: %w", err))
			}
			if existing == "" {
				return nil, stageErr(StagePersist, dup)
			}
		}
		log.Info().Str("candidate_id", existing).Str("email", dup.Email).Msg("candidate already exists, resolved to existing record")
		res.CandidateID = existing
		res.Duplicate = true
		res.Embedded = false
		candidate.ID = existing
		span.SetAttributes(attribute.Bool("ingestion.duplicate", true))
		return res, nil
	}

	candidate.ID = id
	res.CandidateID = id
	span.SetAttributes(attribute.String("candidate_id", id))
	log.Info().
		Str("candidate_id", id).
		Int("skills", len(candidate.Skills)).
		Int("experience", len(candidate.Experience)).
		Int("degraded_categories", len(extracted.Failures)).
		Bool("embedded", res.Embedded).
		Msg("candidate ingested")
	return res, nil
}

// archive uploads the original document. Failures are logged and never fail
// the ingestion.
func (i *CVIngestor) archive(ctx context.Context, candidateID, path string) *types.CVDocument {
	log := logger.Ctx(ctx)
	obj, err := i.docs.Put(ctx, candidateID, path)
	if err != nil {
		log.Warn().Str("candidate_id", candidateID).Err(err).Msg("failed to archive CV document")
		return nil
	}
	if obj == nil {
		return nil
	}

	doc, err := i.store.AddCVDocument(ctx, &types.CVDocument{
		CandidateID: candidateID,
		FilePath:    obj.Location(),
		FileName:    obj.FileName,
		FileType:    strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
	})
	if err != nil {
		log.Warn().Str("candidate_id", candidateID).Err(err).Msg("failed to record CV document")
		return nil
	}
	return doc
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
