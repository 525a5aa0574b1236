package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/hiring-pipeline/internal/fetch"
	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/parsing"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

const parsedPosition = `{
	"title": "Senior Backend Engineer",
	"summary": "Own the matching service.",
	"location": "Berlin",
	"work_arrangement": "Hybrid",
	"experience": "5+ years",
	"urgency": "High",
	"requirements": ["Go", "PostgreSQL", "Kubernetes"],
	"responsibilities": ["Design APIs"],
	"skills": ["golang", "postgres"]
}`

func positionClient(body string) *MockLLMClient {
	return &MockLLMClient{GenerateJSONFunc: func(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
		return body, nil
	}}
}

func TestPositionIngestor_Ingest(t *testing.T) {
	store := newFakeStore()
	matcher := &fakeShortlister{results: []types.MatchResult{{ID: "candidate_007", SimilarityScore: 0.91}}}
	ingestor := NewPositionIngestor(positionClient(parsedPosition), store, &fakeEmbedder{}, matcher)

	res, err := ingestor.Ingest(context.Background(), PositionInput{
		Title:       "Backend Engineer",
		Description: "We need a Go engineer.",
		Company:     "Acme",
		Location:    "Remote (EU)",
	})
	require.NoError(t, err)

	assert.Equal(t, "position_001", res.PositionID)
	assert.True(t, res.Embedded)
	assert.Equal(t, []string{"position_001"}, matcher.calls)
	require.Len(t, res.Shortlist, 1)
	assert.Equal(t, "candidate_007", res.Shortlist[0].ID)

	p := store.positions["position_001"]
	require.NotNil(t, p)
	assert.Equal(t, "Senior Backend Engineer", p.Title)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Remote (EU)", p.Location)
	assert.Equal(t, "5+ years", p.Experience)
	assert.Equal(t, "High", p.Urgency)
	assert.Equal(t, "We need a Go engineer.", p.Description)
	assert.Equal(t, []string{"Go", "PostgreSQL"}, p.Skills)
	assert.Equal(t, []types.Requirement{
		{Text: "Go", IsRequired: true},
		{Text: "PostgreSQL", IsRequired: true},
		{Text: "Kubernetes", IsRequired: false},
	}, p.Requirements)
	assert.Equal(t, []float32{0, 1, 0}, p.Embedding)
}

func TestPositionIngestor_ArrayResponseFails(t *testing.T) {
	store := newFakeStore()
	ingestor := NewPositionIngestor(positionClient(`[{"title": "Engineer"}]`), store, &fakeEmbedder{}, nil)

	_, err := ingestor.Ingest(context.Background(), PositionInput{Title: "Engineer", Description: "Build things."})

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageParse, stageErr.Stage)
	var missing *parsing.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"title", "summary", "requirements", "responsibilities"}, missing.Missing)
	assert.Empty(t, store.positions)
}

func TestPositionIngestor_MatcherFailureIsSwallowed(t *testing.T) {
	store := newFakeStore()
	matcher := &fakeShortlister{err: errors.New("vector index unavailable")}
	ingestor := NewPositionIngestor(positionClient(parsedPosition), store, &fakeEmbedder{}, matcher)

	res, err := ingestor.Ingest(context.Background(), PositionInput{Description: "We need a Go engineer."})
	require.NoError(t, err)
	assert.NotNil(t, res.Shortlist)
	assert.Empty(t, res.Shortlist)
}

func TestPositionIngestor_EmbeddingFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	store.updateErr["position_001"] = errors.New("dimension mismatch")
	ingestor := NewPositionIngestor(positionClient(parsedPosition), store, &fakeEmbedder{}, nil)

	res, err := ingestor.Ingest(context.Background(), PositionInput{Description: "We need a Go engineer."})
	require.NoError(t, err)
	assert.False(t, res.Embedded)
	assert.Nil(t, store.positions["position_001"].Embedding)
}

func TestPositionIngestor_IngestURL(t *testing.T) {
	store := newFakeStore()
	var prompt string
	client := &MockLLMClient{GenerateJSONFunc: func(_ context.Context, p string, _ llm.ModelTier, _ ...llm.Option) (string, error) {
		prompt = p
		return parsedPosition, nil
	}}
	ingestor := NewPositionIngestor(client, store, nil, nil)
	ingestor.fetch = func(_ context.Context, url string, _ fetch.PostingOptions) (*fetch.Posting, error) {
		return &fetch.Posting{URL: url, Title: "Backend Engineer at Acme", Text: "Requirements\n- Go   and SQL"}, nil
	}

	res, err := ingestor.IngestURL(context.Background(), "https://jobs.example.com/1", PositionInput{Company: "Acme"}, fetch.PostingOptions{})
	require.NoError(t, err)
	assert.Equal(t, "position_001", res.PositionID)
	assert.Contains(t, prompt, "Title: Backend Engineer at Acme")
	assert.Contains(t, prompt, "- Go and SQL")
}

func TestPositionIngestor_IngestURLFetchError(t *testing.T) {
	ingestor := NewPositionIngestor(positionClient(parsedPosition), newFakeStore(), nil, nil)
	ingestor.fetch = func(_ context.Context, url string, _ fetch.PostingOptions) (*fetch.Posting, error) {
		return nil, &fetch.Error{URL: url, Message: "HTTP status 404"}
	}

	_, err := ingestor.IngestURL(context.Background(), "https://jobs.example.com/404", PositionInput{}, fetch.PostingOptions{})
	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, StageParse, stageErr.Stage)
}

func TestSplitRequirements(t *testing.T) {
	tests := []struct {
		name     string
		reqs     []string
		nice     []string
		required []bool
	}{
		{"empty", nil, nil, []bool{}},
		{"one", []string{"a"}, nil, []bool{true}},
		{"even", []string{"a", "b", "c", "d"}, nil, []bool{true, true, false, false}},
		{"odd rounds up", []string{"a", "b", "c"}, nil, []bool{true, true, false}},
		{"explicit nice to have", []string{"a", "b", "c"}, []string{"d"}, []bool{true, true, true, false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitRequirements(tt.reqs, tt.nice)
			flags := make([]bool, len(got))
			for i, r := range got {
				flags[i] = r.IsRequired
			}
			assert.Equal(t, tt.required, flags)
		})
	}
}
