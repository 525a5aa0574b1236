package ingestion

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/extraction"
	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/storage"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// MockLLMClient is a test double for llm.Client.
type MockLLMClient struct {
	GenerateJSONFunc func(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error)
}

func (m *MockLLMClient) GenerateContent(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
	return "", errors.New("GenerateContent not configured")
}

func (m *MockLLMClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier, opts ...llm.Option) (string, error) {
	if m.GenerateJSONFunc != nil {
		return m.GenerateJSONFunc(ctx, prompt, tier, opts...)
	}
	return "", errors.New("GenerateJSON not configured")
}

func (m *MockLLMClient) GetModel(tier llm.ModelTier) string { return "mock-" + string(tier) }

func (m *MockLLMClient) Close() error { return nil }

type fakeExtractor struct {
	result *extraction.Result
	texts  []string
}

func (f *fakeExtractor) Extract(_ context.Context, text string) *extraction.Result {
	f.texts = append(f.texts, text)
	if f.result == nil {
		return &extraction.Result{}
	}
	return f.result
}

type fakeEmbedder struct {
	err        error
	candidates int
	positions  int
}

func (f *fakeEmbedder) EmbedCandidate(_ context.Context, c *types.CandidateProfile) ([]float32, string, error) {
	f.candidates++
	if f.err != nil {
		return nil, "", f.err
	}
	return []float32{1, 0, 0}, "Summary: " + c.Summary, nil
}

func (f *fakeEmbedder) EmbedPosition(_ context.Context, p *types.PositionProfile) ([]float32, string, error) {
	f.positions++
	if f.err != nil {
		return nil, "", f.err
	}
	return []float32{0, 1, 0}, "Position: " + p.Title, nil
}

// fakeStore is an in-memory CandidateStore, PositionStore and BackfillStore.
type fakeStore struct {
	mu         sync.Mutex
	candidates map[string]*types.CandidateProfile
	positions  map[string]*types.PositionProfile
	byEmail    map[string]string
	documents  []types.CVDocument
	order      []string

	hideExistingID bool
	createErr      error
	updateErr      map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		candidates: map[string]*types.CandidateProfile{},
		positions:  map[string]*types.PositionProfile{},
		byEmail:    map[string]string{},
		updateErr:  map[string]error{},
	}
}

func (s *fakeStore) CreateCandidate(_ context.Context, c *types.CandidateProfile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	if c.Email != nil {
		if existing, ok := s.byEmail[*c.Email]; ok {
			dup := &db.DuplicateEmailError{Email: *c.Email, ExistingID: existing}
			if s.hideExistingID {
				dup.ExistingID = ""
			}
			return "", dup
		}
	}
	id := db.FormatID(db.CandidatePrefix, int64(len(s.candidates)+1))
	stored := *c
	stored.ID = id
	s.candidates[id] = &stored
	if c.Email != nil {
		s.byEmail[*c.Email] = id
	}
	return id, nil
}

func (s *fakeStore) FindCandidateIDByEmail(_ context.Context, email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byEmail[email], nil
}

func (s *fakeStore) AddCVDocument(_ context.Context, doc *types.CVDocument) (*types.CVDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := *doc
	out.ID = int64(len(s.documents) + 1)
	out.Version = 1
	out.IsCurrent = true
	s.documents = append(s.documents, out)
	return &out, nil
}

func (s *fakeStore) CreatePosition(_ context.Context, p *types.PositionProfile) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return "", s.createErr
	}
	id := db.FormatID(db.PositionPrefix, int64(len(s.positions)+1))
	stored := *p
	stored.ID = id
	s.positions[id] = &stored
	return id, nil
}

func (s *fakeStore) UpdatePositionEmbedding(_ context.Context, id string, vec []float32, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, id)
	if err := s.updateErr[id]; err != nil {
		return err
	}
	s.positions[id].Embedding = vec
	s.positions[id].EmbeddingText = text
	return nil
}

func (s *fakeStore) UpdateCandidateEmbedding(_ context.Context, id string, vec []float32, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, id)
	if err := s.updateErr[id]; err != nil {
		return err
	}
	s.candidates[id].Embedding = vec
	s.candidates[id].EmbeddingText = text
	return nil
}

func (s *fakeStore) ListCandidatesWithoutEmbedding(context.Context) ([]string, error) {
	return s.missing(func(id string) bool { return !s.candidates[id].HasEmbedding() }, s.candidateIDs()), nil
}

func (s *fakeStore) ListPositionsWithoutEmbedding(context.Context) ([]string, error) {
	return s.missing(func(id string) bool { return !s.positions[id].HasEmbedding() }, s.positionIDs()), nil
}

func (s *fakeStore) GetCandidate(_ context.Context, id string) (*types.CandidateProfile, error) {
	return s.candidates[id], nil
}

func (s *fakeStore) GetPosition(_ context.Context, id string) (*types.PositionProfile, error) {
	return s.positions[id], nil
}

func (s *fakeStore) candidateIDs() []string {
	ids := make([]string, 0, len(s.candidates))
	for i := 1; i <= len(s.candidates); i++ {
		ids = append(ids, db.FormatID(db.CandidatePrefix, int64(i)))
	}
	return ids
}

func (s *fakeStore) positionIDs() []string {
	ids := make([]string, 0, len(s.positions))
	for i := 1; i <= len(s.positions); i++ {
		ids = append(ids, db.FormatID(db.PositionPrefix, int64(i)))
	}
	return ids
}

func (s *fakeStore) missing(keep func(string) bool, ids []string) []string {
	var out []string
	for _, id := range ids {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

type fakeShortlister struct {
	results []types.MatchResult
	err     error
	calls   []string
}

func (f *fakeShortlister) CandidatesForPosition(_ context.Context, positionID string, _ int, _ float64) ([]types.MatchResult, error) {
	f.calls = append(f.calls, positionID)
	return f.results, f.err
}

type fakeDocs struct {
	err  error
	puts []string
}

func (f *fakeDocs) Put(_ context.Context, candidateID, path string) (*storage.Object, error) {
	f.puts = append(f.puts, candidateID)
	if f.err != nil {
		return nil, f.err
	}
	name := path[strings.LastIndex(path, "/")+1:]
	return &storage.Object{Bucket: "cv-documents", Key: "candidates/" + candidateID + "/" + name, FileName: name}, nil
}
