package matching

import (
	"context"
	"errors"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

type fakeStore struct {
	candidates map[string]*types.CandidateProfile
	positions  map[string]*types.PositionProfile

	candidateNeighbors []db.CandidateNeighbor
	positionNeighbors  []db.PositionNeighbor
	linkedCandidates   []string
	linkedPositions    []string

	lastK   int
	lastVec []float32
	err     error
}

func (f *fakeStore) GetCandidate(_ context.Context, id string) (*types.CandidateProfile, error) {
	return f.candidates[id], nil
}

func (f *fakeStore) GetPosition(_ context.Context, id string) (*types.PositionProfile, error) {
	return f.positions[id], nil
}

func (f *fakeStore) NearestCandidates(_ context.Context, _ string, k int) ([]db.CandidateNeighbor, error) {
	f.lastK = k
	return f.candidateNeighbors, f.err
}

func (f *fakeStore) NearestPositions(_ context.Context, _ string, k int) ([]db.PositionNeighbor, error) {
	f.lastK = k
	return f.positionNeighbors, f.err
}

func (f *fakeStore) NearestCandidatesToVector(_ context.Context, vec []float32, k int) ([]db.CandidateNeighbor, error) {
	f.lastK = k
	f.lastVec = vec
	return f.candidateNeighbors, f.err
}

func (f *fakeStore) AssociatedCandidateIDs(context.Context, string) ([]string, error) {
	return f.linkedCandidates, nil
}

func (f *fakeStore) AssociatedPositionIDs(context.Context, string) ([]string, error) {
	return f.linkedPositions, nil
}

type fakeEmbedder struct {
	vec []float32
	err error
}

func (f *fakeEmbedder) Embed(context.Context, string) ([]float32, error) {
	return f.vec, f.err
}

type stubLLM struct {
	text string
	err  error
}

func (s *stubLLM) GenerateContent(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
	return s.text, s.err
}

func (s *stubLLM) GenerateJSON(context.Context, string, llm.ModelTier, ...llm.Option) (string, error) {
	return "", errors.New("not used")
}

func (s *stubLLM) GetModel(tier llm.ModelTier) string { return string(tier) }

func (s *stubLLM) Close() error { return nil }
