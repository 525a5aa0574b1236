package server

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/parsing"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// handleIngestCandidate accepts a multipart upload in the "file" field. A new
// candidate answers 201, a known email 200 with duplicate set.
func (s *Server) handleIngestCandidate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "file", Message: fmt.Sprintf("invalid upload: %v", err)})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "file", Message: "a CV file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	name := filepath.Base(header.Filename)
	if !parsing.IsSupported(name) {
		s.writeError(w, r, &parsing.UnsupportedFormatError{Path: name, Extension: strings.ToLower(filepath.Ext(name))})
		return
	}

	dir, err := os.MkdirTemp("", "cv-upload-*")
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to create upload dir: %w", err))
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	path := filepath.Join(dir, name)
	if err := saveUpload(file, path); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.svc.Candidates.Ingest(r.Context(), path)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	logger.Ctx(r.Context()).Info().
		Str("candidate_id", res.CandidateID).
		Bool("duplicate", res.Duplicate).
		Str("file", name).
		Msg("CV uploaded")
	s.jsonResponse(w, r, status, res)
}

func saveUpload(src io.Reader, path string) error {
	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to store upload: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to store upload: %w", err)
	}
	return dst.Close()
}

func (s *Server) handleGetCandidate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := s.svc.Store.GetCandidate(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if c == nil {
		s.writeError(w, r, &ErrNotFound{Kind: "candidate", ID: id})
		return
	}
	s.jsonResponse(w, r, http.StatusOK, c)
}

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Store.ListCandidates(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"candidates": nonNil(list), "count": len(list)})
}

// handleCandidateMatches ranks positions for a candidate. With explain=true
// every match carries a generated explanation.
func (s *Server) handleCandidateMatches(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit, minSim, err := matchParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	matches, err := s.svc.Matcher.PositionsForCandidate(r.Context(), id, limit, minSim)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if boolParam(r, "explain") && len(matches) > 0 {
		s.explain(r, id, matches)
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"candidate_id": id, "matches": nonNil(matches)})
}

func (s *Server) explain(r *http.Request, candidateID string, matches []types.MatchResult) {
	ctx := r.Context()
	candidate, err := s.svc.Store.GetCandidate(ctx, candidateID)
	if err != nil || candidate == nil {
		logger.Ctx(ctx).Warn().Err(err).Str("candidate_id", candidateID).Msg("cannot explain matches")
		return
	}
	positions := make(map[string]*types.PositionProfile, len(matches))
	for _, m := range matches {
		p, err := s.svc.Store.GetPosition(ctx, m.ID)
		if err != nil || p == nil {
			continue
		}
		positions[m.ID] = p
	}
	s.svc.Explainer.ExplainAll(ctx, candidate, matches, positions)
}

func (s *Server) handleSearchCandidates(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		s.writeError(w, r, &ErrValidation{Field: "q", Message: "search query is required"})
		return
	}
	limit, minSim, err := matchParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	matches, err := s.svc.Matcher.SearchCandidates(r.Context(), query, limit, minSim)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"query": query, "matches": nonNil(matches)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

