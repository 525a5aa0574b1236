package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/fetch"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

type positionRequest struct {
	URL          string `json:"url,omitempty" validate:"omitempty,url"`
	Title        string `json:"title" validate:"max=255"`
	Description  string `json:"description" validate:"required_without=URL"`
	Company      string `json:"company,omitempty" validate:"max=255"`
	Location     string `json:"location,omitempty" validate:"max=255"`
	Compensation string `json:"compensation,omitempty" validate:"max=255"`
	Urgency      string `json:"urgency,omitempty" validate:"omitempty,oneof=Low Medium High Critical"`
	ContactName  string `json:"contact_name,omitempty" validate:"max=255"`
	ContactEmail string `json:"contact_email,omitempty" validate:"omitempty,email"`
}

func (p positionRequest) input() ingestion.PositionInput {
	return ingestion.PositionInput{
		Title:        p.Title,
		Description:  p.Description,
		Company:      p.Company,
		Location:     p.Location,
		Compensation: p.Compensation,
		Urgency:      p.Urgency,
		ContactName:  p.ContactName,
		ContactEmail: p.ContactEmail,
	}
}

// handleIngestPosition parses, stores and shortlists a posting given either as
// text or as a URL to fetch.
func (s *Server) handleIngestPosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		res *ingestion.PositionResult
		err error
	)
	if req.URL != "" {
		res, err = s.svc.Positions.IngestURL(r.Context(), req.URL, req.input(), fetch.PostingOptions{UseBrowser: s.cfg.UseBrowser})
	} else {
		res, err = s.svc.Positions.Ingest(r.Context(), req.input())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusCreated, res)
}

func (s *Server) handleGetPosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := s.svc.Store.GetPosition(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if p == nil {
		s.writeError(w, r, &ErrNotFound{Kind: "position", ID: id})
		return
	}
	s.jsonResponse(w, r, http.StatusOK, p)
}

func (s *Server) handleListPositions(w http.ResponseWriter, r *http.Request) {
	limit, err := listLimit(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.svc.Store.ListPositions(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"positions": nonNil(list), "count": len(list)})
}

func (s *Server) handlePositionMatches(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	limit, minSim, err := matchParams(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	matches, err := s.svc.Matcher.CandidatesForPosition(r.Context(), id, limit, minSim)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"position_id": id, "matches": nonNil(matches)})
}

type linkRequest struct {
	CandidateID       string `json:"candidate_id" validate:"required"`
	ApplicationStatus string `json:"application_status,omitempty" validate:"max=50"`
	Notes             string `json:"notes,omitempty"`
}

// handleLinkCandidate associates a candidate with the position. Linked pairs
// drop out of both match directions.
func (s *Server) handleLinkCandidate(w http.ResponseWriter, r *http.Request) {
	positionID := r.PathValue("id")
	var req linkRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	position, err := s.svc.Store.GetPosition(ctx, positionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if position == nil {
		s.writeError(w, r, &ErrNotFound{Kind: "position", ID: positionID})
		return
	}
	candidate, err := s.svc.Store.GetCandidate(ctx, req.CandidateID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if candidate == nil {
		s.writeError(w, r, &ErrNotFound{Kind: "candidate", ID: req.CandidateID})
		return
	}

	created, err := s.svc.Store.LinkCandidate(ctx, types.CandidatePosition{
		CandidateID:       req.CandidateID,
		PositionID:        positionID,
		ApplicationStatus: req.ApplicationStatus,
		Notes:             req.Notes,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	s.jsonResponse(w, r, status, map[string]any{
		"candidate_id": req.CandidateID,
		"position_id":  positionID,
		"created":      created,
	})
}
