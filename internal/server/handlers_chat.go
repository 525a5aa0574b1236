package server

import (
	"net/http"

	"github.com/jonathan/hiring-pipeline/internal/nlquery"
)

type askRequest struct {
	Question string `json:"question" validate:"required,max=1000"`
}

// handleAsk answers a natural-language question. Pipeline failures come back
// as 200 with a templated answer; only a blank question is a client error.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	answer, err := s.svc.Query.Ask(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, r, http.StatusOK, answer)
}

func (s *Server) handleExamples(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, r, http.StatusOK, map[string]any{"examples": nlquery.Examples()})
}
