// Package server provides the HTTP REST API for the hiring pipeline.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/fetch"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/matching"
	"github.com/jonathan/hiring-pipeline/internal/nlquery"
	"github.com/jonathan/hiring-pipeline/internal/server/middleware"
	"github.com/jonathan/hiring-pipeline/internal/server/ratelimit"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

// DefaultMaxUploadBytes caps CV uploads.
const DefaultMaxUploadBytes = 10 << 20

// Store is the read and link surface used by handlers. *db.DB implements it.
type Store interface {
	GetCandidate(ctx context.Context, id string) (*types.CandidateProfile, error)
	GetPosition(ctx context.Context, id string) (*types.PositionProfile, error)
	ListCandidates(ctx context.Context, limit int) ([]db.CandidateSummary, error)
	ListPositions(ctx context.Context, limit int) ([]db.PositionSummary, error)
	LinkCandidate(ctx context.Context, link types.CandidatePosition) (bool, error)
	Ping(ctx context.Context) error
}

// CandidateIngestor ingests an uploaded CV file. *ingestion.CVIngestor implements it.
type CandidateIngestor interface {
	Ingest(ctx context.Context, path string) (*ingestion.CVResult, error)
}

// PositionIngestor ingests a job posting. *ingestion.PositionIngestor implements it.
type PositionIngestor interface {
	Ingest(ctx context.Context, in ingestion.PositionInput) (*ingestion.PositionResult, error)
	IngestURL(ctx context.Context, url string, in ingestion.PositionInput, opts fetch.PostingOptions) (*ingestion.PositionResult, error)
}

// Matcher ranks candidates and positions. *matching.Matcher implements it.
type Matcher interface {
	CandidatesForPosition(ctx context.Context, positionID string, limit int, minSimilarity float64) ([]types.MatchResult, error)
	PositionsForCandidate(ctx context.Context, candidateID string, limit int, minSimilarity float64) ([]types.MatchResult, error)
	SearchCandidates(ctx context.Context, query string, limit int, minSimilarity float64) ([]types.MatchResult, error)
}

// QueryService answers natural-language questions. *nlquery.Service implements it.
type QueryService interface {
	Ask(ctx context.Context, question string) (*nlquery.Answer, error)
}

// Services are the collaborators behind the API.
type Services struct {
	Store      Store
	Candidates CandidateIngestor
	Positions  PositionIngestor
	Matcher    Matcher
	Explainer  *matching.Explainer
	Query      QueryService
}

// Config holds server configuration
type Config struct {
	Port           int
	RateLimit      *ratelimit.Config
	MaxUploadBytes int64
	// Tokens validates bearer tokens on /api routes. Nil disables authentication.
	Tokens middleware.TokenValidator
	// UseBrowser enables the headless-browser fallback for URL ingestion.
	UseBrowser bool
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	svc         Services
	cfg         Config
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
}

// New creates a new server instance
func New(cfg Config, svc Services) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{
		svc:         svc,
		cfg:         cfg,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		validate:    newValidator(),
	}

	api := http.NewServeMux()
	api.HandleFunc("GET /api/candidates", s.handleListCandidates)
	api.HandleFunc("POST /api/candidates/ingest", s.handleIngestCandidate)
	api.HandleFunc("GET /api/candidates/search", s.handleSearchCandidates)
	api.HandleFunc("GET /api/candidates/{id}", s.handleGetCandidate)
	api.HandleFunc("GET /api/candidates/{id}/matches", s.handleCandidateMatches)

	api.HandleFunc("GET /api/positions", s.handleListPositions)
	api.HandleFunc("POST /api/positions/ingest", s.handleIngestPosition)
	api.HandleFunc("GET /api/positions/{id}", s.handleGetPosition)
	api.HandleFunc("GET /api/positions/{id}/matches", s.handlePositionMatches)
	api.HandleFunc("POST /api/positions/{id}/candidates", s.handleLinkCandidate)

	api.HandleFunc("POST /api/chat/ask", s.handleAsk)
	api.HandleFunc("GET /api/chat/examples", s.handleExamples)

	var apiHandler http.Handler = api
	if cfg.Tokens != nil {
		apiHandler = middleware.AuthMiddleware(cfg.Tokens)(api)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("/api/", apiHandler)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      middleware.RequestID(middleware.AccessLog(s.withRateLimit(s.withCORS(mux)))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second, // ingestion makes several generative calls
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler returns the full middleware chain, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err := s.httpServer.Shutdown(shutdownCtx)
	s.rateLimiter.Stop()
	if err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.svc.Store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.Store.Ping(ctx); err != nil {
			logger.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
			s.jsonResponse(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.jsonResponse(w, r, status, map[string]string{"error": message})
}

// decodeJSON decodes and validates a request body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return &ErrValidation{Field: "body", Message: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return s.validateStruct(dst)
}

// clientID is the caller's IP taken from RemoteAddr. Forwarded headers are not
// trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", fmt.Sprintf("%d", seconds))
	}

	logger.Ctx(r.Context()).Warn().
		Str("client", clientID(r)).
		Str("path", r.URL.Path).
		Int("limit", info.Limit).
		Msg("rate limit exceeded")

	s.jsonResponse(w, r, http.StatusTooManyRequests, response)
}
