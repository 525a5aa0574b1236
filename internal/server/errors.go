package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/hiring-pipeline/internal/db"
	"github.com/jonathan/hiring-pipeline/internal/fetch"
	"github.com/jonathan/hiring-pipeline/internal/ingestion"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/matching"
	"github.com/jonathan/hiring-pipeline/internal/nlquery"
	"github.com/jonathan/hiring-pipeline/internal/parsing"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates a missing candidate or position.
type ErrNotFound struct {
	Kind string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validation  *ErrValidation
		notFound    *ErrNotFound
		unsupported *parsing.UnsupportedFormatError
		missing     *parsing.MissingFieldsError
		apiCall     *parsing.APICallError
		fetchErr    *fetch.Error
	)
	switch {
	case errors.As(err, &validation), errors.Is(err, nlquery.ErrEmptyQuestion):
		return http.StatusBadRequest
	case errors.As(err, &notFound), errors.Is(err, matching.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, matching.ErrNoEmbedding), errors.Is(err, db.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &missing), errors.Is(err, ingestion.ErrMissingName), errors.Is(err, ingestion.ErrEmptyDocument):
		return http.StatusUnprocessableEntity
	case errors.As(err, &apiCall), errors.As(err, &fetchErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError maps err to a status and writes it. Server errors are logged and
// answered with a generic message unless they identify an ingestion stage.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	body := map[string]string{"error": err.Error()}

	var stageErr *ingestion.StageError
	if errors.As(err, &stageErr) {
		body["stage"] = string(stageErr.Stage)
	}

	if status >= http.StatusInternalServerError {
		logger.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("request failed")
		if stageErr == nil {
			body["error"] = "internal server error"
		}
	}
	s.jsonResponse(w, r, status, body)
}

// validateStruct runs validator tags on v and converts the first failure into
// an ErrValidation.
func (s *Server) validateStruct(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ErrValidation{Field: "body", Message: err.Error()}
	}
	fe := verrs[0]
	return &ErrValidation{Field: fe.Field(), Message: fmt.Sprintf("failed %q", fe.Tag())}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
