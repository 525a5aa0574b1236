package nlquery

import (
	"errors"
	"fmt"

	"github.com/jonathan/hiring-pipeline/internal/sqlgate"
)

// GenerationError wraps a generative backend failure during SQL or answer generation.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// ExecutionError wraps a database failure for a statement that passed the gate.
type ExecutionError struct {
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("SQL execution failed: %v", e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// templateFor picks the user-facing message key for a pipeline failure.
func templateFor(err error) string {
	var rej *sqlgate.RejectionError
	var gen *GenerationError
	var exec *ExecutionError
	switch {
	case errors.As(err, &rej):
		if rej.ReadOnlyViolation() {
			return "error-read-only"
		}
		return "error-invalid-query"
	case errors.As(err, &gen), errors.As(err, &exec):
		return "error-processing"
	}
	return "error-unexpected"
}
