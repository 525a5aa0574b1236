package ingestion

import (
	"errors"
	"fmt"
)

// Stage names one step of an ingestion run.
type Stage string

// Ingestion stages, in execution order.
const (
	StageParse     Stage = "parse"
	StageHeuristic Stage = "heuristic"
	StageLLM       Stage = "llm"
	StageValidate  Stage = "validate"
	StageEmbed     Stage = "embed"
	StagePersist   Stage = "persist"
	StageShortlist Stage = "shortlist"
)

// ErrMissingName is returned when neither extractor produced a first and last name.
var ErrMissingName = errors.New("candidate first and last name could not be determined")

// ErrEmptyDocument is returned when a parsed document has no text.
var ErrEmptyDocument = errors.New("document contains no text")

// StageError identifies the stage at which an ingestion run aborted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("ingestion failed at %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
