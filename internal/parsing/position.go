// Package parsing turns documents and job descriptions into text and structured
// drafts.
package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/prompts"
	"github.com/jonathan/hiring-pipeline/internal/schemas"
)

// RequiredPositionFields must be present in every parsed position.
var RequiredPositionFields = []string{"title", "summary", "requirements", "responsibilities"}

// PositionDraft is the generative backend's structured reading of a posting.
type PositionDraft struct {
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	Location         string   `json:"location,omitempty"`
	WorkArrangement  string   `json:"work_arrangement,omitempty"`
	Experience       string   `json:"experience,omitempty"`
	Urgency          string   `json:"urgency,omitempty"`
	Requirements     []string `json:"requirements"`
	NiceToHave       []string `json:"nice_to_have,omitempty"`
	Responsibilities []string `json:"responsibilities"`
	Skills           []string `json:"skills,omitempty"`
}

type rawDraft struct {
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	Location         *string  `json:"location"`
	WorkArrangement  *string  `json:"work_arrangement"`
	Experience       *string  `json:"experience"`
	Urgency          *string  `json:"urgency"`
	Requirements     []string `json:"requirements"`
	NiceToHave       []string `json:"nice_to_have"`
	Responsibilities []string `json:"responsibilities"`
	Skills           []string `json:"skills"`
}

// ParsePosition converts a title and free-text description with a single
// generation call. There is no partial result: a response that is not an object
// or lacks a required key fails with *MissingFieldsError.
func ParsePosition(ctx context.Context, client llm.Client, title, description string) (*PositionDraft, error) {
	if strings.TrimSpace(description) == "" {
		return nil, &ParseError{Message: "position description is empty"}
	}

	prompt, err := prompts.Render(prompts.Position, "parse-position", map[string]string{
		"Title":       title,
		"Description": description,
	})
	if err != nil {
		return nil, &ParseError{Message: "failed to build position prompt", Cause: err}
	}

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard,
		llm.WithSystemPrompt(prompts.MustGet(prompts.Position, "system")))
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate position details",
			Cause:   err,
		}
	}

	return decodePosition(responseText)
}

func decodePosition(responseText string) (*PositionDraft, error) {
	raw, err := llm.ExtractJSON(responseText)
	if err != nil {
		return nil, &ParseError{Message: "no JSON in position response", Cause: err}
	}
	if !strings.HasPrefix(raw, "{") {
		return nil, &MissingFieldsError{Missing: append([]string(nil), RequiredPositionFields...)}
	}

	if err := schemas.Validate(schemas.Position, []byte(raw)); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			if missing := verr.MissingRequired(); len(missing) > 0 {
				return nil, &MissingFieldsError{Missing: missing}
			}
		}
		return nil, &ParseError{Message: "position response does not match schema", Cause: err}
	}

	var r rawDraft
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return nil, &ParseError{Message: "failed to parse JSON response", Cause: err}
	}

	return &PositionDraft{
		Title:            strings.TrimSpace(r.Title),
		Summary:          strings.TrimSpace(r.Summary),
		Location:         derefTrim(r.Location),
		WorkArrangement:  derefTrim(r.WorkArrangement),
		Experience:       derefTrim(r.Experience),
		Urgency:          derefTrim(r.Urgency),
		Requirements:     nonEmpty(r.Requirements),
		NiceToHave:       nonEmpty(r.NiceToHave),
		Responsibilities: nonEmpty(r.Responsibilities),
		Skills:           NormalizeSkills(r.Skills),
	}, nil
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
