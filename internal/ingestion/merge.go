package ingestion

import (
	"strings"

	"github.com/jonathan/hiring-pipeline/internal/extraction"
	"github.com/jonathan/hiring-pipeline/internal/heuristics"
	"github.com/jonathan/hiring-pipeline/internal/types"
	"github.com/jonathan/hiring-pipeline/internal/validation"
)

// Identity is the merged contact block with the origin of each field.
type Identity struct {
	FirstName types.ExtractedField[string] `json:"first_name"`
	LastName  types.ExtractedField[string] `json:"last_name"`
	Email     types.ExtractedField[string] `json:"email"`
	Phone     types.ExtractedField[string] `json:"phone"`
	LinkedIn  types.ExtractedField[string] `json:"linkedin"`
	GitHub    types.ExtractedField[string] `json:"github"`
	Location  types.ExtractedField[string] `json:"location"`
}

// pick prefers a valid heuristic value over a valid generated one.
func pick(heuristic, generated *string) types.ExtractedField[string] {
	if heuristic != nil && *heuristic != "" {
		return types.ExtractedField[string]{Value: *heuristic, Source: types.SourceHeuristic, Valid: true}
	}
	if generated != nil && *generated != "" {
		return types.ExtractedField[string]{Value: *generated, Source: types.SourceGenerated, Valid: true}
	}
	return types.ExtractedField[string]{}
}

// mergeIdentity validates both sources and applies the precedence rules:
// contact fields come from the heuristic pass when it found a valid value, and
// the name comes from the heuristic line scan unless it found none.
func mergeIdentity(h heuristics.Result, info types.PersonalInfo, raw map[string]any, r *validation.Report) Identity {
	id := Identity{
		Email:    pick(validation.Email(deref(h.Email), r), strPtr(info.Email)),
		Phone:    pick(validation.Phone(deref(h.Phone), r), strPtr(info.Phone)),
		LinkedIn: pick(validation.URL("linkedin", deref(h.LinkedIn), r), validation.URL("linkedin", rawString(raw, "linkedin"), r)),
		GitHub:   pick(validation.URL("github", deref(h.GitHub), r), validation.URL("github", rawString(raw, "github"), r)),
		Location: pick(nil, strPtr(info.Location)),
	}

	if h.Name != nil && h.Name.First != "" && h.Name.Last != "" {
		id.FirstName = pick(&h.Name.First, nil)
		id.LastName = pick(&h.Name.Last, nil)
	} else {
		id.FirstName = pick(nil, strPtr(info.FirstName))
		id.LastName = pick(nil, strPtr(info.LastName))
	}
	return id
}

// buildProfile validates every generated category into a candidate profile.
func buildProfile(id Identity, res *extraction.Result, r *validation.Report) *types.CandidateProfile {
	return &types.CandidateProfile{
		FirstName:      id.FirstName.Value,
		LastName:       id.LastName.Value,
		Email:          valuePtr(id.Email),
		Phone:          valuePtr(id.Phone),
		Location:       valuePtr(id.Location),
		LinkedIn:       valuePtr(id.LinkedIn),
		GitHub:         valuePtr(id.GitHub),
		Summary:        strings.TrimSpace(res.Summary),
		Skills:         validation.Skills(res.Skills, r),
		Experience:     validation.Experience(res.Experience, r),
		Education:      validation.Education(res.Education, r),
		Certifications: validation.Certifications(res.Certifications, r),
		Languages:      validation.Languages(res.Languages, r),
	}
}

func valuePtr(f types.ExtractedField[string]) *string {
	if !f.Present() {
		return nil
	}
	v := f.Value
	return &v
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func rawString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
