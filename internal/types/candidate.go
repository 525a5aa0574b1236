// Package types provides the structured records shared by the extraction, matching
// and query packages.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "time"

// Provenance records which extractor produced a field value.
type Provenance string

const (
	// SourceHeuristic marks a value found by deterministic pattern matching.
	SourceHeuristic Provenance = "heuristic"
	// SourceGenerated marks a value produced by the generative backend.
	SourceGenerated Provenance = "generated"
)

// ExtractedField is a value tagged with its origin and the validator's verdict.
type ExtractedField[T any] struct {
	Value  T          `json:"value"`
	Source Provenance `json:"source"`
	Valid  bool       `json:"valid"`
}

// Present reports whether the field holds a validated value.
func (f *ExtractedField[T]) Present() bool {
	return f != nil && f.Valid
}

// Proficiency is the closed set of language proficiency levels.
type Proficiency string

// Proficiency levels.
const (
	ProficiencyNative       Proficiency = "Native"
	ProficiencyFluent       Proficiency = "Fluent"
	ProficiencyProfessional Proficiency = "Professional"
	ProficiencyIntermediate Proficiency = "Intermediate"
	ProficiencyBasic        Proficiency = "Basic"
)

// DefaultProficiency is used when a proficiency value cannot be recognized.
const DefaultProficiency = ProficiencyProfessional

// PersonalInfo is the identity and contact block of a CV.
type PersonalInfo struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`
}

// Experience is one employment entry. Title and Company are required.
type Experience struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location,omitempty"`
	StartDate        string   `json:"start_date,omitempty"`
	EndDate          string   `json:"end_date,omitempty"`
	Responsibilities []string `json:"responsibilities,omitempty"`
}

// Education is one education entry. Degree and Institution are required.
type Education struct {
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	Institution  string `json:"institution"`
	Location     string `json:"location,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
	Status       string `json:"status,omitempty"`
}

// Certification is a named certificate with an optional issuer and year.
type Certification struct {
	Name   string `json:"name"`
	Issuer string `json:"issuer,omitempty"`
	Year   *int   `json:"year,omitempty"`
}

// Language is a spoken language with its proficiency.
type Language struct {
	Language    string      `json:"language"`
	Proficiency Proficiency `json:"proficiency"`
}

// CandidateProfile is a validated candidate record.
type CandidateProfile struct {
	ID             string          `json:"id,omitempty"`
	Status         string          `json:"status,omitempty"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name"`
	Email          *string         `json:"email,omitempty"`
	Phone          *string         `json:"phone,omitempty"`
	Location       *string         `json:"location,omitempty"`
	LinkedIn       *string         `json:"linkedin,omitempty"`
	GitHub         *string         `json:"github,omitempty"`
	Summary        string          `json:"summary,omitempty"`
	Skills         []string        `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
	Embedding      []float32       `json:"-"`
	EmbeddingText  string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at,omitempty"`
}

// FullName joins first and last name.
func (c *CandidateProfile) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// HasEmbedding reports whether the candidate is visible to similarity search.
func (c *CandidateProfile) HasEmbedding() bool {
	return len(c.Embedding) > 0
}

// CVDocument records an archived source document for a candidate.
type CVDocument struct {
	ID          int64     `json:"id"`
	CandidateID string    `json:"candidate_id"`
	FilePath    string    `json:"file_path"`
	FileName    string    `json:"file_name"`
	FileType    string    `json:"file_type"`
	Version     int       `json:"version"`
	IsCurrent   bool      `json:"is_current"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
