package types

import "time"

// Requirement is one position requirement. IsRequired is advisory: it comes from
// a positional split of the parsed list, not from the posting itself.
type Requirement struct {
	Text       string `json:"requirement"`
	IsRequired bool   `json:"is_required"`
}

// PositionProfile is a parsed and persisted job position.
type PositionProfile struct {
	ID               string        `json:"id,omitempty"`
	Status           string        `json:"status,omitempty"`
	Title            string        `json:"title"`
	Company          string        `json:"company,omitempty"`
	Location         string        `json:"location,omitempty"`
	WorkArrangement  string        `json:"work_arrangement,omitempty"`
	Experience       string        `json:"experience,omitempty"`
	Description      string        `json:"description,omitempty"`
	Compensation     string        `json:"compensation,omitempty"`
	Urgency          string        `json:"urgency,omitempty"`
	ContactName      string        `json:"contact_name,omitempty"`
	ContactEmail     string        `json:"contact_email,omitempty"`
	Requirements     []Requirement `json:"requirements"`
	Responsibilities []string      `json:"responsibilities"`
	Skills           []string      `json:"skills"`
	Embedding        []float32     `json:"-"`
	EmbeddingText    string        `json:"-"`
	CreatedAt        time.Time     `json:"created_at,omitempty"`
}

// HasEmbedding reports whether the position is visible to similarity search.
func (p *PositionProfile) HasEmbedding() bool {
	return len(p.Embedding) > 0
}

// RequirementTexts returns the requirement strings in order.
func (p *PositionProfile) RequirementTexts() []string {
	out := make([]string, len(p.Requirements))
	for i, r := range p.Requirements {
		out[i] = r.Text
	}
	return out
}

// CandidatePosition links a candidate to a position.
type CandidatePosition struct {
	CandidateID       string    `json:"candidate_id"`
	PositionID        string    `json:"position_id"`
	ApplicationStatus string    `json:"application_status"`
	AppliedAt         time.Time `json:"applied_at"`
	Notes             string    `json:"notes,omitempty"`
}
