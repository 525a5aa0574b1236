package types

// MatchResult is one ranked match. It is computed per request and never stored.
type MatchResult struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Title           string  `json:"title,omitempty"`
	Company         string  `json:"company,omitempty"`
	Summary         string  `json:"summary,omitempty"`
	Experience      string  `json:"experience,omitempty"`
	SimilarityScore float64 `json:"similarity_score"`
	YearsExperience int     `json:"years_experience"`
	Explanation     string  `json:"explanation,omitempty"`
}

// QueryTrace describes how a natural-language answer was produced.
type QueryTrace struct {
	Question string   `json:"question"`
	SQL      string   `json:"sql"`
	RowCount int      `json:"row_count"`
	Columns  []string `json:"columns"`
}
