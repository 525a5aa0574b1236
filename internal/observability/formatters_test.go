package observability

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jonathan/hiring-pipeline/internal/types"
	"github.com/jonathan/hiring-pipeline/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestPrintCandidate(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	email := "jane@example.com"
	p.PrintCandidate(&types.CandidateProfile{
		ID:        "candidate_001",
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     &email,
		Skills:    []string{"Go", "PostgreSQL"},
		Experience: []types.Experience{
			{Title: "Engineer", Company: "Acme", StartDate: "2019-01", EndDate: "Present"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "CANDIDATE PROFILE")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "jane@example.com")
	assert.Contains(t, output, "Phone:    -")
	assert.Contains(t, output, "Engineer at Acme (2019-01 - Present)")
	assert.Contains(t, output, "Embedded: false")
}

func TestPrintCandidate_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintCandidate(nil)
	assert.Empty(t, buf.String())
}

func TestPrintValidationReport(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	report := validation.NewReport()
	validation.Email("not-an-email", report)
	validation.Email("jane@example.com", report)
	p.PrintValidationReport(report)
	output := buf.String()

	assert.Contains(t, output, "VALIDATION REJECTIONS")
	assert.Contains(t, output, "Accepted 1, rejected 1")
	assert.Contains(t, output, "not-an-email")
}

func TestPrintValidationReport_Clean(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintValidationReport(validation.NewReport())
	assert.Contains(t, buf.String(), "none rejected")
}

func TestPrintPosition(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintPosition(&types.PositionProfile{
		ID:         "position_002",
		Title:      "Backend Engineer",
		Experience: "5+ years",
		Requirements: []types.Requirement{
			{Text: "Go", IsRequired: true},
			{Text: "Rust"},
		},
	})
	output := buf.String()

	assert.Contains(t, output, "PARSED POSITION")
	assert.Contains(t, output, "Required:")
	assert.Contains(t, output, "Nice-to-haves:")
	assert.Contains(t, output, "Rust")
}

func TestPrintMatches(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	matches := make([]types.MatchResult, 7)
	for i := range matches {
		matches[i] = types.MatchResult{ID: "candidate_00" + string(rune('1'+i)), Name: "Candidate", SimilarityScore: 0.812}
	}
	p.PrintMatches("TOP CANDIDATES", matches)
	output := buf.String()

	assert.Contains(t, output, "Total matches: 7")
	assert.Contains(t, output, "Similarity: 0.812")
	assert.Contains(t, output, "... and 2 more matches")
}

func TestPrintMatches_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMatches("TOP CANDIDATES", nil)
	assert.Contains(t, buf.String(), "No matches")
}

func TestPrintQueryTrace_WrapsSQL(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQueryTrace(&types.QueryTrace{
		Question: "Who knows Go?",
		SQL:      "SELECT c.id, c.first_name, c.last_name FROM candidates c JOIN candidate_skills cs ON c.id = cs.candidate_id WHERE cs.skill_name ILIKE '%Go%' LIMIT 100",
		RowCount: 2,
		Columns:  []string{"id", "first_name", "last_name"},
	})
	output := buf.String()

	assert.Contains(t, output, "QUERY TRACE")
	assert.Contains(t, output, "LIMIT 100")
	assert.NotContains(t, output, "...")
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), boxWidth)
	}
}
