package nlquery

import (
	"fmt"
	"strings"
)

// Example is a worked question and the SQL that answers it.
type Example struct {
	Question string
	SQL      string
}

// WorkedExamples are shown to the model with every SQL generation request.
var WorkedExamples = []Example{
	{
		Question: "List all candidates with Python skills",
		SQL: "SELECT c.id, c.first_name, c.last_name, c.email FROM candidates c " +
			"JOIN candidate_skills cs ON c.id = cs.candidate_id WHERE cs.skill_name ILIKE '%Python%' LIMIT 100",
	},
	{
		Question: "How many open positions are there?",
		SQL:      "SELECT COUNT(*) AS open_positions FROM positions WHERE status = 'open'",
	},
	{
		Question: "Which positions have no candidates?",
		SQL: "SELECT p.id, p.title, p.company FROM positions p " +
			"LEFT JOIN candidate_positions cp ON p.id = cp.position_id WHERE cp.candidate_id IS NULL LIMIT 100",
	},
}

// ExampleGroup is a category of suggested questions.
type ExampleGroup struct {
	Category  string   `json:"category"`
	Questions []string `json:"questions"`
}

// Examples returns suggested questions for clients to offer users.
func Examples() []ExampleGroup {
	return []ExampleGroup{
		{
			Category: "Candidates",
			Questions: []string{
				"List all candidates with Python skills",
				"How many candidates are in the database?",
				"Show me candidates with Kubernetes experience",
				"Which candidates have the most skills?",
			},
		},
		{
			Category: "Positions",
			Questions: []string{
				"How many open positions are there?",
				"List positions by company",
				"Which positions have no candidates?",
				"Show me all remote positions",
			},
		},
		{
			Category: "Analytics",
			Questions: []string{
				"Count candidates by location",
				"Which skills are most common among candidates?",
				"Show positions with high urgency",
			},
		},
	}
}

func formatExamples(examples []Example) string {
	var sb strings.Builder
	for i, ex := range examples {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Q: %q\nA: %s", ex.Question, ex.SQL)
	}
	return sb.String()
}
