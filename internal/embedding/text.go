package embedding

import (
	"errors"
	"strings"

	"github.com/jonathan/hiring-pipeline/internal/types"
)

// ErrEmptyText is returned when an entity has no content to embed.
var ErrEmptyText = errors.New("canonical text is empty")

// CandidateText projects a candidate onto its canonical embedding text: summary,
// skills, experience title/company pairs, then education, one line each.
func CandidateText(c *types.CandidateProfile) (string, error) {
	if c == nil {
		return "", ErrEmptyText
	}
	var parts []string

	if s := strings.TrimSpace(c.Summary); s != "" {
		parts = append(parts, "Summary: "+s)
	}
	if len(c.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(c.Skills, ", "))
	}
	if len(c.Experience) > 0 {
		items := make([]string, 0, len(c.Experience))
		for _, e := range c.Experience {
			items = append(items, e.Title+" at "+e.Company)
		}
		parts = append(parts, "Experience: "+strings.Join(items, "; "))
	}
	if len(c.Education) > 0 {
		items := make([]string, 0, len(c.Education))
		for _, e := range c.Education {
			if e.FieldOfStudy != "" {
				items = append(items, e.Degree+" in "+e.FieldOfStudy)
			} else {
				items = append(items, e.Degree)
			}
		}
		parts = append(parts, "Education: "+strings.Join(items, "; "))
	}

	return join(parts)
}

// PositionText projects a position onto its canonical embedding text.
func PositionText(p *types.PositionProfile) (string, error) {
	if p == nil {
		return "", ErrEmptyText
	}
	var parts []string

	if s := strings.TrimSpace(p.Title); s != "" {
		parts = append(parts, "Position: "+s)
	}
	if s := strings.TrimSpace(p.Description); s != "" {
		parts = append(parts, "Description: "+s)
	}
	if len(p.Requirements) > 0 {
		parts = append(parts, "Requirements: "+strings.Join(p.RequirementTexts(), "; "))
	}
	if len(p.Skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(p.Skills, ", "))
	}
	if s := strings.TrimSpace(p.Experience); s != "" {
		parts = append(parts, "Experience Level: "+s)
	}

	return join(parts)
}

func join(parts []string) (string, error) {
	text := strings.TrimSpace(strings.Join(parts, "\n"))
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
