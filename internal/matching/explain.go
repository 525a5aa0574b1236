package matching

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/hiring-pipeline/internal/llm"
	"github.com/jonathan/hiring-pipeline/internal/logger"
	"github.com/jonathan/hiring-pipeline/internal/prompts"
	"github.com/jonathan/hiring-pipeline/internal/types"
)

const explainMaxTokens = 300

// Explainer writes short natural-language justifications for matches.
type Explainer struct {
	client llm.Client
}

// NewExplainer creates an explainer backed by client.
func NewExplainer(client llm.Client) *Explainer {
	return &Explainer{client: client}
}

// Explain returns a two-to-three sentence justification. It never fails: any
// generation error yields the score line instead.
func (e *Explainer) Explain(ctx context.Context, candidate *types.CandidateProfile, position *types.PositionProfile, score float64) string {
	fallback := FallbackExplanation(score)
	if e == nil || e.client == nil {
		return fallback
	}

	prompt, err := prompts.Render(prompts.Matching, "explain", map[string]string{
		"Score":     fmt.Sprintf("%.1f%%", score*100),
		"Candidate": describeCandidate(candidate),
		"Position":  describePosition(position),
	})
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to render explanation prompt")
		return fallback
	}

	text, err := e.client.GenerateContent(ctx, prompt, llm.TierLite,
		llm.WithSystemPrompt(prompts.MustGet(prompts.Matching, "explain-system")),
		llm.WithMaxTokens(explainMaxTokens),
	)
	if err != nil || strings.TrimSpace(text) == "" {
		logger.Ctx(ctx).Warn().Err(err).
			Str("candidate_id", candidate.ID).
			Str("position_id", position.ID).
			Msg("match explanation failed")
		return fallback
	}
	return strings.TrimSpace(text)
}

// ExplainAll fills Explanation on each position match for candidate.
func (e *Explainer) ExplainAll(ctx context.Context, candidate *types.CandidateProfile, matches []types.MatchResult, positions map[string]*types.PositionProfile) {
	for i := range matches {
		p, ok := positions[matches[i].ID]
		if !ok {
			matches[i].Explanation = FallbackExplanation(matches[i].SimilarityScore)
			continue
		}
		matches[i].Explanation = e.Explain(ctx, candidate, p, matches[i].SimilarityScore)
	}
}

// FallbackExplanation is the score line used when no generated text is available.
func FallbackExplanation(score float64) string {
	return fmt.Sprintf("Match score: %.1f%%", score*100)
}

func describeCandidate(c *types.CandidateProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", c.FullName())
	if c.Summary != "" {
		fmt.Fprintf(&sb, "Summary: %s\n", c.Summary)
	}
	if len(c.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(c.Skills, ", "))
	}
	for _, e := range c.Experience {
		fmt.Fprintf(&sb, "- %s at %s\n", e.Title, e.Company)
	}
	return strings.TrimSpace(sb.String())
}

func describePosition(p *types.PositionProfile) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title: %s\n", p.Title)
	if p.Company != "" {
		fmt.Fprintf(&sb, "Company: %s\n", p.Company)
	}
	if p.Experience != "" {
		fmt.Fprintf(&sb, "Experience: %s\n", p.Experience)
	}
	if len(p.Requirements) > 0 {
		fmt.Fprintf(&sb, "Requirements: %s\n", strings.Join(p.RequirementTexts(), "; "))
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(&sb, "Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	return strings.TrimSpace(sb.String())
}
