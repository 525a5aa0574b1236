// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/hiring-pipeline/internal/types"
	"github.com/jonathan/hiring-pipeline/internal/validation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCandidate outputs a summary of an ingested candidate.
func (p *Printer) PrintCandidate(c *types.CandidateProfile) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:       %s\n", c.ID))
	sb.WriteString(fmt.Sprintf("Name:     %s\n", c.FullName()))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", orDash(c.Email)))
	sb.WriteString(fmt.Sprintf("Phone:    %s\n", orDash(c.Phone)))
	sb.WriteString(fmt.Sprintf("Location: %s\n", orDash(c.Location)))
	sb.WriteString("\n")

	writeList(&sb, "Skills", c.Skills, maxItemsToShow)

	if len(c.Experience) > 0 {
		sb.WriteString("Experience:\n")
		count := min(len(c.Experience), 3)
		for i := 0; i < count; i++ {
			e := c.Experience[i]
			sb.WriteString(fmt.Sprintf("  • %s at %s", e.Title, e.Company))
			if e.StartDate != "" {
				sb.WriteString(fmt.Sprintf(" (%s - %s)", e.StartDate, e.EndDate))
			}
			sb.WriteString("\n")
		}
		if len(c.Experience) > 3 {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(c.Experience)-3))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Education: %d  Certifications: %d  Languages: %d\n",
		len(c.Education), len(c.Certifications), len(c.Languages)))
	sb.WriteString(fmt.Sprintf("Embedded: %t", c.HasEmbedding()))

	p.printBox("CANDIDATE PROFILE", sb.String())
}

// PrintValidationReport outputs the fields the validator rejected.
func (p *Printer) PrintValidationReport(r *validation.Report) {
	if r == nil {
		return
	}
	rejected := r.Rejections()
	if len(rejected) == 0 {
		p.printBox("VALIDATION", fmt.Sprintf("✅ %d values accepted, none rejected", r.Accepted()))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Accepted %d, rejected %d:\n\n", r.Accepted(), len(rejected)))
	for i, d := range rejected {
		value := d.Value
		if len(value) > 30 {
			value = value[:27] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ %s = %q\n", d.Field, value))
		sb.WriteString(fmt.Sprintf("  %s", d.Reason))
		if i < len(rejected)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("VALIDATION REJECTIONS", sb.String())
}

// PrintPosition outputs a summary of a parsed position.
func (p *Printer) PrintPosition(pos *types.PositionProfile) {
	if pos == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("ID:         %s\n", pos.ID))
	sb.WriteString(fmt.Sprintf("Title:      %s\n", pos.Title))
	if pos.Company != "" {
		sb.WriteString(fmt.Sprintf("Company:    %s\n", pos.Company))
	}
	sb.WriteString(fmt.Sprintf("Experience: %s\n", pos.Experience))
	sb.WriteString(fmt.Sprintf("Urgency:    %s\n", pos.Urgency))
	sb.WriteString("\n")

	var required, optional []string
	for _, r := range pos.Requirements {
		if r.IsRequired {
			required = append(required, r.Text)
		} else {
			optional = append(optional, r.Text)
		}
	}
	writeList(&sb, "Required", required, maxItemsToShow)
	writeList(&sb, "Nice-to-haves", optional, 3)
	writeList(&sb, "Skills", pos.Skills, maxItemsToShow)

	p.printBox("PARSED POSITION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintMatches outputs ranked matches with similarity scores.
func (p *Printer) PrintMatches(title string, matches []types.MatchResult) {
	if len(matches) == 0 {
		p.printBox(title, "No matches above the similarity threshold")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total matches: %d\n\n", len(matches)))

	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		label := m.Name
		if label == "" {
			label = m.Title
		}
		sb.WriteString(fmt.Sprintf("#%d  %s (%s)\n", i+1, label, m.ID))
		sb.WriteString(fmt.Sprintf("    Similarity: %.3f", m.SimilarityScore))
		if m.YearsExperience > 0 {
			sb.WriteString(fmt.Sprintf("  Years: %d", m.YearsExperience))
		}
		sb.WriteString("\n")
		if m.Explanation != "" {
			sb.WriteString(fmt.Sprintf("    %s\n", m.Explanation))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more matches", len(matches)-maxItemsToShow))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintQueryTrace outputs the SQL behind a natural-language answer.
func (p *Printer) PrintQueryTrace(trace *types.QueryTrace) {
	if trace == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Question: %s\n", trace.Question))
	sb.WriteString(fmt.Sprintf("Rows:     %d\n", trace.RowCount))
	if len(trace.Columns) > 0 {
		sb.WriteString(fmt.Sprintf("Columns:  %s\n", strings.Join(trace.Columns, ", ")))
	}
	sb.WriteString("\n")
	for _, line := range wrap(trace.SQL, boxWidth-4) {
		sb.WriteString(line + "\n")
	}

	p.printBox("QUERY TRACE", strings.TrimSuffix(sb.String(), "\n"))
}

func writeList(sb *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(label + ":\n")
	count := min(len(items), limit)
	for i := 0; i < count; i++ {
		sb.WriteString(fmt.Sprintf("  • %s\n", items[i]))
	}
	if len(items) > limit {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-limit))
	}
	sb.WriteString("\n")
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}

// wrap breaks s on spaces into lines of at most width bytes.
func wrap(s string, width int) []string {
	var lines []string
	var line string
	for _, word := range strings.Fields(s) {
		if line != "" && len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = ""
		}
		if line != "" {
			line += " "
		}
		line += word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}
