// Package ingestion turns CV files and job descriptions into persisted candidate
// and position records.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	innerSpaceRe  = regexp.MustCompile(`\s+`)
	blankRunRe    = regexp.MustCompile(`\n\n\n+`)
	bulletGlyphRe = regexp.MustCompile(`^[•·▪●◦‣]\s*`)
)

// CleanText normalizes line endings and whitespace while keeping headings,
// bullets and indentation. Glyph bullets from converted documents become "- ".
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\u00a0", " ")
	content = strings.ReplaceAll(content, "\f", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankRunRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	indent := len(line) - len(trimmed)

	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	if bulletGlyphRe.MatchString(trimmed) {
		trimmed = "- " + bulletGlyphRe.ReplaceAllString(trimmed, "")
	}
	if strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") {
		return strings.Repeat(" ", indent) + trimmed[:2] + innerSpaceRe.ReplaceAllString(strings.TrimSpace(trimmed[2:]), " ")
	}

	return strings.Repeat(" ", indent) + innerSpaceRe.ReplaceAllString(trimmed, " ")
}
