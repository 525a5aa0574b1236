package heuristics

import (
	"regexp"
	"strconv"
)

var (
	yearsRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*\+?\s*years?\s+(?:of\s+)?experience`)

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{4}\s*[-–—]\s*\d{4}\b`),
		regexp.MustCompile(`(?i)\b\d{4}\s*[-–—]\s*(?:present|current)\b`),
		regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+\d{4}\b`),
	}
)

// YearsOfExperience finds a stated "N years of experience" figure. Fractional
// values are truncated. ok is false when no figure is stated.
func YearsOfExperience(text string) (years int, ok bool) {
	m := yearsRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// Dates returns date and date-range mentions in order of pattern, then position.
func Dates(text string) []string {
	var out []string
	for _, re := range datePatterns {
		out = append(out, re.FindAllString(text, -1)...)
	}
	return out
}
