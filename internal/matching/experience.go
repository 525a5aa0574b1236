package matching

import (
	"math"
	"regexp"
	"strconv"

	"github.com/jonathan/hiring-pipeline/internal/heuristics"
)

// YearsPerEntry approximates tenure per experience entry when the summary states none.
const YearsPerEntry = 2

var leadingInt = regexp.MustCompile(`\d+`)

// SimilarityFromDistance converts a cosine distance in [0, 2] to a similarity in
// [0, 1]: 0 maps to 1.0 and 2 maps to 0.0.
func SimilarityFromDistance(d float64) float64 {
	return 1 - d/2
}

// CandidateYears estimates experience from the summary's "N years of experience"
// phrase, falling back to YearsPerEntry per experience entry.
func CandidateYears(summary string, experienceEntries int) int {
	if years, ok := heuristics.YearsOfExperience(summary); ok {
		return years
	}
	return experienceEntries * YearsPerEntry
}

// RequiredYears returns the first integer in a free-text requirement such as
// "5+ years" or "Senior (8+ years)". No digits means no requirement.
func RequiredYears(requirement string) int {
	m := leadingInt.FindString(requirement)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// ExperienceCompatible reports whether candidateYears meets requirement within
// flexibility years.
func ExperienceCompatible(candidateYears int, requirement string, flexibility int) bool {
	return candidateYears >= RequiredYears(requirement)-flexibility
}

func roundScore(s float64) float64 {
	return math.Round(s*1000) / 1000
}
