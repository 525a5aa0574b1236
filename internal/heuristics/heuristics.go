// Package heuristics extracts contact details and a name guess from raw CV text
// using fixed patterns only. Every function is deterministic and never fails:
// a missing value is reported as nil.
package heuristics

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailRe    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?linkedin\.com/in/[\w-]+`)
	githubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[\w-]+`)
	schemeRe   = regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?`)

	// International numbers first, then bare local ones such as (555) 123-4567.
	phonePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\+?\d{1,3}[-.\s]?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
		regexp.MustCompile(`\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`),
	}
)

// nameScanLines is how many leading non-empty lines are considered for a name.
const nameScanLines = 3

// Name is a best-effort first/last name guess.
type Name struct {
	First string
	Last  string
}

// Result holds everything the heuristic pass found.
type Result struct {
	Email    *string
	Phone    *string
	LinkedIn *string
	GitHub   *string
	Name     *Name
}

// Extract runs every heuristic over text.
func Extract(text string) Result {
	return Result{
		Email:    Email(text),
		Phone:    Phone(text),
		LinkedIn: LinkedIn(text),
		GitHub:   GitHub(text),
		Name:     GuessName(text),
	}
}

// Email returns the first email address in text.
func Email(text string) *string {
	return firstMatch(emailRe, text)
}

// Phone returns the first phone number in text.
func Phone(text string) *string {
	for _, re := range phonePatterns {
		if m := firstMatch(re, text); m != nil {
			return m
		}
	}
	return nil
}

// LinkedIn returns the first LinkedIn profile URL without scheme or www prefix.
func LinkedIn(text string) *string {
	return profileURL(linkedinRe, text)
}

// GitHub returns the first GitHub profile URL without scheme or www prefix.
func GitHub(text string) *string {
	return profileURL(githubRe, text)
}

// GuessName inspects the first three non-empty lines and accepts the first line
// with at least two tokens whose leading (up to three) tokens are capitalized.
// The first token is the first name and the last token the last name.
func GuessName(text string) *Name {
	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > nameScanLines {
			break
		}

		words := strings.Fields(line)
		if len(words) < 2 {
			continue
		}
		if !leadingCapitalized(words, 3) {
			continue
		}
		return &Name{First: words[0], Last: words[len(words)-1]}
	}
	return nil
}

func leadingCapitalized(words []string, n int) bool {
	if len(words) < n {
		n = len(words)
	}
	for _, w := range words[:n] {
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}

func firstMatch(re *regexp.Regexp, text string) *string {
	m := re.FindString(text)
	if m == "" {
		return nil
	}
	m = strings.TrimSpace(m)
	return &m
}

func profileURL(re *regexp.Regexp, text string) *string {
	m := re.FindString(text)
	if m == "" {
		return nil
	}
	clean := schemeRe.ReplaceAllString(m, "")
	return &clean
}
