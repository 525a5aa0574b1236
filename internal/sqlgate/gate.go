// Package sqlgate checks generated SQL before it reaches the database. A
// statement passes only when it is a single read-only SELECT.
package sqlgate

import (
	"fmt"
	"regexp"
	"strings"
)

// ForbiddenKeywords may not appear as whole words outside quoted text.
var ForbiddenKeywords = []string{
	"INSERT", "UPDATE", "DELETE", "DROP", "CREATE", "ALTER",
	"TRUNCATE", "GRANT", "REVOKE", "EXEC", "EXECUTE",
	"COMMIT", "ROLLBACK", "SAVEPOINT",
}

var forbiddenRe = regexp.MustCompile(`\b(` + strings.Join(ForbiddenKeywords, "|") + `)\b`)

// Reason classifies a rejection.
type Reason string

const (
	ReasonEmpty              Reason = "empty"
	ReasonNotSelect          Reason = "not_select"
	ReasonMultipleStatements Reason = "multiple_statements"
	ReasonForbiddenKeyword   Reason = "forbidden_keyword"
	ReasonUnterminatedQuote  Reason = "unterminated_quote"
)

// RejectionError is returned by Validate for any statement that fails the gate.
type RejectionError struct {
	Reason  Reason
	Keyword string
}

func (e *RejectionError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "SQL query is empty"
	case ReasonNotSelect:
		return "query must start with SELECT (read-only queries only)"
	case ReasonMultipleStatements:
		return "multiple SQL statements not allowed (semicolon detected)"
	case ReasonForbiddenKeyword:
		return fmt.Sprintf("forbidden keyword detected: %s", e.Keyword)
	case ReasonUnterminatedQuote:
		return "unterminated quoted string"
	}
	return fmt.Sprintf("SQL rejected: %s", e.Reason)
}

// ReadOnlyViolation reports whether the statement was rejected for trying to
// do something other than read.
func (e *RejectionError) ReadOnlyViolation() bool {
	return e.Reason == ReasonNotSelect
}

// Validate returns nil when sql is a single SELECT statement free of forbidden
// keywords. Only one trailing semicolon is allowed, wherever else it appears.
// Quoted literals and identifiers are not scanned for keywords, so a pattern
// like ILIKE '%update%' is accepted.
func Validate(sql string) error {
	trimmed := strings.TrimSpace(sql)
	if trimmed == "" {
		return &RejectionError{Reason: ReasonEmpty}
	}

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "SELECT") {
		return &RejectionError{Reason: ReasonNotSelect, Keyword: firstWord(upper)}
	}

	body := strings.TrimSpace(strings.TrimSuffix(upper, ";"))
	if strings.Contains(body, ";") {
		return &RejectionError{Reason: ReasonMultipleStatements}
	}

	code, ok := maskQuoted(body)
	if !ok {
		return &RejectionError{Reason: ReasonUnterminatedQuote}
	}

	if kw := forbiddenRe.FindString(code); kw != "" {
		return &RejectionError{Reason: ReasonForbiddenKeyword, Keyword: kw}
	}
	return nil
}

// Sanitize strips markdown fences, a leading "sql" tag, trailing semicolons
// and surrounding whitespace from a generated statement.
func Sanitize(sql string) string {
	sql = strings.TrimSpace(sql)
	if strings.HasPrefix(sql, "```") {
		lines := strings.Split(sql, "\n")
		lines = lines[1:]
		if n := len(lines); n > 0 && strings.HasPrefix(strings.TrimSpace(lines[n-1]), "```") {
			lines = lines[:n-1]
		}
		sql = strings.TrimSpace(strings.Join(lines, "\n"))
	}

	if len(sql) >= 3 && strings.EqualFold(sql[:3], "sql") && (len(sql) == 3 || isSpace(sql[3])) {
		sql = strings.TrimSpace(sql[3:])
	}

	return strings.TrimRight(sql, "; \t\r\n")
}

// maskQuoted blanks out the contents of single-quoted literals and
// double-quoted identifiers. A doubled quote inside either is an escape, and
// inside an E'...' literal so is a backslash. Dollar-quoted bodies and
// comments are skipped without masking, so keywords in them are still seen.
// The second result is false when a quote, dollar tag or block comment is
// left open.
func maskQuoted(s string) (string, bool) {
	out := []byte(s)
	for i := 0; i < len(out); i++ {
		switch c := out[i]; {
		case c == '\'' || c == '"':
			backslash := c == '\'' && i > 0 && (out[i-1] == 'E' || out[i-1] == 'e') &&
				(i < 2 || !isIdentByte(out[i-2]))
			end := closeQuote(out, i+1, c, backslash)
			if end < 0 {
				return "", false
			}
			for j := i + 1; j < end; j++ {
				out[j] = ' '
			}
			i = end
		case c == '$':
			tag, ok := dollarTag(out, i)
			if !ok {
				continue
			}
			end := strings.Index(string(out[i+len(tag):]), tag)
			if end < 0 {
				return "", false
			}
			i += len(tag) + end + len(tag) - 1
		case c == '-' && i+1 < len(out) && out[i+1] == '-':
			nl := strings.IndexByte(string(out[i:]), '\n')
			if nl < 0 {
				return string(out), true
			}
			i += nl
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			end := strings.Index(string(out[i+2:]), "*/")
			if end < 0 {
				return "", false
			}
			i += 2 + end + 1
		}
	}
	return string(out), true
}

// closeQuote returns the index of the quote that ends a quoted run starting at
// from, or -1 when the run never ends.
func closeQuote(b []byte, from int, quote byte, backslash bool) int {
	for j := from; j < len(b); j++ {
		switch {
		case backslash && b[j] == '\\':
			j++
		case b[j] == quote:
			if j+1 < len(b) && b[j+1] == quote {
				j++
				continue
			}
			return j
		}
	}
	return -1
}

// dollarTag reports the $tag$ opener at i. Positional parameters such as $1
// are not tags.
func dollarTag(b []byte, i int) (string, bool) {
	if i > 0 && isIdentByte(b[i-1]) {
		return "", false
	}
	for j := i + 1; j < len(b); j++ {
		switch {
		case b[j] == '$':
			return string(b[i : j+1]), true
		case j == i+1 && b[j] >= '0' && b[j] <= '9':
			return "", false
		case !isIdentByte(b[j]):
			return "", false
		}
	}
	return "", false
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' || b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= 0x80
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\n' || b == '\t' || b == '\r'
}
