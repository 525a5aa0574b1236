package db

import "fmt"

// ID prefixes for generated entity identifiers.
const (
	CandidatePrefix = "candidate"
	PositionPrefix  = "position"
)

// idOrder sorts generated identifiers by their numeric suffix. IDs with the
// same prefix grow in width past 999, so a plain text sort is not enough.
const idOrder = "length(id), id"

// FormatID renders a sequence value as an entity identifier, e.g. candidate_007.
func FormatID(prefix string, n int64) string {
	return fmt.Sprintf("%s_%03d", prefix, n)
}
